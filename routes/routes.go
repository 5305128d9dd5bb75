package routes

import (
	"net/http"
	"time"

	"stowage/handlers"
	"stowage/middleware"
	"stowage/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterVerificationRoutes registers the verification and handover/return
// endpoints. All of them require an operator identity.
func RegisterVerificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/verification")
	{
		api.Use(middleware.OperatorIdentity())
		api.POST("/verify", hb.Verification.VerifyCode)
		api.GET("/session/:sessionID", hb.Verification.GetSession)
		api.POST("/session/:sessionID/handover", hb.Verification.RecordHandover)
		api.POST("/session/:sessionID/return", hb.Verification.RecordReturn)
		api.DELETE("/session/:sessionID", hb.Verification.CancelSession)
	}
}

// RegisterAuditRoutes registers the audit-trail reporting endpoints.
func RegisterAuditRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/audit")
	{
		api.Use(middleware.OperatorIdentity())
		api.GET("/reservations/:reservationID", hb.Audit.ListByReservation)
		api.GET("/recent", hb.Audit.ListRecent)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.OperatorHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterVerificationRoutes(r, hb)
	RegisterAuditRoutes(r, hb)
}
