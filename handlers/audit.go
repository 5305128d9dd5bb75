package handlers

import (
	"net/http"
	"strconv"

	auditRepo "stowage/database/repository/audit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditHandler serves the local trail of operator actions for reporting.
type AuditHandler struct {
	Repo   auditRepo.AuditEventRepository
	Logger *zap.Logger
}

// NewAuditHandler returns a handler over the given repository.
func NewAuditHandler(repo auditRepo.AuditEventRepository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{Repo: repo, Logger: logger}
}

// ListByReservation returns all events recorded for one reservation.
func (h *AuditHandler) ListByReservation(c *gin.Context) {
	reservationID := c.Param("reservationID")
	if reservationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing reservation ID"})
		return
	}

	events, err := h.Repo.GetByReservationID(c.Request.Context(), reservationID)
	if err != nil {
		h.Logger.Error("failed to load audit events", zap.String("reservationId", reservationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ListRecent returns the latest events across all reservations.
func (h *AuditHandler) ListRecent(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	events, err := h.Repo.GetRecent(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error("failed to load recent audit events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
