package handlers

import (
	"context"
	"errors"
	"net/http"

	"stowage/middleware"
	"stowage/models"
	"stowage/services/verification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerificationHandler exposes the verification and handover/return engine
// over HTTP.
type VerificationHandler struct {
	Service verification.Service
	Logger  *zap.Logger
}

// NewVerificationHandler returns a handler over the given engine.
func NewVerificationHandler(svc verification.Service, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{Service: svc, Logger: logger}
}

// VerifyCode resolves an operator-supplied code and opens a verification
// session.
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	var input struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	view, err := h.Service.Verify(c.Request.Context(), operatorFrom(c), input.Code)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetSession returns the current view of an open session.
func (h *VerificationHandler) GetSession(c *gin.Context) {
	view, err := h.Service.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RecordHandover records the drop-off event for the session's reservation.
func (h *VerificationHandler) RecordHandover(c *gin.Context) {
	h.recordAction(c, h.Service.RecordHandover)
}

// RecordReturn records the pick-up event for the session's reservation.
func (h *VerificationHandler) RecordReturn(c *gin.Context) {
	h.recordAction(c, h.Service.RecordReturn)
}

// CancelSession abandons an open session.
func (h *VerificationHandler) CancelSession(c *gin.Context) {
	if err := h.Service.CancelSession(c.Request.Context(), c.Param("sessionID")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session cancelled"})
}

// recordFunc is either RecordHandover or RecordReturn on the engine.
type recordFunc func(ctx context.Context, sessionID, operator string, req models.ActionRequest) (*verification.ActionResult, error)

func (h *VerificationHandler) recordAction(c *gin.Context, record recordFunc) {
	var req models.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := record(c.Request.Context(), c.Param("sessionID"), operatorFrom(c), req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VerificationHandler) renderError(c *gin.Context, err error) {
	var validationErr *verification.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}
	if errors.Is(err, verification.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": verification.ErrSessionNotFound.Error()})
		return
	}
	var transportErr *verification.TransportError
	if errors.As(err, &transportErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": transportErr.Message})
		return
	}
	h.Logger.Error("unexpected engine error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}

func operatorFrom(c *gin.Context) string {
	return c.GetString(middleware.ContextOperatorKey)
}
