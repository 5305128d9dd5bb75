package models

import "time"

// AuditAction identifies what the operator did.
type AuditAction string

const (
	AuditActionVerify   AuditAction = "verify"
	AuditActionHandover AuditAction = "handover"
	AuditActionReturn   AuditAction = "return"
)

// Audit outcome values.
const (
	AuditOutcomeVerified       = "verified"
	AuditOutcomeApplied        = "applied"
	AuditOutcomeAlreadyApplied = "already_applied"
)

// AuditEvent records one operator action for back-office reporting. The
// storage platform remains the source of truth for reservation state; the
// audit trail only tells who did what, when, at this desk.
type AuditEvent struct {
	ID            string            `bson:"id" json:"id"`
	SessionID     string            `bson:"sessionId" json:"sessionId"`
	ReservationID string            `bson:"reservationId,omitempty" json:"reservationId,omitempty"`
	Action        AuditAction       `bson:"action" json:"action"`
	Outcome       string            `bson:"outcome" json:"outcome"`
	Operator      string            `bson:"operator" json:"operator"`
	Status        ReservationStatus `bson:"status" json:"status"` // reservation status after the action
	Notes         string            `bson:"notes,omitempty" json:"notes,omitempty"`
	EvidenceURL   string            `bson:"evidenceUrl,omitempty" json:"evidenceUrl,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
}
