package models

import "time"

// VerificationSession holds the operator's current view of one reservation
// code between verification and action recording. Sessions live in Redis
// with a TTL and are never persisted beyond it.
//
// The snapshot is replaced wholesale after every gateway response and by
// the optimistic merge inside the idempotency guard; no other writer exists.
type VerificationSession struct {
	SessionID string              `json:"sessionId"`
	Code      string              `json:"code"`
	Operator  string              `json:"operator"`
	Snapshot  ReservationSnapshot `json:"snapshot"`
	Pending   bool                `json:"pending"` // a mutation is in flight; both actions stay locked
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
