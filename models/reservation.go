package models

import "time"

// ReservationStatus is the lifecycle status of a reservation as reported
// by the storage platform.
type ReservationStatus string

const (
	// StatusNotFound is synthesized locally when a code matches no reservation.
	StatusNotFound ReservationStatus = "not_found"

	StatusReserved  ReservationStatus = "reserved"
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusExpired   ReservationStatus = "expired"
	StatusNoShow    ReservationStatus = "no_show"
	StatusLost      ReservationStatus = "lost"
)

// KnownStatuses lists every status the storage platform exchanges over the
// wire, plus the locally synthesized not_found.
var KnownStatuses = []ReservationStatus{
	StatusNotFound,
	StatusReserved,
	StatusActive,
	StatusCompleted,
	StatusCancelled,
	StatusExpired,
	StatusNoShow,
	StatusLost,
}

// ReservationSnapshot is the authoritative view of a reservation's lifecycle
// state at a point in time, as returned by verification. The engine never
// edits individual fields of a displayed snapshot; it replaces the whole
// value after each gateway response.
type ReservationSnapshot struct {
	ReservationID *string           `bson:"reservationId" json:"reservationId"` // nil means the code matched nothing
	Status        ReservationStatus `bson:"status" json:"status"`
	HandoverAt    *time.Time        `bson:"handoverAt,omitempty" json:"handoverAt,omitempty"`
	HandoverBy    string            `bson:"handoverBy,omitempty" json:"handoverBy,omitempty"`
	ReturnedAt    *time.Time        `bson:"returnedAt,omitempty" json:"returnedAt,omitempty"`
	ReturnedBy    string            `bson:"returnedBy,omitempty" json:"returnedBy,omitempty"`
	Valid         bool              `bson:"valid" json:"valid"` // computed remotely: eligible for an operator action right now

	// Guest and baggage details, passed through for display only.
	GuestName       string `bson:"guestName,omitempty" json:"guestName,omitempty"`
	GuestPhone      string `bson:"guestPhone,omitempty" json:"guestPhone,omitempty"`
	BagCount        int    `bson:"bagCount,omitempty" json:"bagCount,omitempty"`
	StorageLocation string `bson:"storageLocation,omitempty" json:"storageLocation,omitempty"`
}

// Found reports whether the code resolved to a reservation.
func (s *ReservationSnapshot) Found() bool {
	return s.ReservationID != nil
}

// Terminal reports whether the reservation reached a status from which no
// handover or return may further proceed.
func (s *ReservationSnapshot) Terminal() bool {
	switch s.Status {
	case StatusCompleted, StatusCancelled, StatusExpired, StatusNoShow, StatusLost:
		return true
	}
	return false
}

// Consistent reports the write-order invariant: a reservation cannot have
// been returned before it was handed over.
func (s *ReservationSnapshot) Consistent() bool {
	return s.ReturnedAt == nil || s.HandoverAt != nil
}

// NotFoundSnapshot builds the synthetic snapshot for a code that matched
// no reservation. This is a valid verification result, not an error.
func NotFoundSnapshot() ReservationSnapshot {
	return ReservationSnapshot{Status: StatusNotFound}
}
