package verification

import "stowage/models"

// Severity of a classification banner shown to the operator.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Classification is the operator-facing summary of a snapshot: what to show
// in the banner above the action buttons.
type Classification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Each status has exactly one canonical message. Active is handled
// separately because its message depends on the remote valid flag.
var statusMessages = map[models.ReservationStatus]Classification{
	models.StatusNotFound: {
		Title:       "No reservation found",
		Description: "This code matches no reservation in this tenant.",
		Severity:    SeverityError,
	},
	models.StatusReserved: {
		Title:       "Not yet active",
		Description: "The reservation exists but has not been accepted yet. Ask the guest to complete check-in first.",
		Severity:    SeverityInfo,
	},
	models.StatusCompleted: {
		Title:       "Already completed",
		Description: "This reservation was handed over and returned. No further action is possible.",
		Severity:    SeverityInfo,
	},
	models.StatusCancelled: {
		Title:       "Cancelled",
		Description: "The guest cancelled this reservation. No baggage should be accepted.",
		Severity:    SeverityWarning,
	},
	models.StatusExpired: {
		Title:       "Expired",
		Description: "The reservation window passed without a drop-off. No further action is possible.",
		Severity:    SeverityWarning,
	},
	models.StatusNoShow: {
		Title:       "No-show",
		Description: "The guest never arrived and the reservation was closed. No further action is possible.",
		Severity:    SeverityWarning,
	},
	models.StatusLost: {
		Title:       "Reported lost",
		Description: "This reservation is under a lost-baggage investigation. Escalate to support before touching the baggage.",
		Severity:    SeverityError,
	},
}

var activeActionable = Classification{
	Title:       "Active reservation",
	Description: "The reservation is active and actionable.",
	Severity:    SeveritySuccess,
}

// fallback keeps Classify total as new statuses appear upstream.
var fallbackClassification = Classification{
	Title:       "Not currently actionable",
	Description: "The reservation was found but is not currently actionable.",
	Severity:    SeverityInfo,
}

// Classify maps a snapshot to its operator-facing banner. It is total over
// the status enum: any status without a canonical message falls back to the
// generic informational one.
func Classify(snap models.ReservationSnapshot) Classification {
	if !snap.Found() {
		return statusMessages[models.StatusNotFound]
	}
	if snap.Status == models.StatusActive {
		if snap.Valid {
			return activeActionable
		}
		return fallbackClassification
	}
	if c, ok := statusMessages[snap.Status]; ok {
		return c
	}
	return fallbackClassification
}
