package verification

import (
	"context"
	"errors"
	"time"

	"stowage/models"
	"stowage/services/upstream"

	"go.uber.org/zap"
)

// ActionKind identifies which of the two recordable events a mutation is.
type ActionKind string

const (
	ActionHandover ActionKind = "handover"
	ActionReturn   ActionKind = "return"
)

// MutationOutcome is the three-way result of a guarded mutation. Callers
// branch on it; AlreadyApplied must never be treated as a failure.
type MutationOutcome string

const (
	OutcomeApplied        MutationOutcome = "applied"
	OutcomeAlreadyApplied MutationOutcome = "already_applied"
	OutcomeFailed         MutationOutcome = "failed"
)

// MutationFunc is a state-changing call against the storage platform.
type MutationFunc func(ctx context.Context, reservationID string, req models.ActionRequest) (*models.ReservationSnapshot, error)

// IdempotencyGuard absorbs duplicate-submission conflicts. Operators
// double-tap and the platform legitimately rejects a second handover for an
// already-handed-over reservation; that must read as success, not failure.
type IdempotencyGuard struct {
	Logger *zap.Logger
	Now    func() time.Time // overridable for tests
}

func (g *IdempotencyGuard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Apply runs the mutation and classifies the result.
//
// A 2xx response returns (OutcomeApplied, updated snapshot, nil). A
// conflict or invalid-state rejection returns OutcomeAlreadyApplied with a
// synthesized optimistic snapshot; the conflict is logged for telemetry
// only. Anything else returns OutcomeFailed with a TransportError.
func (g *IdempotencyGuard) Apply(ctx context.Context, kind ActionKind, current models.ReservationSnapshot, reservationID string, req models.ActionRequest, op MutationFunc) (MutationOutcome, *models.ReservationSnapshot, error) {
	updated, err := op(ctx, reservationID, req)
	if err == nil {
		return OutcomeApplied, updated, nil
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Conflict() {
		merged := g.optimisticMerge(current, kind)
		g.Logger.Warn("storage platform rejected a duplicate mutation; treating as already applied",
			zap.String("reservationId", reservationID),
			zap.String("action", string(kind)),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message))
		return OutcomeAlreadyApplied, &merged, nil
	}

	return OutcomeFailed, nil, &TransportError{
		Op:      string(kind),
		Message: "failed to record " + string(kind),
		Err:     err,
	}
}

// optimisticMerge builds the stopgap snapshot shown until the
// reconciliation refresh resolves: the corresponding timestamp is set to
// now only if still null, keeping the fields write-once. It is never
// treated as final truth.
func (g *IdempotencyGuard) optimisticMerge(current models.ReservationSnapshot, kind ActionKind) models.ReservationSnapshot {
	merged := current
	now := g.now()
	switch kind {
	case ActionHandover:
		if merged.HandoverAt == nil {
			merged.HandoverAt = &now
		}
	case ActionReturn:
		if merged.HandoverAt == nil {
			// A return conflict implies the handover already happened
			// remotely; backfill so the stopgap keeps the write-order
			// invariant until the refresh replaces it.
			merged.HandoverAt = &now
		}
		if merged.ReturnedAt == nil {
			merged.ReturnedAt = &now
		}
	}
	return merged
}
