package verification

import (
	"context"
	"time"

	auditRepo "stowage/database/repository/audit"
	"stowage/models"
	"stowage/services/upstream"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActionOutcome is what a recording attempt resolved to from the
// operator's point of view. NotAllowed means the defensive gate re-check
// refused the action and nothing was sent; it is informational, not an
// error.
type ActionOutcome string

const (
	ActionApplied        ActionOutcome = "applied"
	ActionAlreadyApplied ActionOutcome = "already_applied"
	ActionNotAllowed     ActionOutcome = "not_allowed"
)

// View is what the panel renders for a session: the snapshot, its banner
// classification, and the action gate.
type View struct {
	SessionID      string                     `json:"sessionId"`
	Snapshot       models.ReservationSnapshot `json:"snapshot"`
	Classification Classification             `json:"classification"`
	Gate           Gate                       `json:"gate"`
}

// ActionResult is a View plus the outcome of a recording attempt.
type ActionResult struct {
	View
	Outcome ActionOutcome `json:"outcome"`
}

// Service is the reservation verification and handover/return recording
// engine.
type Service interface {
	Verify(ctx context.Context, operator, code string) (*View, error)
	GetSession(ctx context.Context, sessionID string) (*View, error)
	RecordHandover(ctx context.Context, sessionID, operator string, req models.ActionRequest) (*ActionResult, error)
	RecordReturn(ctx context.Context, sessionID, operator string, req models.ActionRequest) (*ActionResult, error)
	CancelSession(ctx context.Context, sessionID string) error
}

// DefaultService implements Service.
type DefaultService struct {
	Gateway  Gateway
	Guard    *IdempotencyGuard
	Upstream upstream.Client
	Sessions SessionStore
	Audit    auditRepo.AuditEventRepository // optional; nil disables the audit trail
	Logger   *zap.Logger

	locks reservationLocks
}

// Verify resolves the code through the gateway and opens a fresh session
// holding the snapshot. Each verification is an independent call; repeated
// codes are not coalesced.
func (s *DefaultService) Verify(ctx context.Context, operator, code string) (*View, error) {
	snap, err := s.Gateway.Verify(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.VerificationSession{
		SessionID: uuid.New().String(),
		Code:      code,
		Operator:  operator,
		Snapshot:  *snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.audit(models.AuditEvent{
		SessionID:     session.SessionID,
		ReservationID: reservationID(snap),
		Action:        models.AuditActionVerify,
		Outcome:       models.AuditOutcomeVerified,
		Operator:      operator,
		Status:        snap.Status,
	})

	view := s.view(session)
	return &view, nil
}

// GetSession returns the current view of an open session.
func (s *DefaultService) GetSession(ctx context.Context, sessionID string) (*View, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := s.view(session)
	return &view, nil
}

// RecordHandover durably records the drop-off event for the session's
// reservation.
func (s *DefaultService) RecordHandover(ctx context.Context, sessionID, operator string, req models.ActionRequest) (*ActionResult, error) {
	return s.record(ctx, ActionHandover, sessionID, operator, req)
}

// RecordReturn durably records the pick-up event for the session's
// reservation.
func (s *DefaultService) RecordReturn(ctx context.Context, sessionID, operator string, req models.ActionRequest) (*ActionResult, error) {
	return s.record(ctx, ActionReturn, sessionID, operator, req)
}

// CancelSession discards an open session. An in-flight mutation, if any,
// runs to completion; its response is simply never rendered.
func (s *DefaultService) CancelSession(ctx context.Context, sessionID string) error {
	return s.Sessions.Delete(ctx, sessionID)
}

// record is the shared handover/return flow: precondition re-check, guarded
// mutation, optimistic update, mandatory reconciliation refresh.
func (s *DefaultService) record(ctx context.Context, kind ActionKind, sessionID, operator string, req models.ActionRequest) (*ActionResult, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Defensive re-check. The panel should never offer an illegal action,
	// but a stale view or a double-submitted form can still reach here.
	gate := DeriveGate(session.Snapshot, session.Pending)
	if !gate.Allows(kind) {
		s.Logger.Info("action refused by gate re-check",
			zap.String("sessionId", sessionID),
			zap.String("action", string(kind)),
			zap.String("gate", string(gate.State)))
		return &ActionResult{View: s.view(session), Outcome: ActionNotAllowed}, nil
	}

	resID := *session.Snapshot.ReservationID
	lock := s.locks.get(resID)
	if !lock.TryLock() {
		locked := s.view(session)
		locked.Gate = Gate{State: GateLocked, Reason: "another action is in progress for this reservation"}
		return &ActionResult{View: locked, Outcome: ActionNotAllowed}, nil
	}
	defer lock.Unlock()

	// Mark the session pending so any concurrent render keeps both
	// buttons disabled while the mutation is in flight.
	session.Pending = true
	if err := s.Sessions.Save(ctx, session); err != nil {
		s.Logger.Warn("failed to persist pending flag", zap.String("sessionId", sessionID), zap.Error(err))
	}

	op := s.Upstream.RecordHandover
	if kind == ActionReturn {
		op = s.Upstream.RecordReturn
	}

	outcome, snap, err := s.Guard.Apply(ctx, kind, session.Snapshot, resID, req, op)
	if err != nil {
		// Hard failure: the displayed snapshot stays untouched and the
		// operator retries explicitly.
		session.Pending = false
		if saveErr := s.Sessions.Save(ctx, session); saveErr != nil {
			s.Logger.Warn("failed to clear pending flag", zap.String("sessionId", sessionID), zap.Error(saveErr))
		}
		return nil, err
	}

	// Stopgap so the gate stays correct until the refresh lands.
	session.Snapshot = *snap

	// Reconciliation refresh: re-verify with the original code and replace
	// the snapshot wholesale. The optimistic merge above is never
	// consulted once this resolves.
	refreshed, refreshErr := s.Gateway.Verify(ctx, session.Code)
	if refreshErr != nil {
		s.Logger.Warn("post-action refresh failed; keeping optimistic snapshot until next verify",
			zap.String("sessionId", sessionID), zap.Error(refreshErr))
	} else {
		session.Snapshot = *refreshed
	}

	session.Pending = false
	session.UpdatedAt = time.Now()
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.audit(models.AuditEvent{
		SessionID:     sessionID,
		ReservationID: resID,
		Action:        models.AuditAction(kind),
		Outcome:       auditOutcome(outcome),
		Operator:      operator,
		Status:        session.Snapshot.Status,
		Notes:         req.Notes,
		EvidenceURL:   req.EvidenceURL,
	})

	result := &ActionResult{View: s.view(session), Outcome: actionOutcome(outcome)}
	return result, nil
}

func (s *DefaultService) view(session *models.VerificationSession) View {
	return View{
		SessionID:      session.SessionID,
		Snapshot:       session.Snapshot,
		Classification: Classify(session.Snapshot),
		Gate:           DeriveGate(session.Snapshot, session.Pending),
	}
}

// audit writes the event on a short independent context. Audit failures
// are logged and never surfaced to the operator.
func (s *DefaultService) audit(event models.AuditEvent) {
	if s.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.Audit.Create(ctx, event); err != nil {
		s.Logger.Warn("failed to record audit event",
			zap.String("action", string(event.Action)), zap.Error(err))
	}
}

func reservationID(snap *models.ReservationSnapshot) string {
	if snap.ReservationID == nil {
		return ""
	}
	return *snap.ReservationID
}

func actionOutcome(outcome MutationOutcome) ActionOutcome {
	if outcome == OutcomeAlreadyApplied {
		return ActionAlreadyApplied
	}
	return ActionApplied
}

func auditOutcome(outcome MutationOutcome) string {
	if outcome == OutcomeAlreadyApplied {
		return models.AuditOutcomeAlreadyApplied
	}
	return models.AuditOutcomeApplied
}
