package verification

import (
	"context"
	"testing"
	"time"

	"stowage/models"
	"stowage/services/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(fake *fakeUpstream) (*DefaultService, *memSessionStore, *memAuditRepo) {
	logger := zap.NewNop()
	store := newMemSessionStore()
	audit := &memAuditRepo{}
	engine := &DefaultService{
		Gateway:  &DefaultGateway{Upstream: fake, Logger: logger},
		Guard:    &IdempotencyGuard{Logger: logger},
		Upstream: fake,
		Sessions: store,
		Audit:    audit,
		Logger:   logger,
	}
	return engine, store, audit
}

func TestVerifyOpensSession(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, _, audit := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")

	require.NoError(t, err)
	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, models.StatusActive, view.Snapshot.Status)
	// Scenario: active with no handover yet gates handover only.
	assert.True(t, view.Gate.HandoverEnabled())
	assert.False(t, view.Gate.ReturnEnabled())
	assert.Equal(t, SeveritySuccess, view.Classification.Severity)

	require.Len(t, audit.events, 1)
	assert.Equal(t, models.AuditActionVerify, audit.events[0].Action)
	assert.Equal(t, "op-7", audit.events[0].Operator)
}

func TestVerifyNoMatch(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: models.ReservationSnapshot{}}
	engine, _, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-404")

	require.NoError(t, err)
	assert.False(t, view.Snapshot.Found())
	assert.Equal(t, SeverityError, view.Classification.Severity)
	assert.False(t, view.Gate.HandoverEnabled())
	assert.False(t, view.Gate.ReturnEnabled())
}

func TestRecordHandoverHappyPath(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, _, audit := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)
	verifies := fake.verifyCalls

	result, err := engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{Notes: "two bags"})

	require.NoError(t, err)
	assert.Equal(t, ActionApplied, result.Outcome)
	// The refreshed snapshot, not the optimistic one, drives the view.
	assert.Equal(t, fake.verifyCalls, verifies+1, "reconciliation refresh must re-verify")
	require.NotNil(t, result.Snapshot.HandoverAt)
	assert.True(t, result.Gate.ReturnEnabled())
	assert.False(t, result.Gate.HandoverEnabled())
	assert.True(t, result.Snapshot.Consistent())

	require.Len(t, audit.events, 2)
	assert.Equal(t, models.AuditActionHandover, audit.events[1].Action)
	assert.Equal(t, models.AuditOutcomeApplied, audit.events[1].Outcome)
	assert.Equal(t, "two bags", audit.events[1].Notes)
}

func TestRecordHandoverTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, _, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)

	first, err := engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, ActionApplied, first.Outcome)

	// The second submission never surfaces as an operator-visible error.
	second, err := engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, ActionNotAllowed, second.Outcome, "gate re-check refuses the duplicate before the network")

	require.NotNil(t, second.Snapshot.HandoverAt)
	assert.Equal(t, 1, fake.handoverCalls, "exactly one handover reached the platform")
}

func TestRecordHandoverStaleSessionConflict(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, _, audit := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)

	// Another desk records the handover while this session's view is stale.
	fake.setRemoteHandover(time.Now().Add(-time.Minute))

	result, err := engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{})

	require.NoError(t, err, "a duplicate rejection must read as success")
	assert.Equal(t, ActionAlreadyApplied, result.Outcome)
	require.NotNil(t, result.Snapshot.HandoverAt)
	assert.True(t, result.Gate.ReturnEnabled())

	last := audit.events[len(audit.events)-1]
	assert.Equal(t, models.AuditOutcomeAlreadyApplied, last.Outcome)
}

func TestRecordReturnConflict(t *testing.T) {
	ctx := context.Background()
	handedOver := time.Now().Add(-time.Hour)
	snap := activeSnapshot("res-1")
	snap.HandoverAt = &handedOver
	fake := &fakeUpstream{snapshot: snap}
	engine, _, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)
	assert.True(t, view.Gate.ReturnEnabled())

	// The platform already has the return recorded.
	fake.setRemoteReturn(time.Now().Add(-time.Minute))

	result, err := engine.RecordReturn(ctx, view.SessionID, "op-7", models.ActionRequest{})

	require.NoError(t, err)
	assert.Equal(t, ActionAlreadyApplied, result.Outcome)
	require.NotNil(t, result.Snapshot.ReturnedAt)
	assert.True(t, result.Snapshot.Consistent())
}

func TestRecordHandoverHardFailure(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, store, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)

	fake.handoverErr = &upstream.APIError{StatusCode: 500, Message: "storage backend down"}

	_, err = engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)

	// The displayed snapshot stays untouched and the session is unlocked
	// so the operator can retry explicitly.
	session, err := store.Get(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Nil(t, session.Snapshot.HandoverAt)
	assert.False(t, session.Pending)
}

func TestRecordRefusedWhileMutationPending(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, store, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)

	session, err := store.Get(ctx, view.SessionID)
	require.NoError(t, err)
	session.Pending = true
	require.NoError(t, store.Save(ctx, session))

	result, err := engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{})

	require.NoError(t, err)
	assert.Equal(t, ActionNotAllowed, result.Outcome)
	assert.Zero(t, fake.handoverCalls, "nothing may reach the platform while a mutation is pending")
}

func TestRecordRefusedForWrongGate(t *testing.T) {
	ctx := context.Background()
	snap := activeSnapshot("res-1")
	snap.Status = models.StatusReserved
	fake := &fakeUpstream{snapshot: snap}
	engine, _, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)

	result, err := engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{})

	require.NoError(t, err)
	assert.Equal(t, ActionNotAllowed, result.Outcome)
	assert.Zero(t, fake.handoverCalls)

	// Return before handover is likewise refused locally.
	result, err = engine.RecordReturn(ctx, view.SessionID, "op-7", models.ActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, ActionNotAllowed, result.Outcome)
	assert.Zero(t, fake.returnCalls)
}

func TestFullDropOffPickUpFlow(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, _, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)

	handover, err := engine.RecordHandover(ctx, view.SessionID, "op-7", models.ActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, ActionApplied, handover.Outcome)
	assert.True(t, handover.Gate.ReturnEnabled())

	ret, err := engine.RecordReturn(ctx, view.SessionID, "op-7", models.ActionRequest{EvidenceURL: "https://cdn.example/pickup.jpg"})
	require.NoError(t, err)
	assert.Equal(t, ActionApplied, ret.Outcome)
	require.NotNil(t, ret.Snapshot.ReturnedAt)
	assert.True(t, ret.Snapshot.Consistent())
	assert.False(t, ret.Gate.HandoverEnabled())
	assert.False(t, ret.Gate.ReturnEnabled())
}

func TestCancelSession(t *testing.T) {
	ctx := context.Background()
	fake := &fakeUpstream{snapshot: activeSnapshot("res-1")}
	engine, _, _ := newTestEngine(fake)

	view, err := engine.Verify(ctx, "op-7", "QR-1")
	require.NoError(t, err)

	require.NoError(t, engine.CancelSession(ctx, view.SessionID))

	_, err = engine.GetSession(ctx, view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
