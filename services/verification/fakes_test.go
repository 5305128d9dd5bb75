package verification

import (
	"context"
	"net/http"
	"sync"
	"time"

	"stowage/models"
	"stowage/services/upstream"
)

// fakeUpstream simulates the storage platform: it keeps one reservation and
// rejects duplicate mutations the way the real platform does.
type fakeUpstream struct {
	mu       sync.Mutex
	snapshot models.ReservationSnapshot

	verifyErr   error
	handoverErr error
	returnErr   error

	verifyCalls   int
	handoverCalls int
	returnCalls   int
}

func (f *fakeUpstream) Verify(ctx context.Context, code string) (*models.ReservationSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	snap := f.snapshot
	return &snap, nil
}

func (f *fakeUpstream) RecordHandover(ctx context.Context, reservationID string, req models.ActionRequest) (*models.ReservationSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handoverCalls++
	if f.handoverErr != nil {
		return nil, f.handoverErr
	}
	if f.snapshot.HandoverAt != nil {
		return nil, &upstream.APIError{StatusCode: http.StatusConflict, Message: "handover already recorded"}
	}
	now := time.Now()
	f.snapshot.HandoverAt = &now
	f.snapshot.HandoverBy = "desk-1"
	snap := f.snapshot
	return &snap, nil
}

func (f *fakeUpstream) RecordReturn(ctx context.Context, reservationID string, req models.ActionRequest) (*models.ReservationSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.returnCalls++
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	if f.snapshot.HandoverAt == nil {
		return nil, &upstream.APIError{StatusCode: http.StatusBadRequest, Message: "reservation has not been handed over"}
	}
	if f.snapshot.ReturnedAt != nil {
		return nil, &upstream.APIError{StatusCode: http.StatusConflict, Message: "return already recorded"}
	}
	now := time.Now()
	f.snapshot.ReturnedAt = &now
	f.snapshot.ReturnedBy = "desk-1"
	snap := f.snapshot
	return &snap, nil
}

// setRemoteHandover marks the reservation as handed over on the platform
// side only, simulating another desk recording it first.
func (f *fakeUpstream) setRemoteHandover(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot.HandoverAt = &t
	f.snapshot.HandoverBy = "desk-2"
}

// setRemoteReturn marks the reservation as returned on the platform side.
func (f *fakeUpstream) setRemoteReturn(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshot.HandoverAt == nil {
		f.snapshot.HandoverAt = &t
	}
	f.snapshot.ReturnedAt = &t
	f.snapshot.ReturnedBy = "desk-2"
}

// memSessionStore is an in-memory SessionStore for tests.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.VerificationSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]models.VerificationSession)}
}

func (m *memSessionStore) Save(ctx context.Context, session *models.VerificationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = *session
	return nil
}

func (m *memSessionStore) Get(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (m *memSessionStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// memAuditRepo captures audit events for assertions.
type memAuditRepo struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (m *memAuditRepo) Create(ctx context.Context, event models.AuditEvent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return event.ID, nil
}

func (m *memAuditRepo) GetByReservationID(ctx context.Context, reservationID string) ([]models.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditEvent
	for _, e := range m.events {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAuditRepo) GetRecent(ctx context.Context, limit int64) ([]models.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditEvent(nil), m.events...), nil
}

func activeSnapshot(id string) models.ReservationSnapshot {
	rid := id
	return models.ReservationSnapshot{
		ReservationID:   &rid,
		Status:          models.StatusActive,
		Valid:           true,
		GuestName:       "Ada Lovelace",
		BagCount:        2,
		StorageLocation: "rack B-14",
	}
}
