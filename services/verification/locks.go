package verification

import "sync"

// reservationLocks serializes mutation attempts per reservation within this
// process. The session Pending flag only drives the panel's disabled
// buttons; this lock is the actual concurrency guarantee.
type reservationLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *reservationLocks) get(reservationID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	lock, exists := l.locks[reservationID]
	if !exists {
		lock = &sync.Mutex{}
		l.locks[reservationID] = lock
	}
	return lock
}
