package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTerminal(t *testing.T) {
	terminal := []ReservationStatus{StatusCompleted, StatusCancelled, StatusExpired, StatusNoShow, StatusLost}
	open := []ReservationStatus{StatusNotFound, StatusReserved, StatusActive}

	for _, status := range terminal {
		snap := ReservationSnapshot{Status: status}
		assert.True(t, snap.Terminal(), "status %s", status)
	}
	for _, status := range open {
		snap := ReservationSnapshot{Status: status}
		assert.False(t, snap.Terminal(), "status %s", status)
	}
}

func TestConsistent(t *testing.T) {
	now := time.Now()

	assert.True(t, (&ReservationSnapshot{}).Consistent())
	assert.True(t, (&ReservationSnapshot{HandoverAt: &now}).Consistent())
	assert.True(t, (&ReservationSnapshot{HandoverAt: &now, ReturnedAt: &now}).Consistent())
	assert.False(t, (&ReservationSnapshot{ReturnedAt: &now}).Consistent(),
		"a reservation cannot be returned before it was handed over")
}

func TestNotFoundSnapshot(t *testing.T) {
	snap := NotFoundSnapshot()

	assert.False(t, snap.Found())
	assert.Equal(t, StatusNotFound, snap.Status)
}
