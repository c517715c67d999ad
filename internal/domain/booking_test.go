package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{BookingPending, BookingConfirmed},
		{BookingPending, BookingCancelled},
		{BookingConfirmed, BookingInProgress},
		{BookingConfirmed, BookingCancelled},
		{BookingInProgress, BookingCompleted},
		{BookingInProgress, BookingCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to BookingStatus }{
		{BookingPending, BookingInProgress},
		{BookingPending, BookingCompleted},
		{BookingConfirmed, BookingCompleted},
		{BookingCompleted, BookingInProgress},
		{BookingCompleted, BookingCancelled},
		{BookingCancelled, BookingPending},
		{BookingDisputed, BookingCancelled},
		{BookingDisputed, BookingCompleted},  // disputes close through resolution only
		{BookingInProgress, BookingDisputed}, // disputes open through their own workflow
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingCompleted}).IsTerminal())
	assert.True(t, (&Booking{Status: BookingCancelled}).IsTerminal())
	assert.False(t, (&Booking{Status: BookingDisputed}).IsTerminal())
	assert.False(t, (&Booking{Status: BookingPending}).IsTerminal())

	assert.False(t, (&Booking{Status: BookingCompleted}).CanBeCancelled())
	assert.True(t, (&Booking{Status: BookingInProgress}).CanBeCancelled())
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingPending, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled, BookingDisputed,
	} {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus("archived"))
	assert.False(t, IsValidStatus(""))
}

func TestActualMinutes(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 90, ActualMinutes(start, start.Add(90*time.Minute)))
	assert.Equal(t, 90, ActualMinutes(start, start.Add(90*time.Minute+20*time.Second)))
	assert.Equal(t, 91, ActualMinutes(start, start.Add(90*time.Minute+40*time.Second)))
	assert.Equal(t, 0, ActualMinutes(start, start))
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 9, 15, 18, 45, 12, 999, time.FixedZone("X", 6*3600))
	d := DateOnly(ts)

	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.September, d.Month())
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, 0, d.Hour())
	assert.Equal(t, time.UTC, d.Location())
}

func TestIsParticipant(t *testing.T) {
	b := &Booking{CustomerID: 1, MechanicID: 2}
	assert.True(t, b.IsParticipant(1))
	assert.True(t, b.IsParticipant(2))
	assert.False(t, b.IsParticipant(3))
}
