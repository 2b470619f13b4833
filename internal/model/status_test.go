package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReservationStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want ReservationStatus
		ok   bool
	}{
		{"pending", StatusPending, true},
		{"confirmed", StatusConfirmed, true},
		{"in_progress", StatusInProgress, true},
		{"completed", StatusCompleted, true},
		{"rejected", StatusRejected, true},
		{"cancelled", StatusCancelled, true},
		{"pending_approval", StatusPending, true},
		{"approved", StatusConfirmed, true},
		{"active", StatusInProgress, true},
		{"canceled", StatusCancelled, true},
		{"", "", false},
		{"PENDING", "", false},
		{"done", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseReservationStatus(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestReservationTransitions(t *testing.T) {
	allowed := []struct{ from, to ReservationStatus }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusInProgress, StatusCompleted},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to ReservationStatus }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCompleted},
		{StatusConfirmed, StatusRejected},
		{StatusInProgress, StatusCancelled},
		{StatusInProgress, StatusRejected},
		{StatusCompleted, StatusCancelled},
		{StatusRejected, StatusPending},
		{StatusCancelled, StatusConfirmed},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	all := []ReservationStatus{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusRejected, StatusCancelled}
	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			assert.False(t, from.CanTransitionTo(to), "terminal %s must not reach %s", from, to)
		}
	}
}

func TestHoldsStorage(t *testing.T) {
	assert.True(t, StatusConfirmed.HoldsStorage())
	assert.True(t, StatusInProgress.HoldsStorage())
	assert.False(t, StatusPending.HoldsStorage())
	assert.False(t, StatusCompleted.HoldsStorage())
	assert.False(t, StatusRejected.HoldsStorage())
	assert.False(t, StatusCancelled.HoldsStorage())
}

func TestParseSizeClass(t *testing.T) {
	for _, raw := range []string{"xs", "s", "m", "l", "special", "refrigerated"} {
		got, ok := ParseSizeClass(raw)
		assert.True(t, ok, "raw=%q", raw)
		assert.Equal(t, SizeClass(raw), got)
	}
	_, ok := ParseSizeClass("xl")
	assert.False(t, ok)
	_, ok = ParseSizeClass("")
	assert.False(t, ok)
}
