package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to ScheduleStatus
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusCancelled, StatusApproved, false},
		{StatusCompleted, StatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestScheduleStatus_IsValid(t *testing.T) {
	assert.True(t, StatusApproved.IsValid())
	assert.False(t, ScheduleStatus("approved").IsValid())
	assert.False(t, ScheduleStatus("").IsValid())
}

func TestScheduleStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestCountStatuses(t *testing.T) {
	counts := CountStatuses([]*Schedule{
		{Status: StatusPending},
		{Status: StatusPending},
		{Status: StatusApproved},
	})

	assert.Equal(t, 2, counts[StatusPending])
	assert.Equal(t, 1, counts[StatusApproved])
	assert.Equal(t, 0, counts[StatusCompleted])
	assert.Len(t, counts, len(AllScheduleStatuses))
	assert.Equal(t, 3, counts.Total())
}

func TestDeliveryStatus_CanTransition(t *testing.T) {
	assert.True(t, DeliveryPending.CanTransition(DeliveryApproved))
	assert.True(t, DeliveryPending.CanTransition(DeliveryCancelled))
	assert.True(t, DeliveryApproved.CanTransition(DeliveryCompleted))
	assert.False(t, DeliveryCompleted.CanTransition(DeliveryPending))
	assert.False(t, DeliveryRejected.CanTransition(DeliveryApproved))
	assert.False(t, DeliveryStatus("shipped").IsValid())
}
