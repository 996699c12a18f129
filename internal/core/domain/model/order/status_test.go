package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected order.Status
		wantErr  bool
	}{
		{"pending", "pending", order.Pending, false},
		{"assigned", "assigned", order.Assigned, false},
		{"accepted", "accepted", order.Accepted, false},
		{"picked_up", "picked_up", order.PickedUp, false},
		{"in_transit", "in_transit", order.InTransit, false},
		{"delivered", "delivered", order.Delivered, false},
		{"cancelled", "cancelled", order.Cancelled, false},
		{"escalated", "escalated", order.Escalated, false},
		{"unknown string", "shipped", order.Unknown, true},
		{"empty string", "", order.Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := order.StatusFromString(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Run("should follow the happy path", func(t *testing.T) {
		s := order.Pending

		s, err := s.Assign()
		require.NoError(t, err)
		assert.Equal(t, order.Assigned, s)

		s, err = s.Accept()
		require.NoError(t, err)
		assert.Equal(t, order.Accepted, s)

		s, err = s.PickUp()
		require.NoError(t, err)
		assert.Equal(t, order.PickedUp, s)

		s, err = s.Transit()
		require.NoError(t, err)
		assert.Equal(t, order.InTransit, s)

		s, err = s.Deliver()
		require.NoError(t, err)
		assert.Equal(t, order.Delivered, s)
	})

	t.Run("should allow reassignment from assigned", func(t *testing.T) {
		s, err := order.Assigned.Assign()

		require.NoError(t, err)
		assert.Equal(t, order.Assigned, s)
	})

	t.Run("should release assigned back to pending", func(t *testing.T) {
		s, err := order.Assigned.Release()

		require.NoError(t, err)
		assert.Equal(t, order.Pending, s)
	})

	t.Run("should not release once accepted", func(t *testing.T) {
		_, err := order.Accepted.Release()

		require.Error(t, err)
	})

	t.Run("should escalate only from pending", func(t *testing.T) {
		s, err := order.Pending.Escalate()
		require.NoError(t, err)
		assert.Equal(t, order.Escalated, s)

		_, err = order.Assigned.Escalate()
		require.Error(t, err)
	})

	t.Run("should cancel any non terminal status", func(t *testing.T) {
		for _, from := range []order.Status{
			order.Pending, order.Assigned, order.Accepted, order.PickedUp, order.InTransit,
		} {
			s, err := from.Cancel()
			require.NoError(t, err, from.String())
			assert.Equal(t, order.Cancelled, s)
		}

		for _, from := range []order.Status{order.Delivered, order.Cancelled, order.Escalated} {
			_, err := from.Cancel()
			require.Error(t, err, from.String())
		}
	})

	t.Run("should reject skipping steps", func(t *testing.T) {
		_, err := order.Pending.Accept()
		require.Error(t, err)

		_, err = order.Assigned.PickUp()
		require.Error(t, err)

		_, err = order.Accepted.Deliver()
		require.Error(t, err)
	})
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, order.Delivered.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
	assert.True(t, order.Escalated.IsTerminal())
	assert.False(t, order.InTransit.IsTerminal())

	assert.True(t, order.Accepted.IsActiveDelivery())
	assert.True(t, order.PickedUp.IsActiveDelivery())
	assert.True(t, order.InTransit.IsActiveDelivery())
	assert.False(t, order.Assigned.IsActiveDelivery())
	assert.False(t, order.Delivered.IsActiveDelivery())
}

func TestStatusValidateCanHaveAgent(t *testing.T) {
	t.Run("agent carrying statuses require an agent", func(t *testing.T) {
		for _, s := range []order.Status{order.Assigned, order.Accepted, order.PickedUp, order.InTransit} {
			assert.NoError(t, s.ValidateCanHaveAgent(true), s.String())
			assert.Error(t, s.ValidateCanHaveAgent(false), s.String())
		}
	})

	t.Run("pending and terminal statuses forbid an agent", func(t *testing.T) {
		for _, s := range []order.Status{order.Pending, order.Cancelled, order.Escalated} {
			assert.NoError(t, s.ValidateCanHaveAgent(false), s.String())
			assert.Error(t, s.ValidateCanHaveAgent(true), s.String())
		}
	})
}
