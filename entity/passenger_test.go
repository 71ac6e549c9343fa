package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/transitsim/errors"
)

func TestPassenger_InitialState(t *testing.T) {
	dest := StopDestination(NewStop("D"))
	p := NewPassenger("ana", "Regular", dest)

	assert.Equal(t, StateWaiting, p.State())
	assert.Nil(t, p.CurrentStop())
	assert.Nil(t, p.CurrentBus())
	assert.Nil(t, p.Origin())
	assert.False(t, p.AtDestination())
}

func TestPassenger_TransitionRules(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		ok   bool
	}{
		{"waiting to boarding", StateWaiting, StateBoarding, true},
		{"boarding to in_bus", StateBoarding, StateInBus, true},
		{"in_bus to alighting", StateInBus, StateAlighting, true},
		{"alighting to waiting", StateAlighting, StateWaiting, true},
		{"alighting to arrived", StateAlighting, StateArrived, true},
		{"waiting to in_bus skips boarding", StateWaiting, StateInBus, false},
		{"in_bus to waiting skips alighting", StateInBus, StateWaiting, false},
		{"arrived is terminal", StateArrived, StateWaiting, false},
		{"no boarding back to waiting", StateBoarding, StateWaiting, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPassenger("p", "Regular", StopDestination(NewStop("D")))
			p.state = tt.from

			err := p.transitionLocked(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, p.State())
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidTransition)
				assert.True(t, errors.IsInvalid(err))
				assert.Equal(t, tt.from, p.State())
			}
		})
	}
}

func TestPassenger_OriginRecordedOnce(t *testing.T) {
	first := NewStop("first")
	second := NewStop("second")
	p := NewPassenger("p", "Regular", StopDestination(second))

	require.NoError(t, first.AddPassenger(p))
	assert.Equal(t, first, p.Origin())

	p.setStop(second)
	assert.Equal(t, first, p.Origin())
	assert.Equal(t, second, p.CurrentStop())
}

func TestDestination_StopTarget(t *testing.T) {
	d := NewStop("D")
	dest := StopDestination(d)

	assert.False(t, dest.IsZero())
	assert.Equal(t, []*Stop{d}, dest.ResolvedStops())
	assert.True(t, dest.Contains(d))
	assert.False(t, dest.Contains(NewStop("other")))
	assert.Equal(t, "D", dest.Name())
	assert.Equal(t, d.ID, dest.NodeID())
}

func TestDestination_StationTarget(t *testing.T) {
	st := NewStation("Central")
	platformA := NewStop("Central/A")
	platformB := NewStop("Central/B")
	st.AttachStop(platformA)
	st.AttachStop(platformB)

	dest := StationDestination(st)
	assert.ElementsMatch(t, []*Stop{platformA, platformB}, dest.ResolvedStops())
	assert.True(t, dest.Contains(platformA))
	assert.True(t, dest.Contains(platformB))
	assert.False(t, dest.Contains(NewStop("elsewhere")))
	assert.Equal(t, st.ID, dest.NodeID())
}

func TestDestination_Zero(t *testing.T) {
	var dest Destination
	assert.True(t, dest.IsZero())
	assert.Nil(t, dest.ResolvedStops())
	assert.False(t, dest.Contains(NewStop("S")))
	assert.Equal(t, "none", dest.Name())
}
