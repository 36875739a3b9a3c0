package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSlots(t *testing.T) {
	snapshot := &Tournament{Groups: []Group{
		{ID: 1, GroupNumber: 1, Participants: []string{"A", "B", "C"}},
		{ID: 10, GroupNumber: 10},
		{ID: 11, GroupNumber: 11},
		{ID: 12, GroupNumber: 12, Participants: []string{"A", "C"}},
		{ID: 13, GroupNumber: 13},
	}}

	prev := SlotSetup{
		10: {GroupID: 10, GroupNumber: 10, State: SlotHalfFilled, Player1: "A"},
		11: {GroupID: 11, GroupNumber: 11, State: SlotFilled, Player1: "B", Player2: "C"},
		12: {GroupID: 12, GroupNumber: 12, State: SlotFilled, Player1: "A", Player2: "C"},
	}

	next := ReconcileSlots(prev, snapshot)
	require.Len(t, next, 3)

	assert.Equal(t, Slot{GroupID: 10, GroupNumber: 10, State: SlotHalfFilled, Player1: "A"}, next[10], "half filled slot survives")
	assert.Equal(t, SlotEmpty, next[11].State, "filled slot of a group that came back empty starts over")
	assert.NotContains(t, next, int64(12), "committed group leaves the setup")
	assert.Equal(t, SlotEmpty, next[13].State, "new empty group gets a slot")

	// prev is left alone
	assert.Equal(t, SlotFilled, prev[11].State)
}

func TestReconcileSlotsNilSnapshot(t *testing.T) {
	assert.Empty(t, ReconcileSlots(SlotSetup{1: {GroupID: 1}}, nil))
}

func TestSlotSetupAssign(t *testing.T) {
	setup := SlotSetup{
		21: {GroupID: 21, GroupNumber: 21, State: SlotEmpty},
		20: {GroupID: 20, GroupNumber: 20, State: SlotEmpty},
	}

	first, err := setup.Assign("Anna")
	require.NoError(t, err)
	assert.Equal(t, Slot{GroupID: 20, GroupNumber: 20, State: SlotHalfFilled, Player1: "Anna"}, first)
	setup[first.GroupID] = first

	_, err = setup.Assign("Anna")
	assert.ErrorIs(t, err, ErrPlayerAlreadyPlaced)

	second, err := setup.Assign("Bo")
	require.NoError(t, err)
	assert.Equal(t, SlotFilled, second.State)
	assert.Equal(t, []string{"Anna", "Bo"}, second.Pair())
	setup[second.GroupID] = second

	third, err := setup.Assign("Cecilia")
	require.NoError(t, err)
	assert.Equal(t, int64(21), third.GroupID)
	assert.Equal(t, SlotHalfFilled, third.State)

	_, err = setup.Assign("Bo")
	assert.ErrorIs(t, err, ErrPlayerAlreadyPlaced)

	_, err = setup.Assign("   ")
	assert.ErrorIs(t, err, ErrEmptyPlayerName)
}

func TestSlotSetupAllFilled(t *testing.T) {
	setup := SlotSetup{
		20: {GroupID: 20, GroupNumber: 20, State: SlotFilled, Player1: "A", Player2: "B"},
	}

	assert.False(t, setup.HasEmptySlots())
	_, err := setup.Assign("C")
	assert.ErrorIs(t, err, ErrAllSlotsFilled)

	assert.False(t, SlotSetup{}.HasEmptySlots())
	assert.True(t, SlotSetup{1: {GroupID: 1}}.HasEmptySlots())
}

func TestSlotStateString(t *testing.T) {
	assert.Equal(t, "empty", SlotEmpty.String())
	assert.Equal(t, "half_filled", SlotHalfFilled.String())
	assert.Equal(t, "filled", SlotFilled.String())
	assert.Equal(t, "unknown", SlotState(9).String())
}
