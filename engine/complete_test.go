package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeWayHand(t *testing.T) *EngineState {
	t.Helper()
	return newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 10000},
		Player{ID: 2, Name: "B", Stack: 10000},
		Player{ID: 3, Name: "C", Stack: 10000, Position: "UTG"},
	)
}

func TestRoundNotStartedBeforeAnyAction(t *testing.T) {
	state := newTestHand(t, BlindConfig{},
		Player{ID: 1, Name: "A", Stack: 1000},
		Player{ID: 2, Name: "B", Stack: 1000},
	)
	status := state.CheckRoundComplete(flopBase)
	assert.Equal(t, RoundNotStarted, status.State)
	assert.False(t, status.Complete)
}

func TestRoundInProgressReportsPendingInOrder(t *testing.T) {
	state := threeWayHand(t)
	state = record(t, state, preflopBase, 3, ActionRaise, "600")

	status := state.CheckRoundComplete(preflopBase)
	assert.Equal(t, RoundInProgress, status.State)
	assert.False(t, status.Complete)
	assert.Equal(t, int64(600), status.MaxContribution)
	// A owes 500, B owes 400; pending players come in roster order.
	assert.Equal(t, []uint64{1, 2}, status.PendingPlayers)
}

func TestRoundCompleteWhenEveryoneMatches(t *testing.T) {
	state := threeWayHand(t)
	state = record(t, state, preflopBase, 3, ActionRaise, "600")
	state = record(t, state, preflopBase, 1, ActionCall, "500")
	state = record(t, state, preflopBase, 2, ActionCall, "400")

	status := state.CheckRoundComplete(preflopBase)
	assert.Equal(t, RoundComplete, status.State)
	assert.True(t, status.Complete)
	assert.Empty(t, status.PendingPlayers)
}

func TestRoundCompleteWithFoldAndAllIn(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 10000},
		Player{ID: 2, Name: "B", Stack: 10000},
		Player{ID: 3, Name: "Short", Stack: 800, Position: "UTG"},
	)
	state = record(t, state, preflopBase, 3, ActionAllIn, "800")
	state = record(t, state, preflopBase, 1, ActionRaise, "1900")
	state = record(t, state, preflopBase, 2, ActionFold, "")

	// Short is all-in below the max; A holds the max; B folded.
	status := state.CheckRoundComplete(preflopBase)
	assert.True(t, status.Complete)
}

func TestCompletionIsMonotonic(t *testing.T) {
	state := threeWayHand(t)
	state = record(t, state, preflopBase, 3, ActionCall, "200")
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")

	require.True(t, state.CheckRoundComplete(preflopBase).Complete)

	// A no-op entry for an already-satisfied player must not flip the result.
	state = record(t, state, preflopBase, 2, ActionCheck, "")
	assert.True(t, state.CheckRoundComplete(preflopBase).Complete)
}

func TestNeedsToActSkipsSatisfiedPlayers(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 10000},
		Player{ID: 2, Name: "B", Stack: 10000},
		Player{ID: 3, Name: "Short", Stack: 600, Position: "UTG"},
	)
	state = record(t, state, preflopBase, 3, ActionAllIn, "600")
	state = record(t, state, preflopBase, 1, ActionCall, "500")
	state = record(t, state, preflopBase, 2, ActionCall, "400")
	state, _ = process(t, state, preflopBase)

	// More action reopens: A bets, B has not responded yet.
	state = record(t, state, preflopMore, 1, ActionBet, "1500")

	assert.False(t, state.NeedsToAct(preflopMore, 3), "all-in player never owes action")
	assert.False(t, state.NeedsToAct(preflopMore, 1), "bettor holds the max")
	assert.True(t, state.NeedsToAct(preflopMore, 2))

	state = record(t, state, preflopMore, 2, ActionCall, "1500")
	assert.False(t, state.NeedsToAct(preflopMore, 2))
}

func TestNeedsToActFalseForFoldedAndUnknown(t *testing.T) {
	state := threeWayHand(t)
	state = record(t, state, preflopBase, 3, ActionFold, "")
	assert.False(t, state.NeedsToAct(preflopBase, 3))
	assert.False(t, state.NeedsToAct(preflopBase, 99))
}
