package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessSectionHeadsUpLimp(t *testing.T) {
	// Two players, 10k each, 500/1000. SB calls 500 more, BB checks.
	state := newTestHand(t, BlindConfig{SmallBlind: 500, BigBlind: 1000},
		Player{ID: 1, Name: "Ivan", Stack: 10000},
		Player{ID: 2, Name: "Mina", Stack: 10000},
	)
	state = record(t, state, preflopBase, 1, ActionCall, "500")
	state = record(t, state, preflopBase, 2, ActionCheck, "")

	state, result := process(t, state, preflopBase)

	assert.Equal(t, int64(1000), result.Contributed[1])
	assert.Equal(t, int64(1000), result.Contributed[2])
	assert.Equal(t, int64(10000), result.Stacks.Initial[1])
	assert.Equal(t, int64(9000), result.Stacks.Updated[1])
	assert.Equal(t, int64(9000), result.Stacks.Updated[2])
	assert.Equal(t, result.Stacks.Updated, result.Stacks.Current)

	status := state.CheckRoundComplete(preflopBase)
	assert.True(t, status.Complete)

	pots, err := state.CalculatePots(StagePreflop)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), pots.TotalPot)
	assert.Equal(t, int64(2000), pots.MainPot.Amount)
	assert.Empty(t, pots.SidePots)
}

func TestProcessSectionConservation(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 7000},
		Player{ID: 3, Name: "C", Stack: 9000, Position: "UTG"},
	)
	state = record(t, state, preflopBase, 3, ActionRaise, "600")
	state = record(t, state, preflopBase, 1, ActionCall, "500")
	state = record(t, state, preflopBase, 2, ActionCall, "400")

	_, result := process(t, state, preflopBase)

	var sumInitial, sumUpdated, sumContributed int64
	for id, amount := range result.Contributed {
		sumContributed += amount
		sumInitial += result.Stacks.Initial[id]
		sumUpdated += result.Stacks.Updated[id]
	}
	assert.Equal(t, sumInitial-sumUpdated, sumContributed)
	for _, updated := range result.Stacks.Updated {
		assert.GreaterOrEqual(t, updated, int64(0))
	}
}

func TestProcessSectionClampsOversizedContribution(t *testing.T) {
	// C types a call bigger than their stack; the engine clamps it to an
	// all-in instead of letting the stack go negative, and flags it.
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
		Player{ID: 3, Name: "C", Stack: 800, Position: "UTG"},
	)
	state = record(t, state, preflopBase, 3, ActionCall, "2000")
	state = record(t, state, preflopBase, 1, ActionCall, "1900")
	state = record(t, state, preflopBase, 2, ActionCheck, "")

	_, result := process(t, state, preflopBase)

	assert.Equal(t, int64(800), result.Contributed[3])
	assert.Equal(t, int64(0), result.Stacks.Updated[3])
	assert.Equal(t, []uint64{3}, result.ClampedAllIn)
}

func TestProcessSectionAutoFoldsUnactedPreflop(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
		Player{ID: 3, Name: "C", Stack: 5000, Position: "UTG"},
	)
	// C never acts; the blinds check/call through.
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")

	state, result := process(t, state, preflopBase)

	assert.Equal(t, int64(0), result.Contributed[3])
	assert.Equal(t, ActionFold, state.Actions[preflopBase][3].Action)
	// C is gone from the next street.
	for _, p := range state.ActivePlayers(flopBase) {
		assert.NotEqual(t, uint64(3), p.ID)
	}
}

func TestProcessSectionRejectsShortRaise(t *testing.T) {
	// B raises to exactly the size of A's bet: not strictly greater, so the
	// section is rejected and no stacks move.
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
	)
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")
	state, _ = process(t, state, preflopBase)
	state = withFlopBoard(t, state)

	state = record(t, state, flopBase, 1, ActionBet, "1000")
	state = record(t, state, flopBase, 2, ActionRaise, "1000")

	next, result, err := state.ProcessSection(flopBase)
	require.NoError(t, err)
	require.NotNil(t, result.Validation)
	assert.False(t, result.Validation.Valid)
	assert.Equal(t, uint64(2), result.Validation.FirstPlayerID)
	assert.Contains(t, result.Validation.Messages[0], "raise")

	// All-or-nothing: the state is untouched.
	assert.Same(t, state, next)
	assert.False(t, next.Processed[flopBase])
	assert.Nil(t, next.Stacks[flopBase])
}

func TestProcessSectionRejectsMissingBetAmount(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
	)
	state = record(t, state, preflopBase, 1, ActionBet, "")

	_, result, err := state.ProcessSection(preflopBase)
	require.NoError(t, err)
	require.NotNil(t, result.Validation)
	assert.False(t, result.Validation.Valid)
	assert.Equal(t, uint64(1), result.Validation.FirstPlayerID)
}

func TestProcessSectionRequiresBoardForFlopActions(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
	)
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")
	state, _ = process(t, state, preflopBase)

	// No flop cards entered.
	state = record(t, state, flopBase, 1, ActionCheck, "")
	state = record(t, state, flopBase, 2, ActionCheck, "")

	_, _, err := state.ProcessSection(flopBase)
	require.Error(t, err)
	assert.IsType(t, StateError{}, err)
}

func TestProcessSectionOutOfOrder(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
	)
	_, _, err := state.ProcessSection(flopBase)
	require.Error(t, err)
	assert.IsType(t, StateError{}, err)
}

func TestRecordActionReopensProcessedSection(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
	)
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")
	state, _ = process(t, state, preflopBase)
	require.True(t, state.Processed[preflopBase])

	// Editing the same street reopens it and keeps the blind postings.
	state = record(t, state, preflopBase, 1, ActionRaise, "600")
	assert.False(t, state.Processed[preflopBase])
	assert.Equal(t, int64(100), state.Actions[preflopBase][1].PostedSB)
}

func TestRecordActionRejectsSealedStreet(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
	)
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")
	state, _ = process(t, state, preflopBase)
	state = withFlopBoard(t, state)
	state = record(t, state, flopBase, 1, ActionCheck, "")
	state = record(t, state, flopBase, 2, ActionCheck, "")
	state, _ = process(t, state, flopBase)

	// Preflop is now a sealed street.
	_, err := state.RecordAction(preflopBase, 1, ActionRecord{Action: ActionFold})
	require.Error(t, err)
	assert.IsType(t, StateError{}, err)
}

func TestZeroStackPlayerIsExcludedEverywhere(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 5000},
		Player{ID: 2, Name: "B", Stack: 5000},
		Player{ID: 3, Name: "Busted", Stack: 0, Position: "UTG"},
	)
	for _, key := range SectionOrder {
		for _, p := range state.ActivePlayers(key) {
			assert.NotEqual(t, uint64(3), p.ID)
		}
	}

	_, err := state.RecordAction(preflopBase, 3, ActionRecord{Action: ActionCall, Amount: "200"})
	require.Error(t, err)

	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")
	state, result := process(t, state, preflopBase)
	_, hasLedgerEntry := result.Contributed[3]
	assert.False(t, hasLedgerEntry)

	pots, err := state.CalculatePots(StagePreflop)
	require.NoError(t, err)
	assert.NotContains(t, pots.MainPot.Eligible, uint64(3))
}
