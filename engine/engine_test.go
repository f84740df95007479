package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	preflopBase = SectionKey{Stage: StagePreflop, Level: LevelBase}
	preflopMore = SectionKey{Stage: StagePreflop, Level: LevelMoreAction}
	flopBase    = SectionKey{Stage: StageFlop, Level: LevelBase}
	flopMore    = SectionKey{Stage: StageFlop, Level: LevelMoreAction}
	turnBase    = SectionKey{Stage: StageTurn, Level: LevelBase}
	riverBase   = SectionKey{Stage: StageRiver, Level: LevelBase}
)

// newTestHand builds a hand with the given players. The first player is the
// SB and the second the BB unless positions are already set.
func newTestHand(t *testing.T, blinds BlindConfig, players ...Player) *EngineState {
	t.Helper()
	if len(players) >= 2 {
		if players[0].Position == "" {
			players[0].Position = "SB"
		}
		if players[1].Position == "" {
			players[1].Position = "BB"
		}
	}
	state, err := NewHandState(1, players, blinds, UnitActual)
	require.NoError(t, err)
	return state
}

// record records an action and fails the test on a state error.
func record(t *testing.T, state *EngineState, key SectionKey, playerID uint64, action ActionType, amount string) *EngineState {
	t.Helper()
	next, err := state.RecordAction(key, playerID, ActionRecord{
		Action: action,
		Amount: amount,
		Unit:   UnitActual,
	})
	require.NoError(t, err)
	return next
}

// process processes a section and requires validation to pass.
func process(t *testing.T, state *EngineState, key SectionKey) (*EngineState, *SectionResult) {
	t.Helper()
	next, result, err := state.ProcessSection(key)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, result.Validation == nil || result.Validation.Valid,
		"section %s failed validation: %v", key, result.Validation)
	return next, result
}

// withFlopBoard puts a full flop on the board.
func withFlopBoard(t *testing.T, state *EngineState) *EngineState {
	t.Helper()
	next, err := state.SetBoard(StageFlop, []Card{
		{Rank: "A", Suit: "s"}, {Rank: "K", Suit: "d"}, {Rank: "7", Suit: "c"},
	})
	require.NoError(t, err)
	return next
}

func withTurnBoard(t *testing.T, state *EngineState) *EngineState {
	t.Helper()
	next, err := state.SetBoard(StageTurn, []Card{{Rank: "2", Suit: "h"}})
	require.NoError(t, err)
	return next
}

func withRiverBoard(t *testing.T, state *EngineState) *EngineState {
	t.Helper()
	next, err := state.SetBoard(StageRiver, []Card{{Rank: "9", Suit: "s"}})
	require.NoError(t, err)
	return next
}
