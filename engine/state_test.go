package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandStateValidation(t *testing.T) {
	blinds := BlindConfig{SmallBlind: 100, BigBlind: 200}
	tests := []struct {
		name    string
		players []Player
	}{
		{"too few players", []Player{{ID: 1, Name: "A", Stack: 100}}},
		{"missing id", []Player{{Name: "A", Stack: 100}, {ID: 2, Name: "B", Stack: 100}}},
		{"duplicate id", []Player{{ID: 1, Name: "A", Stack: 100}, {ID: 1, Name: "B", Stack: 100}}},
		{"negative stack", []Player{{ID: 1, Name: "A", Stack: -5}, {ID: 2, Name: "B", Stack: 100}}},
		{"bad position", []Player{{ID: 1, Name: "A", Stack: 100, Position: "LOL"}, {ID: 2, Name: "B", Stack: 100}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandState(1, tt.players, blinds, UnitActual)
			assert.Error(t, err)
		})
	}
}

func TestNewHandStatePostsBlindsAndAnte(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 500, BigBlind: 1000, Ante: 1000},
		Player{ID: 1, Name: "A", Stack: 50000},
		Player{ID: 2, Name: "B", Stack: 50000},
		Player{ID: 3, Name: "C", Stack: 50000, Position: "UTG"},
	)
	sb := state.Actions[preflopBase][1]
	bb := state.Actions[preflopBase][2]
	assert.Equal(t, int64(500), sb.PostedSB)
	assert.Equal(t, int64(1000), bb.PostedBB)
	assert.Equal(t, int64(1000), bb.PostedAnte)
	assert.Equal(t, int64(1000), state.DeadMoney)
	_, hasRecord := state.Actions[preflopBase][3]
	assert.False(t, hasRecord)
}

func TestCloneIsDeep(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 10000},
		Player{ID: 2, Name: "B", Stack: 10000},
	)
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")
	processed, _ := process(t, state, preflopBase)

	before := processed.Clone()
	// Mutating a clone must not leak back.
	mutant := processed.Clone()
	mutant.Contributed[preflopBase][1] = 999999
	mutant.Stacks[preflopBase].Updated[2] = 0
	mutant.Actions[preflopBase][1] = ActionRecord{Action: ActionFold}
	mutant.Board[StageFlop] = []Card{{Rank: "A", Suit: "s"}}

	if diff := cmp.Diff(before, processed); diff != "" {
		t.Errorf("clone mutation leaked into the source state:\n%s", diff)
	}
}

func TestProcessingNeverMutatesInput(t *testing.T) {
	state := newTestHand(t, BlindConfig{SmallBlind: 100, BigBlind: 200},
		Player{ID: 1, Name: "A", Stack: 10000},
		Player{ID: 2, Name: "B", Stack: 10000},
	)
	state = record(t, state, preflopBase, 1, ActionCall, "100")
	state = record(t, state, preflopBase, 2, ActionCheck, "")

	snapshot := state.Clone()
	_, _, err := state.ProcessSection(preflopBase)
	require.NoError(t, err)

	if diff := cmp.Diff(snapshot, state); diff != "" {
		t.Errorf("ProcessSection mutated its input state:\n%s", diff)
	}
}

func TestSectionKeyRoundTrip(t *testing.T) {
	for _, key := range SectionOrder {
		text, err := key.MarshalText()
		require.NoError(t, err)
		var parsed SectionKey
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, key, parsed)
	}
	var bad SectionKey
	assert.Error(t, bad.UnmarshalText([]byte("preflop")))
	assert.Error(t, bad.UnmarshalText([]byte("street/base")))
}
