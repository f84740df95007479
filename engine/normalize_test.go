package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		unit   AmountUnit
		want   int64
		wantOK bool
	}{
		{"actual", "1500", UnitActual, 1500, true},
		{"kilo", "25", UnitKilo, 25000, true},
		{"million", "2", UnitMillion, 2000000, true},
		{"fractional kilo", "2.5", UnitKilo, 2500, true},
		{"comma grouping", "1,250,000", UnitActual, 1250000, true},
		{"unspecified falls back to default", "10", UnitUnspecified, 10000, true},
		{"empty", "", UnitActual, 0, false},
		{"whitespace", "   ", UnitKilo, 0, false},
		{"non-numeric", "abc", UnitActual, 0, false},
		{"negative", "-500", UnitActual, 0, false},
		{"beyond int64 range", "99999999999999999999", UnitMillion, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw, tt.unit, UnitKilo)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePostings(t *testing.T) {
	blinds := BlindConfig{SmallBlind: 500, BigBlind: 1000, Ante: 1000}

	t.Run("full stacks post in full", func(t *testing.T) {
		sb := ResolvePostings(Player{ID: 1, Position: "SB", Stack: 10000}, blinds)
		assert.Equal(t, int64(500), sb.PostedSB)
		assert.False(t, sb.ForcedAllIn)

		bb := ResolvePostings(Player{ID: 2, Position: "BB", Stack: 10000}, blinds)
		assert.Equal(t, int64(1000), bb.PostedBB)
		assert.Equal(t, int64(1000), bb.PostedAnte)
		assert.False(t, bb.ForcedAllIn)
	})

	t.Run("ante first forces partial big blind", func(t *testing.T) {
		cfg := blinds
		cfg.AnteOrder = AnteFirst
		result := ResolvePostings(Player{ID: 2, Position: "BB", Stack: 1500}, cfg)
		assert.Equal(t, int64(1000), result.PostedAnte)
		assert.Equal(t, int64(500), result.PostedBB)
		assert.True(t, result.ForcedAllIn)
		assert.Equal(t, int64(500), result.ForcedAllInAmount)
	})

	t.Run("bb first forces partial ante", func(t *testing.T) {
		cfg := blinds
		cfg.AnteOrder = BBFirst
		result := ResolvePostings(Player{ID: 2, Position: "BB", Stack: 1500}, cfg)
		assert.Equal(t, int64(1000), result.PostedBB)
		assert.Equal(t, int64(500), result.PostedAnte)
		assert.True(t, result.ForcedAllIn)
		assert.Equal(t, int64(500), result.ForcedAllInAmount)
	})

	t.Run("short small blind", func(t *testing.T) {
		result := ResolvePostings(Player{ID: 1, Position: "SB", Stack: 300}, blinds)
		assert.Equal(t, int64(300), result.PostedSB)
		assert.True(t, result.ForcedAllIn)
		assert.Equal(t, int64(300), result.ForcedAllInAmount)
	})

	t.Run("non-blind position posts nothing", func(t *testing.T) {
		result := ResolvePostings(Player{ID: 3, Position: "UTG", Stack: 10000}, blinds)
		assert.Equal(t, PostingResult{}, result)
	})
}

func TestNormalizeContribution(t *testing.T) {
	preflopBase := SectionKey{Stage: StagePreflop, Level: LevelBase}
	flopBase := SectionKey{Stage: StageFlop, Level: LevelBase}

	tests := []struct {
		name   string
		key    SectionKey
		record ActionRecord
		want   int64
	}{
		{"fold contributes nothing", flopBase,
			ActionRecord{Action: ActionFold, Amount: "500"}, 0},
		{"check contributes nothing", flopBase,
			ActionRecord{Action: ActionCheck}, 0},
		{"no action contributes nothing", flopBase,
			ActionRecord{Action: ActionNone}, 0},
		{"call converts units", flopBase,
			ActionRecord{Action: ActionCall, Amount: "2", Unit: UnitKilo}, 2000},
		{"bet actual", flopBase,
			ActionRecord{Action: ActionBet, Amount: "750", Unit: UnitActual}, 750},
		{"non-numeric amount normalizes to zero", flopBase,
			ActionRecord{Action: ActionCall, Amount: "x"}, 0},
		{"preflop base folds in posted blinds", preflopBase,
			ActionRecord{Action: ActionCall, Amount: "500", Unit: UnitActual, PostedSB: 500}, 1000},
		{"preflop fold keeps forced postings", preflopBase,
			ActionRecord{Action: ActionFold, PostedBB: 1000}, 1000},
		{"ante never reaches the live contribution", preflopBase,
			ActionRecord{Action: ActionCheck, PostedBB: 1000, PostedAnte: 1000}, 1000},
		{"postings ignored off the preflop base", flopBase,
			ActionRecord{Action: ActionCheck, PostedBB: 1000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeContribution(tt.key, tt.record, UnitActual)
			assert.Equal(t, tt.want, got)
		})
	}
}
