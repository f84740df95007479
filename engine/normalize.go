package engine

import (
	"math"
	"strconv"
	"strings"
)

// PostingResult is the outcome of resolving a player's forced preflop
// contributions against their stack.
type PostingResult struct {
	PostedSB          int64
	PostedBB          int64
	PostedAnte        int64
	ForcedAllIn       bool
	ForcedAllInAmount int64
}

// ResolvePostings computes the blind/ante a player actually puts in before
// voluntary action. A stack too small to cover a posting posts what it can
// and is forced all-in; AnteOrder decides whether the big blind or the ante
// has first claim on the big-blind player's chips.
func ResolvePostings(player Player, blinds BlindConfig) PostingResult {
	var result PostingResult
	remaining := player.Stack

	post := func(amount int64) int64 {
		if amount <= 0 {
			return 0
		}
		posted := amount
		if posted > remaining {
			posted = remaining
			result.ForcedAllIn = true
			result.ForcedAllInAmount = posted
		}
		remaining -= posted
		return posted
	}

	switch player.Position {
	case "SB":
		result.PostedSB = post(blinds.SmallBlind)
	case "BB":
		if blinds.AnteOrder == AnteFirst {
			result.PostedAnte = post(blinds.Ante)
			result.PostedBB = post(blinds.BigBlind)
		} else {
			result.PostedBB = post(blinds.BigBlind)
			result.PostedAnte = post(blinds.Ante)
		}
	}
	return result
}

// ParseAmount converts a raw operator-typed amount and unit into chips.
// Comma grouping is accepted; fractional amounts are allowed when the unit
// multiplier absorbs them (e.g. "2.5" K). Returns ok=false for empty,
// non-numeric, or negative input.
func ParseAmount(raw string, unit AmountUnit, defaultUnit AmountUnit) (int64, bool) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value < 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	if unit == UnitUnspecified {
		unit = defaultUnit
	}
	scaled := math.Round(value * float64(unit.Multiplier()))
	if scaled >= math.MaxInt64 {
		return 0, false
	}
	return int64(scaled), true
}

// voluntaryAmount is the chip value of the record's typed amount alone,
// without postings. Actions that move no chips, and unparseable amounts,
// normalize to zero.
func voluntaryAmount(record ActionRecord, defaultUnit AmountUnit) int64 {
	if !record.Action.ContributesChips() {
		return 0
	}
	chips, ok := ParseAmount(record.Amount, record.Unit, defaultUnit)
	if !ok {
		return 0
	}
	return chips
}

// NormalizeContribution is the contribution normalizer: one player's record
// for one section becomes an actual chip contribution. On the preflop base
// section the posted blinds are folded in; the ante never is, since it is
// dead money and does not count toward the call comparison.
func NormalizeContribution(key SectionKey, record ActionRecord, defaultUnit AmountUnit) int64 {
	contribution := voluntaryAmount(record, defaultUnit)
	if key.Stage == StagePreflop && key.Level == LevelBase {
		contribution += record.PostedSB + record.PostedBB
	}
	return contribution
}
