package engine

import (
	"fmt"
)

// ValidateSection runs the pre-processing validation pass for one section.
// Validation is all-or-nothing: any error blocks processing before a single
// stack is touched.
func (s *EngineState) ValidateSection(key SectionKey) *ValidationResult {
	result := &ValidationResult{Valid: true}

	// The raise baseline a later raise must strictly beat. Preflop opens
	// against the big blind.
	var lastBetOrRaise int64
	if key.Stage == StagePreflop && key.Level == LevelBase {
		lastBetOrRaise = s.Blinds.BigBlind
	}

	for _, player := range s.ActivePlayers(key) {
		record := s.Actions[key][player.ID]

		if key.Stage != StagePreflop && record.Action != ActionFold && record.Action != ActionNone {
			if !s.BoardComplete(key.Stage) {
				result.addError(player.ID, fmt.Sprintf(
					"[%s] acted on the %s but the %s cards are not fully entered",
					player.Name, key.Stage, key.Stage))
				continue
			}
		}

		amount, parsed := ParseAmount(record.Amount, record.Unit, s.DefaultUnit)
		switch record.Action {
		case ActionBet:
			if !parsed || amount <= 0 {
				result.addError(player.ID, fmt.Sprintf(
					"[%s] bet amount is missing or not a positive number", player.Name))
				continue
			}
			if amount > lastBetOrRaise {
				lastBetOrRaise = amount
			}
		case ActionRaise:
			if !parsed || amount <= 0 {
				result.addError(player.ID, fmt.Sprintf(
					"[%s] raise amount is missing or not a positive number", player.Name))
				continue
			}
			if amount <= lastBetOrRaise {
				result.addError(player.ID, fmt.Sprintf(
					"[%s] raise %d must be greater than the previous bet/raise %d",
					player.Name, amount, lastBetOrRaise))
				continue
			}
			lastBetOrRaise = amount
		case ActionAllIn:
			if parsed && amount > lastBetOrRaise {
				lastBetOrRaise = amount
			}
		}
	}
	return result
}
