package engine

import (
	"fmt"

	"github.com/KillerEXXD/hhcapture-sub002/logging"
)

var sectionLogger = logging.GetZeroLogger("engine::section", nil)

// ProcessSection processes one betting section: validates the recorded
// actions, computes each active player's contribution, and produces the
// section's stack snapshot and contribution ledger. The receiver is never
// mutated; the returned state carries the results. A failed validation
// returns the original state untouched with the validation attached to the
// result.
func (s *EngineState) ProcessSection(key SectionKey) (*EngineState, *SectionResult, error) {
	if !key.valid() {
		return s, nil, StateError{Msg: fmt.Sprintf("invalid section %s", key)}
	}
	if s.sealed(key) {
		return s, nil, StateError{Msg: fmt.Sprintf("section %s is sealed; a later street is already processed", key)}
	}
	if !s.present(key) {
		return s, nil, StateError{Msg: fmt.Sprintf("section %s has no recorded actions", key)}
	}
	if prev, ok := s.prevPresent(key); ok {
		if !s.Processed[prev] {
			return s, nil, StateError{Msg: fmt.Sprintf("section %s must be processed before %s", prev, key)}
		}
		if prev.Stage != key.Stage {
			// Street transition: the prior street's final section must be
			// betting-complete and the new street's cards must be on the board.
			prevStatus := s.CheckRoundComplete(prev)
			if !prevStatus.Complete {
				return s, nil, StateError{Msg: fmt.Sprintf(
					"betting on %s is not complete: %s", prev, prevStatus.Reason)}
			}
			if !s.boardCompleteThrough(key.Stage) {
				return s, nil, StateError{Msg: fmt.Sprintf(
					"community cards through %s must be entered before processing %s", key.Stage, key)}
			}
		}
	}

	clone := s.Clone()
	clone.autoFoldUnacted(key)

	validation := clone.ValidateSection(key)
	if !validation.Valid {
		sectionLogger.Warn().
			Str(logging.StageKey, key.Stage.String()).
			Str(logging.LevelKey, key.Level.String()).
			Msgf("Section validation failed: %s", validation)
		return s, &SectionResult{Key: key, Validation: validation}, nil
	}

	result, err := clone.applySection(key)
	if err != nil {
		return s, nil, err
	}
	result.Validation = validation
	return clone, result, nil
}

// autoFoldUnacted converts "no action" on the preflop base section to a fold.
// The UI defaults unacted players to fold at processing time, not earlier;
// posted blinds stay on the record and still reach the pot.
func (s *EngineState) autoFoldUnacted(key SectionKey) {
	if key.Stage != StagePreflop || key.Level != LevelBase {
		return
	}
	if s.Actions[key] == nil {
		s.Actions[key] = make(map[uint64]ActionRecord)
	}
	for _, player := range s.ActivePlayers(key) {
		record := s.Actions[key][player.ID]
		if record.Action == ActionNone {
			record.Action = ActionFold
			s.Actions[key][player.ID] = record
		}
	}
}

// applySection mutates the (already cloned) state with the section's
// contributions. Callers have validated the records.
func (s *EngineState) applySection(key SectionKey) (*SectionResult, error) {
	active := s.ActivePlayers(key)
	initial := make(map[uint64]int64, len(active))
	current := make(map[uint64]int64, len(active))
	updated := make(map[uint64]int64, len(active))
	contributed := make(map[uint64]int64, len(active))
	var clamped []uint64

	for _, player := range active {
		record := s.Actions[key][player.ID]
		stackIn := s.runningStack(key, player.ID)
		if stackIn < 0 {
			return nil, InvariantError{Msg: fmt.Sprintf(
				"player [%s] enters %s with negative stack %d", player.Name, key, stackIn)}
		}
		contribution := NormalizeContribution(key, record, s.DefaultUnit)
		if contribution > stackIn {
			// The recorded amount exceeds what the player has; the player is
			// all-in for the remainder.
			sectionLogger.Warn().
				Str(logging.PlayerNameKey, player.Name).
				Str(logging.StageKey, key.Stage.String()).
				Str(logging.LevelKey, key.Level.String()).
				Msgf("Contribution %d clamped to remaining stack %d", contribution, stackIn)
			contribution = stackIn
			clamped = append(clamped, player.ID)
		}
		initial[player.ID] = stackIn
		contributed[player.ID] = contribution
		updated[player.ID] = stackIn - contribution
		current[player.ID] = stackIn - contribution
	}

	var sumInitial, sumUpdated, sumContributed int64
	for _, player := range active {
		sumInitial += initial[player.ID]
		sumUpdated += updated[player.ID]
		sumContributed += contributed[player.ID]
		if updated[player.ID] < 0 {
			return nil, InvariantError{Msg: fmt.Sprintf(
				"player [%s] stack went negative in %s", player.Name, key)}
		}
	}
	if sumContributed != sumInitial-sumUpdated {
		return nil, InvariantError{Msg: fmt.Sprintf(
			"section %s does not conserve chips: contributed %d, stacks moved %d",
			key, sumContributed, sumInitial-sumUpdated)}
	}

	s.Stacks[key] = &SectionStacks{Initial: initial, Current: current, Updated: updated}
	s.Contributed[key] = contributed
	s.Processed[key] = true

	return &SectionResult{
		Key:          key,
		Stacks:       s.Stacks[key],
		Contributed:  cloneAmounts(contributed),
		ClampedAllIn: clamped,
	}, nil
}

// liveLedger computes a section's contributions without processing it, so
// the completion checker can run after every recorded action change.
// Contributions are clamped to the player's remaining stack the same way
// processing clamps them.
func (s *EngineState) liveLedger(key SectionKey) (map[uint64]int64, map[uint64]int64) {
	if s.Processed[key] {
		return s.Contributed[key], s.Stacks[key].Updated
	}
	active := s.ActivePlayers(key)
	contributed := make(map[uint64]int64, len(active))
	updated := make(map[uint64]int64, len(active))
	for _, player := range active {
		record := s.Actions[key][player.ID]
		stackIn := s.runningStack(key, player.ID)
		contribution := NormalizeContribution(key, record, s.DefaultUnit)
		if contribution > stackIn {
			contribution = stackIn
		}
		contributed[player.ID] = contribution
		updated[player.ID] = stackIn - contribution
	}
	return contributed, updated
}
