package engine

import (
	"fmt"

	"github.com/KillerEXXD/hhcapture-sub002/logging"
)

var cascadeLogger = logging.GetZeroLogger("engine::cascade", nil)

// ProcessCascade replays every not-yet-processed section from the earliest
// unprocessed point up to and including the target. Each section is gated on
// the previous section's betting being complete and, across streets, on the
// board being fully entered. The cascade short-circuits on the first failed
// gate or validation: sections already applied stay applied, later sections
// are not touched, and the result reports where and why it stopped.
func (s *EngineState) ProcessCascade(target SectionKey) (*EngineState, *CascadeResult, error) {
	if !target.valid() {
		return s, nil, StateError{Msg: fmt.Sprintf("invalid section %s", target)}
	}
	if !s.present(target) {
		return s, nil, StateError{Msg: fmt.Sprintf("section %s has no recorded actions", target)}
	}

	state := s
	result := &CascadeResult{}
	for _, key := range SectionOrder {
		if target.Before(key) {
			break
		}
		if !state.present(key) || state.Processed[key] {
			continue
		}

		if prev, ok := state.prevPresent(key); ok {
			prevStatus := state.CheckRoundComplete(prev)
			if !prevStatus.Complete {
				stopped := key
				result.StoppedAt = &stopped
				result.StopReason = fmt.Sprintf("betting on %s is not complete: %s", prev, prevStatus.Reason)
				return state, result, nil
			}
		}
		if key.Stage > StagePreflop && !state.boardCompleteThrough(key.Stage) {
			stopped := key
			result.StoppedAt = &stopped
			result.StopReason = fmt.Sprintf("community cards through %s are not fully entered", key.Stage)
			return state, result, nil
		}

		next, sectionResult, err := state.ProcessSection(key)
		if err != nil {
			return state, result, err
		}
		if sectionResult.Validation != nil && !sectionResult.Validation.Valid {
			stopped := key
			result.StoppedAt = &stopped
			result.StopReason = fmt.Sprintf("section %s failed validation", key)
			result.Validation = sectionResult.Validation
			return state, result, nil
		}
		state = next
		result.ProcessedSections = append(result.ProcessedSections, key)
		cascadeLogger.Debug().
			Str(logging.StageKey, key.Stage.String()).
			Str(logging.LevelKey, key.Level.String()).
			Msg("Section processed in cascade")
	}
	return state, result, nil
}
