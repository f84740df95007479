package engine

import (
	"fmt"
	"strings"
)

// CheckRoundComplete evaluates the betting-round state machine for one
// section. It works off the live contribution ledger, so callers can
// re-evaluate after every single recorded action, processed or not.
//
// A round is complete when every non-folded active player has matched the
// highest contribution, is all-in, or has folded in this section. Players
// failing all three are reported in roster order as pending.
func (s *EngineState) CheckRoundComplete(key SectionKey) *RoundStatus {
	active := s.ActivePlayers(key)
	contributed, updated := s.liveLedger(key)

	var maxContribution int64
	for _, player := range active {
		if s.foldedThrough(key, player.ID) {
			continue
		}
		if contributed[player.ID] > maxContribution {
			maxContribution = contributed[player.ID]
		}
	}

	status := &RoundStatus{MaxContribution: maxContribution}

	if !s.hasActions(key) && !s.Processed[key] {
		status.State = RoundNotStarted
		status.Reason = "no actions recorded"
		return status
	}

	var pending []uint64
	var pendingNames []string
	for _, player := range active {
		if s.foldedThrough(key, player.ID) {
			continue
		}
		if updated[player.ID] == 0 {
			// all-in, here or in an earlier section
			continue
		}
		if contributed[player.ID] == maxContribution {
			continue
		}
		pending = append(pending, player.ID)
		pendingNames = append(pendingNames, player.Name)
	}

	if len(pending) > 0 {
		status.State = RoundInProgress
		status.PendingPlayers = pending
		status.Reason = fmt.Sprintf("waiting on: %s", strings.Join(pendingNames, ", "))
		return status
	}
	status.State = RoundComplete
	status.Complete = true
	status.Reason = "betting is complete"
	return status
}

// NeedsToAct reports whether a specific player still owes action in the
// section. Satisfied and all-in players are skipped in more-action rounds
// with no action required; they are never defaulted to fold.
func (s *EngineState) NeedsToAct(key SectionKey, playerID uint64) bool {
	player, ok := s.player(playerID)
	if !ok || player.Stack == 0 {
		return false
	}
	if s.foldedThrough(key, playerID) {
		return false
	}
	contributed, updated := s.liveLedger(key)
	if _, isActive := updated[playerID]; !isActive {
		return false
	}
	if updated[playerID] == 0 {
		return false
	}

	var maxContribution int64
	for _, p := range s.ActivePlayers(key) {
		if s.foldedThrough(key, p.ID) {
			continue
		}
		if contributed[p.ID] > maxContribution {
			maxContribution = contributed[p.ID]
		}
	}
	return contributed[playerID] < maxContribution
}
