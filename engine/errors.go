package engine

import (
	"fmt"
	"strings"
)

// ValidationResult is returned, not raised, so the caller can decide whether
// to block processing or surface the messages. FirstPlayerID identifies the
// first offending player for focus/highlight in the UI.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Messages      []string `json:"messages,omitempty"`
	FirstPlayerID uint64   `json:"firstPlayerId,omitempty"`
}

func (v *ValidationResult) addError(playerID uint64, msg string) {
	v.Valid = false
	v.Messages = append(v.Messages, msg)
	if v.FirstPlayerID == 0 {
		v.FirstPlayerID = playerID
	}
}

func (v *ValidationResult) String() string {
	if v.Valid {
		return "valid"
	}
	return strings.Join(v.Messages, "; ")
}

// StateError indicates a state-machine violation: advancing a street before
// the prior one is processed and complete, editing a sealed section, or
// missing community cards for the target street.
type StateError struct {
	Msg string
}

func (e StateError) Error() string {
	return e.Msg
}

// InvariantError indicates an arithmetic impossibility (negative stack, pot
// that does not reconcile). It means an engine bug, not bad operator input,
// and is never corrected silently.
type InvariantError struct {
	Msg string
}

func (e InvariantError) Error() string {
	return e.Msg
}

// UnknownPlayerError indicates a reference to a player that is not on the
// hand roster.
type UnknownPlayerError struct {
	PlayerID uint64
}

func (e UnknownPlayerError) Error() string {
	return fmt.Sprintf("player %d is not in the hand roster", e.PlayerID)
}
