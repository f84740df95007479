package engine

import (
	"fmt"

	"github.com/KillerEXXD/hhcapture-sub002/logging"
)

var engineLogger = logging.GetZeroLogger("engine::state", nil)

// EngineState is the full per-hand engine state. Every processing call works
// on a clone and returns the new value; the caller owns the state and no
// package-level state exists.
type EngineState struct {
	HandNum     uint32                          `json:"handNum"`
	Players     []Player                        `json:"players"`
	Blinds      BlindConfig                     `json:"blinds"`
	DefaultUnit AmountUnit                      `json:"defaultUnit"`
	Board       map[Stage][]Card                `json:"board"`
	Actions     map[SectionKey]map[uint64]ActionRecord `json:"actions"`
	Stacks      map[SectionKey]*SectionStacks   `json:"stacks"`
	Contributed map[SectionKey]map[uint64]int64 `json:"contributedAmounts"`
	Processed   map[SectionKey]bool             `json:"processed"`
	DeadMoney   int64                           `json:"deadMoney"`
}

// NewHandState sets up the engine state for one hand: roster, blinds, and the
// forced postings on the preflop base section. Blind positions are taken from
// the roster's Position fields.
func NewHandState(handNum uint32, players []Player, blinds BlindConfig, defaultUnit AmountUnit) (*EngineState, error) {
	if len(players) < 2 {
		return nil, StateError{Msg: "a hand needs at least two players"}
	}
	seen := make(map[uint64]bool)
	for _, p := range players {
		if p.ID == 0 {
			return nil, StateError{Msg: fmt.Sprintf("player [%s] has no id", p.Name)}
		}
		if seen[p.ID] {
			return nil, StateError{Msg: fmt.Sprintf("duplicate player id %d", p.ID)}
		}
		seen[p.ID] = true
		if p.Stack < 0 {
			return nil, StateError{Msg: fmt.Sprintf("player [%s] has a negative stack", p.Name)}
		}
		if !IsValidPosition(p.Position) {
			return nil, StateError{Msg: fmt.Sprintf("player [%s] has invalid position [%s]", p.Name, p.Position)}
		}
	}
	if defaultUnit == UnitUnspecified {
		defaultUnit = UnitActual
	}

	state := &EngineState{
		HandNum:     handNum,
		Players:     append([]Player{}, players...),
		Blinds:      blinds,
		DefaultUnit: defaultUnit,
		Board:       make(map[Stage][]Card),
		Actions:     make(map[SectionKey]map[uint64]ActionRecord),
		Stacks:      make(map[SectionKey]*SectionStacks),
		Contributed: make(map[SectionKey]map[uint64]int64),
		Processed:   make(map[SectionKey]bool),
	}

	preflopBase := SectionKey{Stage: StagePreflop, Level: LevelBase}
	state.Actions[preflopBase] = make(map[uint64]ActionRecord)
	for _, p := range players {
		if p.Stack == 0 {
			// A player with no chips never takes part in the hand.
			continue
		}
		posting := ResolvePostings(p, blinds)
		if posting.PostedSB == 0 && posting.PostedBB == 0 && posting.PostedAnte == 0 {
			continue
		}
		state.Actions[preflopBase][p.ID] = ActionRecord{
			Action:            ActionNone,
			PostedSB:          posting.PostedSB,
			PostedBB:          posting.PostedBB,
			PostedAnte:        posting.PostedAnte,
			ForcedAllIn:       posting.ForcedAllIn,
			ForcedAllInAmount: posting.ForcedAllInAmount,
		}
		state.DeadMoney += posting.PostedAnte
		if posting.ForcedAllIn {
			engineLogger.Info().
				Str(logging.PlayerNameKey, p.Name).
				Uint64(logging.PlayerIDKey, p.ID).
				Msgf("Posting forced the player all-in for %d", posting.ForcedAllInAmount)
		}
	}
	return state, nil
}

// Clone returns a deep copy. Processing never mutates the receiver.
func (s *EngineState) Clone() *EngineState {
	clone := &EngineState{
		HandNum:     s.HandNum,
		Players:     append([]Player{}, s.Players...),
		Blinds:      s.Blinds,
		DefaultUnit: s.DefaultUnit,
		Board:       make(map[Stage][]Card, len(s.Board)),
		Actions:     make(map[SectionKey]map[uint64]ActionRecord, len(s.Actions)),
		Stacks:      make(map[SectionKey]*SectionStacks, len(s.Stacks)),
		Contributed: make(map[SectionKey]map[uint64]int64, len(s.Contributed)),
		Processed:   make(map[SectionKey]bool, len(s.Processed)),
		DeadMoney:   s.DeadMoney,
	}
	for stage, cards := range s.Board {
		clone.Board[stage] = append([]Card{}, cards...)
	}
	for key, records := range s.Actions {
		recs := make(map[uint64]ActionRecord, len(records))
		for id, rec := range records {
			recs[id] = rec
		}
		clone.Actions[key] = recs
	}
	for key, stacks := range s.Stacks {
		clone.Stacks[key] = &SectionStacks{
			Initial: cloneAmounts(stacks.Initial),
			Current: cloneAmounts(stacks.Current),
			Updated: cloneAmounts(stacks.Updated),
		}
	}
	for key, amounts := range s.Contributed {
		clone.Contributed[key] = cloneAmounts(amounts)
	}
	for key, processed := range s.Processed {
		clone.Processed[key] = processed
	}
	return clone
}

func cloneAmounts(amounts map[uint64]int64) map[uint64]int64 {
	if amounts == nil {
		return nil
	}
	cloned := make(map[uint64]int64, len(amounts))
	for id, amount := range amounts {
		cloned[id] = amount
	}
	return cloned
}

func (s *EngineState) player(playerID uint64) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// foldedBefore reports whether the player folded in any section earlier than
// key.
func (s *EngineState) foldedBefore(key SectionKey, playerID uint64) bool {
	for _, k := range SectionOrder {
		if !k.Before(key) {
			break
		}
		if rec, ok := s.Actions[k][playerID]; ok && rec.Action == ActionFold {
			return true
		}
	}
	return false
}

// foldedThrough reports whether the player folded in any section up to and
// including key.
func (s *EngineState) foldedThrough(key SectionKey, playerID uint64) bool {
	if rec, ok := s.Actions[key][playerID]; ok && rec.Action == ActionFold {
		return true
	}
	return s.foldedBefore(key, playerID)
}

// ActivePlayers returns, in roster order, the players who take part in the
// section: non-zero starting stack and no fold in an earlier section.
func (s *EngineState) ActivePlayers(key SectionKey) []Player {
	active := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Stack == 0 {
			continue
		}
		if s.foldedBefore(key, p.ID) {
			continue
		}
		active = append(active, p)
	}
	return active
}

// runningStack is the player's stack entering the section: starting stack,
// less the posted ante, less every contribution in earlier processed
// sections.
func (s *EngineState) runningStack(key SectionKey, playerID uint64) int64 {
	player, ok := s.player(playerID)
	if !ok {
		return 0
	}
	stack := player.Stack
	preflopBase := SectionKey{Stage: StagePreflop, Level: LevelBase}
	if rec, ok := s.Actions[preflopBase][playerID]; ok {
		stack -= rec.PostedAnte
	}
	for _, k := range SectionOrder {
		if !k.Before(key) {
			break
		}
		if !s.Processed[k] {
			continue
		}
		stack -= s.Contributed[k][playerID]
	}
	return stack
}

// hasActions reports whether any voluntary action or posting is recorded for
// the section. More-action sections with no records are not part of the hand.
func (s *EngineState) hasActions(key SectionKey) bool {
	for _, rec := range s.Actions[key] {
		if rec.Action != ActionNone || rec.Amount != "" || rec.hasPosting() {
			return true
		}
	}
	return false
}

// present reports whether the section takes part in processing. Base sections
// of every street exist by construction; more-action sections exist only once
// actions are recorded on them.
func (s *EngineState) present(key SectionKey) bool {
	if key.Level == LevelBase {
		return true
	}
	return s.hasActions(key)
}

// prevPresent returns the nearest earlier section that is part of the hand.
func (s *EngineState) prevPresent(key SectionKey) (SectionKey, bool) {
	for i := key.index() - 1; i >= 0; i-- {
		k := SectionOrder[i]
		if s.present(k) {
			return k, true
		}
	}
	return SectionKey{}, false
}

// sealed reports whether the section can no longer be edited because a later
// street has a processed section.
func (s *EngineState) sealed(key SectionKey) bool {
	for k, processed := range s.Processed {
		if processed && k.Stage > key.Stage {
			return true
		}
	}
	return false
}

// BoardComplete reports whether the street's community cards are fully
// specified (rank and suit on every slot).
func (s *EngineState) BoardComplete(stage Stage) bool {
	needed := stage.BoardCardCount()
	if needed == 0 {
		return true
	}
	cards := s.Board[stage]
	if len(cards) != needed {
		return false
	}
	for _, c := range cards {
		if !c.IsComplete() {
			return false
		}
	}
	return true
}

// boardCompleteThrough checks the boards of every street up to and including
// stage: the flop needs its three cards before any turn processing, and so
// on.
func (s *EngineState) boardCompleteThrough(stage Stage) bool {
	for _, st := range Stages {
		if st > stage {
			break
		}
		if !s.BoardComplete(st) {
			return false
		}
	}
	return true
}

// SetBoard records the street's community cards. Card count must match the
// street; a sealed street's board cannot change.
func (s *EngineState) SetBoard(stage Stage, cards []Card) (*EngineState, error) {
	if stage == StagePreflop {
		return nil, StateError{Msg: "preflop has no community cards"}
	}
	if len(cards) != stage.BoardCardCount() {
		return nil, StateError{
			Msg: fmt.Sprintf("%s takes %d cards, got %d", stage, stage.BoardCardCount(), len(cards)),
		}
	}
	if s.sealed(SectionKey{Stage: stage, Level: LevelMoreAction2}) {
		return nil, StateError{Msg: fmt.Sprintf("%s is sealed; its board cannot change", stage)}
	}
	clone := s.Clone()
	clone.Board[stage] = append([]Card{}, cards...)
	return clone, nil
}

// RecordAction records one player's action for a section and returns the new
// state. Recording on a processed (but not sealed) section reopens it: the
// section and every later section of the same street lose their processed
// results. Postings on the preflop base records are preserved across edits.
func (s *EngineState) RecordAction(key SectionKey, playerID uint64, record ActionRecord) (*EngineState, error) {
	if !key.valid() {
		return nil, StateError{Msg: fmt.Sprintf("invalid section %s", key)}
	}
	player, ok := s.player(playerID)
	if !ok {
		return nil, UnknownPlayerError{PlayerID: playerID}
	}
	if player.Stack == 0 {
		return nil, StateError{Msg: fmt.Sprintf("player [%s] has no chips and is not in the hand", player.Name)}
	}
	if s.sealed(key) {
		return nil, StateError{Msg: fmt.Sprintf("section %s is sealed; a later street is already processed", key)}
	}
	if s.foldedBefore(key, playerID) {
		return nil, StateError{Msg: fmt.Sprintf("player [%s] folded before %s", player.Name, key)}
	}

	clone := s.Clone()
	if clone.Actions[key] == nil {
		clone.Actions[key] = make(map[uint64]ActionRecord)
	}
	if existing, ok := clone.Actions[key][playerID]; ok && existing.hasPosting() {
		record.PostedSB = existing.PostedSB
		record.PostedBB = existing.PostedBB
		record.PostedAnte = existing.PostedAnte
		record.ForcedAllIn = existing.ForcedAllIn
		record.ForcedAllInAmount = existing.ForcedAllInAmount
	}
	clone.Actions[key][playerID] = record

	// Reopen this section and later sections of the same street.
	for _, k := range SectionOrder {
		if k.Stage != key.Stage || k.Before(key) {
			continue
		}
		if clone.Processed[k] {
			delete(clone.Processed, k)
			delete(clone.Stacks, k)
			delete(clone.Contributed, k)
		}
	}
	return clone, nil
}
