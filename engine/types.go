package engine

import (
	"fmt"
	"strings"
)

// Stage is one of the four streets of a hand.
type Stage int

const (
	StagePreflop Stage = iota
	StageFlop
	StageTurn
	StageRiver
)

// Stages lists the streets in play order.
var Stages = []Stage{StagePreflop, StageFlop, StageTurn, StageRiver}

func (s Stage) String() string {
	switch s {
	case StagePreflop:
		return "preflop"
	case StageFlop:
		return "flop"
	case StageTurn:
		return "turn"
	case StageRiver:
		return "river"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// BoardCardCount returns how many community cards the street adds.
func (s Stage) BoardCardCount() int {
	switch s {
	case StageFlop:
		return 3
	case StageTurn, StageRiver:
		return 1
	}
	return 0
}

func ParseStage(str string) (Stage, error) {
	for _, s := range Stages {
		if s.String() == str {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage [%s]", str)
}

// ActionLevel is a sub-round within a street. A street opens with the base
// level; the operator adds more-action levels when betting is reopened.
type ActionLevel int

const (
	LevelBase ActionLevel = iota
	LevelMoreAction
	LevelMoreAction2
)

var Levels = []ActionLevel{LevelBase, LevelMoreAction, LevelMoreAction2}

func (l ActionLevel) String() string {
	switch l {
	case LevelBase:
		return "base"
	case LevelMoreAction:
		return "more"
	case LevelMoreAction2:
		return "more2"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func ParseLevel(str string) (ActionLevel, error) {
	for _, l := range Levels {
		if l.String() == str {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown action level [%s]", str)
}

// SectionKey identifies one betting section: one street at one action level.
type SectionKey struct {
	Stage Stage
	Level ActionLevel
}

// SectionOrder lists all twelve possible sections in processing order.
var SectionOrder = buildSectionOrder()

func buildSectionOrder() []SectionKey {
	keys := make([]SectionKey, 0, len(Stages)*len(Levels))
	for _, s := range Stages {
		for _, l := range Levels {
			keys = append(keys, SectionKey{Stage: s, Level: l})
		}
	}
	return keys
}

func (k SectionKey) String() string {
	return fmt.Sprintf("%s/%s", k.Stage, k.Level)
}

func (k SectionKey) index() int {
	return int(k.Stage)*len(Levels) + int(k.Level)
}

// Before reports whether k is processed earlier than other.
func (k SectionKey) Before(other SectionKey) bool {
	return k.index() < other.index()
}

func (k SectionKey) valid() bool {
	return k.Stage >= StagePreflop && k.Stage <= StageRiver &&
		k.Level >= LevelBase && k.Level <= LevelMoreAction2
}

func (k SectionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SectionKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "/", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid section key [%s]", string(text))
	}
	stage, err := ParseStage(parts[0])
	if err != nil {
		return err
	}
	level, err := ParseLevel(parts[1])
	if err != nil {
		return err
	}
	k.Stage = stage
	k.Level = level
	return nil
}

// ActionType is the closed set of recordable player actions.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionFold
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

func (a ActionType) String() string {
	switch a {
	case ActionNone:
		return "no action"
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionBet:
		return "bet"
	case ActionRaise:
		return "raise"
	case ActionAllIn:
		return "all-in"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

func ParseAction(str string) (ActionType, error) {
	for a := ActionNone; a <= ActionAllIn; a++ {
		if a.String() == str {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action [%s]", str)
}

// ContributesChips reports whether the action moves chips into the pot.
func (a ActionType) ContributesChips() bool {
	switch a {
	case ActionCall, ActionBet, ActionRaise, ActionAllIn:
		return true
	}
	return false
}

func (a ActionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AmountUnit is the multiplier the operator selected for a raw amount.
type AmountUnit int

const (
	UnitUnspecified AmountUnit = iota
	UnitActual
	UnitKilo
	UnitMillion
)

func (u AmountUnit) Multiplier() int64 {
	switch u {
	case UnitKilo:
		return 1000
	case UnitMillion:
		return 1000000
	default:
		return 1
	}
}

func (u AmountUnit) String() string {
	switch u {
	case UnitUnspecified:
		return ""
	case UnitActual:
		return "actual"
	case UnitKilo:
		return "K"
	case UnitMillion:
		return "Mil"
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

func ParseUnit(str string) (AmountUnit, error) {
	switch str {
	case "":
		return UnitUnspecified, nil
	case "actual":
		return UnitActual, nil
	case "K":
		return UnitKilo, nil
	case "Mil":
		return UnitMillion, nil
	}
	return 0, fmt.Errorf("unknown amount unit [%s]", str)
}

func (u AmountUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *AmountUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ValidPositions are the table positions the setup header accepts.
var ValidPositions = []string{
	"Dealer", "SB", "BB", "UTG", "UTG+1", "UTG+2", "MP", "MP+1", "HJ", "CO",
}

func IsValidPosition(pos string) bool {
	if pos == "" {
		return true
	}
	for _, p := range ValidPositions {
		if p == pos {
			return true
		}
	}
	return false
}

// Player is a member of the hand roster. The record never changes during the
// hand; running stacks are tracked in the per-section snapshots.
type Player struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Stack    int64  `json:"stack"`
}

// AnteOrder controls whether the big blind or the ante is posted first when
// the big-blind player cannot cover both.
type AnteOrder int

const (
	BBFirst AnteOrder = iota
	AnteFirst
)

func (o AnteOrder) String() string {
	if o == AnteFirst {
		return "Ante First"
	}
	return "BB First"
}

func ParseAnteOrder(str string) (AnteOrder, error) {
	switch str {
	case "", "BB First":
		return BBFirst, nil
	case "Ante First":
		return AnteFirst, nil
	}
	return 0, fmt.Errorf("unknown ante order [%s]", str)
}

func (o AnteOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *AnteOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseAnteOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// BlindConfig is the forced-bet configuration for the hand.
type BlindConfig struct {
	SmallBlind int64     `json:"smallBlind"`
	BigBlind   int64     `json:"bigBlind"`
	Ante       int64     `json:"ante"`
	AnteOrder  AnteOrder `json:"anteOrder"`
}

// Card is one community-card slot. Both fields must be set for the slot to
// count toward street-transition gating.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c Card) IsComplete() bool {
	return c.Rank != "" && c.Suit != ""
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// ParseCard converts "As" or "10h" into a card.
func ParseCard(str string) (Card, error) {
	if len(str) < 2 {
		return Card{}, fmt.Errorf("invalid card [%s]", str)
	}
	card := Card{Rank: str[:len(str)-1], Suit: str[len(str)-1:]}
	switch card.Suit {
	case "s", "h", "d", "c":
	default:
		return Card{}, fmt.Errorf("invalid card suit in [%s]", str)
	}
	switch card.Rank {
	case "A", "K", "Q", "J", "10", "9", "8", "7", "6", "5", "4", "3", "2":
	default:
		return Card{}, fmt.Errorf("invalid card rank in [%s]", str)
	}
	return card, nil
}

// ActionRecord is one player's recorded entry for one section. Amount holds
// the raw operator input; postings are filled only on the preflop base
// section.
type ActionRecord struct {
	Action            ActionType `json:"action"`
	Amount            string     `json:"amount"`
	Unit              AmountUnit `json:"unit"`
	PostedSB          int64      `json:"postedSB,omitempty"`
	PostedBB          int64      `json:"postedBB,omitempty"`
	PostedAnte        int64      `json:"postedAnte,omitempty"`
	ForcedAllIn       bool       `json:"forcedAllIn,omitempty"`
	ForcedAllInAmount int64      `json:"forcedAllInAmount,omitempty"`
}

func (r ActionRecord) hasPosting() bool {
	return r.PostedSB > 0 || r.PostedBB > 0 || r.PostedAnte > 0
}

// SectionStacks holds the three parallel per-player stack maps for one
// section. Current and Updated are equal once the section is processed.
type SectionStacks struct {
	Initial map[uint64]int64 `json:"initial"`
	Current map[uint64]int64 `json:"current"`
	Updated map[uint64]int64 `json:"updated"`
}

// RoundState is the completion state machine for one section.
type RoundState int

const (
	RoundNotStarted RoundState = iota
	RoundInProgress
	RoundComplete
)

func (r RoundState) String() string {
	switch r {
	case RoundNotStarted:
		return "NOT_STARTED"
	case RoundInProgress:
		return "IN_PROGRESS"
	case RoundComplete:
		return "COMPLETE"
	}
	return fmt.Sprintf("roundState(%d)", int(r))
}

// RoundStatus is the result of a betting-round completion check.
type RoundStatus struct {
	State           RoundState `json:"state"`
	Complete        bool       `json:"complete"`
	Reason          string     `json:"reason"`
	PendingPlayers  []uint64   `json:"pendingPlayers"`
	MaxContribution int64      `json:"maxContribution"`
}

// Pot is one tier of the partitioned pot.
type Pot struct {
	Amount   int64    `json:"amount"`
	Eligible []uint64 `json:"eligible"`
}

// PotStructure is the partition of one betting round's chips. MainPot and
// SidePots cover only the current round's contributions; chips from earlier
// streets are carried as a lump sum in CarriedPot. DeadMoney (antes) is
// reported separately and is awarded with the main pot.
type PotStructure struct {
	MainPot     Pot          `json:"mainPot"`
	SidePots    []Pot        `json:"sidePots"`
	DeadMoney   int64        `json:"deadMoney"`
	CarriedPot  int64        `json:"carriedPot"`
	TotalPot    int64        `json:"totalPot"`
	RoundStatus *RoundStatus `json:"bettingRoundStatus"`
}

// SectionResult is the outcome of processing one section.
type SectionResult struct {
	Key          SectionKey        `json:"key"`
	Stacks       *SectionStacks    `json:"stacks"`
	Contributed  map[uint64]int64  `json:"contributed"`
	ClampedAllIn []uint64          `json:"clampedAllIn,omitempty"`
	Validation   *ValidationResult `json:"validation,omitempty"`
}

// CascadeResult reports how far a cascade got and why it stopped short, if
// it did.
type CascadeResult struct {
	ProcessedSections []SectionKey      `json:"processedSections"`
	StoppedAt         *SectionKey       `json:"stoppedAt,omitempty"`
	StopReason        string            `json:"stopReason,omitempty"`
	Validation        *ValidationResult `json:"validation,omitempty"`
}
