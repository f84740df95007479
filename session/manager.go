package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"

	"github.com/KillerEXXD/hhcapture-sub002/archive"
	"github.com/KillerEXXD/hhcapture-sub002/engine"
	"github.com/KillerEXXD/hhcapture-sub002/handsetup"
	"github.com/KillerEXXD/hhcapture-sub002/logging"
	"github.com/KillerEXXD/hhcapture-sub002/persist"
	"github.com/KillerEXXD/hhcapture-sub002/util"
	"github.com/KillerEXXD/hhcapture-sub002/util/random"
)

var sessionLogger = logging.GetZeroLogger("session::manager", nil)

const (
	sessionCodeLen    = 6
	handCodeLen       = 6
	completedHandsMax = 10000
)

// HandSummary is what remains of a hand after FinishHand: the final stacks
// and the pot partition of every processed street. Recent summaries are kept
// in an LRU cache keyed by hand code.
type HandSummary struct {
	SessionCode string                          `json:"sessionCode"`
	HandCode    string                          `json:"handCode"`
	HandNum     uint32                          `json:"handNum"`
	FinalStacks map[uint64]int64                `json:"finalStacks"`
	Pots        map[string]*engine.PotStructure `json:"pots"`
	FinishedAt  time.Time                       `json:"finishedAt"`
}

type Manager struct {
	tracker        persist.SessionStateTracker
	handStore      *archive.HandStore
	completedHands *lru.Cache
	sessions       cmap.ConcurrentMap
}

// NewManager wires the session manager to its state tracker and, when
// archival is configured, the Postgres hand store. handStore may be nil.
func NewManager(tracker persist.SessionStateTracker, handStore *archive.HandStore) (*Manager, error) {
	completedHands, err := lru.New(completedHandsMax)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize completed hands cache")
	}
	return &Manager{
		tracker:        tracker,
		handStore:      handStore,
		completedHands: completedHands,
		sessions:       cmap.New(),
	}, nil
}

// NewSession starts a capture session on a fresh hand.
func (m *Manager) NewSession(handNum uint32, players []engine.Player, blinds engine.BlindConfig, defaultUnit engine.AmountUnit) (*Session, error) {
	return m.newSession(handNum, players, blinds, defaultUnit, "")
}

// NewSessionFromSetup starts a session from pasted hand-setup text.
func (m *Manager) NewSessionFromSetup(setupText string) (*Session, error) {
	setup, err := handsetup.Parse(setupText)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to parse hand setup text")
	}
	return m.newSession(setup.HandNum, setup.Players, setup.Blinds, engine.UnitActual, setupText)
}

func (m *Manager) newSession(handNum uint32, players []engine.Player, blinds engine.BlindConfig, defaultUnit engine.AmountUnit, setupText string) (*Session, error) {
	state, err := engine.NewHandState(handNum, players, blinds, defaultUnit)
	if err != nil {
		return nil, err
	}

	var code string
	for i := 0; i < 5; i++ {
		code = random.Code(sessionCodeLen)
		if _, exists := m.sessions.Get(code); !exists {
			break
		}
		code = ""
	}
	if code == "" {
		return nil, fmt.Errorf("Unable to generate a unique session code")
	}

	sess := &Session{
		ID:        uuid.New().String(),
		Code:      code,
		HandCode:  random.Code(handCodeLen),
		SetupText: setupText,
		CreatedAt: time.Now().UTC(),
		state:     state,
	}
	if err := m.tracker.Save(code, state); err != nil {
		return nil, errors.Wrapf(err, "Unable to persist state for new session %s", code)
	}
	m.sessions.Set(code, sess)
	util.Metrics.SetActiveSessionsCount(m.sessions.Count())
	sessionLogger.Info().
		Str(logging.SessionCodeKey, code).
		Str(logging.HandCodeKey, sess.HandCode).
		Uint32(logging.HandNumKey, handNum).
		Msgf("Started capture session with %d players", len(state.Players))
	return sess, nil
}

// GetSession returns the live session for a code. A session missing from
// memory but present in the tracker is restored, which is how sessions
// survive a server restart. Restored sessions get fresh IDs.
func (m *Manager) GetSession(code string) (*Session, error) {
	if v, exists := m.sessions.Get(code); exists {
		return v.(*Session), nil
	}
	state, err := m.tracker.Load(code)
	if err != nil {
		return nil, fmt.Errorf("Session %s is not found", code)
	}
	sess := &Session{
		ID:        uuid.New().String(),
		Code:      code,
		HandCode:  random.Code(handCodeLen),
		CreatedAt: time.Now().UTC(),
		state:     state,
	}
	m.sessions.Set(code, sess)
	util.Metrics.SetActiveSessionsCount(m.sessions.Count())
	sessionLogger.Warn().
		Str(logging.SessionCodeKey, code).
		Msg("Restored session state from the tracker")
	return sess, nil
}

// CommitAction records one player action and reports the completion status
// of the section's betting round. Subscribers are notified so the UI can
// follow along.
func (m *Manager) CommitAction(code string, key engine.SectionKey, playerID uint64, record engine.ActionRecord) (*engine.RoundStatus, error) {
	sess, err := m.GetSession(code)
	if err != nil {
		return nil, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	newState, err := sess.state.RecordAction(key, playerID, record)
	if err != nil {
		return nil, err
	}
	if err := m.tracker.Save(code, newState); err != nil {
		return nil, errors.Wrapf(err, "Unable to persist session %s", code)
	}
	sess.state = newState

	status := sess.state.CheckRoundComplete(key)
	sess.publish(StatusUpdate{Key: key, Status: status})
	return status, nil
}

// SetBoard records community cards for a street.
func (m *Manager) SetBoard(code string, stage engine.Stage, cards []engine.Card) error {
	sess, err := m.GetSession(code)
	if err != nil {
		return err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	newState, err := sess.state.SetBoard(stage, cards)
	if err != nil {
		return err
	}
	if err := m.tracker.Save(code, newState); err != nil {
		return errors.Wrapf(err, "Unable to persist session %s", code)
	}
	sess.state = newState
	return nil
}

// ProcessSection runs one section through the engine. On validation failure
// the session state is unchanged and the failure is in the result.
func (m *Manager) ProcessSection(code string, key engine.SectionKey) (*engine.SectionResult, error) {
	sess, err := m.GetSession(code)
	if err != nil {
		return nil, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	newState, result, err := sess.state.ProcessSection(key)
	if err != nil {
		return nil, err
	}
	if result.Validation != nil && !result.Validation.Valid {
		util.Metrics.ValidationFailed()
		return result, nil
	}
	if err := m.tracker.Save(code, newState); err != nil {
		return nil, errors.Wrapf(err, "Unable to persist session %s", code)
	}
	sess.state = newState
	util.Metrics.SectionProcessed()
	return result, nil
}

// ProcessCascade replays every recorded section up to and including target.
// Sections applied before a stop are kept.
func (m *Manager) ProcessCascade(code string, target engine.SectionKey) (*engine.CascadeResult, error) {
	sess, err := m.GetSession(code)
	if err != nil {
		return nil, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	newState, result, err := sess.state.ProcessCascade(target)
	if err != nil {
		return nil, err
	}
	if result.Validation != nil && !result.Validation.Valid {
		util.Metrics.ValidationFailed()
	}
	if err := m.tracker.Save(code, newState); err != nil {
		return nil, errors.Wrapf(err, "Unable to persist session %s", code)
	}
	sess.state = newState
	for range result.ProcessedSections {
		util.Metrics.SectionProcessed()
	}
	return result, nil
}

// Status reports the betting-round completion state of one section.
func (m *Manager) Status(code string, key engine.SectionKey) (*engine.RoundStatus, error) {
	sess, err := m.GetSession(code)
	if err != nil {
		return nil, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()
	return sess.state.CheckRoundComplete(key), nil
}

// Pots partitions the chips of one street's processed sections.
func (m *Manager) Pots(code string, stage engine.Stage) (*engine.PotStructure, error) {
	sess, err := m.GetSession(code)
	if err != nil {
		return nil, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	pots, err := sess.state.CalculatePots(stage)
	if err != nil {
		return nil, err
	}
	util.Metrics.PotsCalculated()
	return pots, nil
}

// Subscribe registers a status-update channel for a session. The returned
// function unsubscribes and closes the channel.
func (m *Manager) Subscribe(code string) (<-chan StatusUpdate, func(), error) {
	sess, err := m.GetSession(code)
	if err != nil {
		return nil, nil, err
	}
	ch := sess.subscribe()
	return ch, func() { sess.unsubscribe(ch) }, nil
}

// FinishHand archives the hand, caches its summary, and rolls the session
// over to the next hand number with the final stacks as the new starting
// stacks. When too few players have chips left the session is closed.
func (m *Manager) FinishHand(code string) (*HandSummary, error) {
	sess, err := m.GetSession(code)
	if err != nil {
		return nil, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	state := sess.state
	summary := &HandSummary{
		SessionCode: code,
		HandCode:    sess.HandCode,
		HandNum:     state.HandNum,
		FinalStacks: finalStacks(state),
		Pots:        processedPots(state),
		FinishedAt:  time.Now().UTC(),
	}

	if m.handStore != nil {
		err := m.handStore.Save(&archive.ArchivedHand{
			SessionCode: summary.SessionCode,
			HandCode:    summary.HandCode,
			HandNum:     summary.HandNum,
			SetupText:   sess.SetupText,
			FinalStacks: summary.FinalStacks,
			Pots:        summary.Pots,
			FinishedAt:  summary.FinishedAt,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to archive hand %s", sess.HandCode)
		}
	}
	m.completedHands.Add(sess.HandCode, summary)

	playersWithChips := 0
	for _, stack := range summary.FinalStacks {
		if stack > 0 {
			playersWithChips++
		}
	}
	if playersWithChips < 2 {
		sessionLogger.Info().
			Str(logging.SessionCodeKey, code).
			Msgf("Closing session after hand %d: %d player(s) left with chips", state.HandNum, playersWithChips)
		m.tracker.Remove(code)
		m.sessions.Remove(code)
		util.Metrics.SetActiveSessionsCount(m.sessions.Count())
		return summary, nil
	}

	nextState, err := engine.NewHandState(state.HandNum+1, rosterWithStacks(state, summary.FinalStacks), state.Blinds, state.DefaultUnit)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to start hand %d for session %s", state.HandNum+1, code)
	}

	sess.state = nextState
	sess.HandCode = random.Code(handCodeLen)
	if err := m.tracker.Save(code, nextState); err != nil {
		return nil, errors.Wrapf(err, "Unable to persist session %s", code)
	}
	sessionLogger.Info().
		Str(logging.SessionCodeKey, code).
		Str(logging.HandCodeKey, sess.HandCode).
		Uint32(logging.HandNumKey, nextState.HandNum).
		Msg("Rolled session over to the next hand")
	return summary, nil
}

// CompletedHand looks up a recently finished hand by hand code.
func (m *Manager) CompletedHand(handCode string) (*HandSummary, bool) {
	v, exists := m.completedHands.Get(handCode)
	if !exists {
		return nil, false
	}
	return v.(*HandSummary), true
}

func finalStacks(state *engine.EngineState) map[uint64]int64 {
	stacks := make(map[uint64]int64)
	for _, p := range state.Players {
		stacks[p.ID] = finalStackOf(state, p.ID)
	}
	return stacks
}

// finalStackOf walks back from the last processed section the player
// appeared in. A player with no processed sections keeps the starting stack.
func finalStackOf(state *engine.EngineState, playerID uint64) int64 {
	for i := len(engine.SectionOrder) - 1; i >= 0; i-- {
		key := engine.SectionOrder[i]
		if !state.Processed[key] {
			continue
		}
		stacks := state.Stacks[key]
		if stacks == nil {
			continue
		}
		if updated, ok := stacks.Updated[playerID]; ok {
			return updated
		}
	}
	for _, p := range state.Players {
		if p.ID == playerID {
			return p.Stack
		}
	}
	return 0
}

func processedPots(state *engine.EngineState) map[string]*engine.PotStructure {
	pots := make(map[string]*engine.PotStructure)
	for _, key := range engine.SectionOrder {
		if !state.Processed[key] {
			continue
		}
		stage := key.Stage.String()
		if _, done := pots[stage]; done {
			continue
		}
		structure, err := state.CalculatePots(key.Stage)
		if err != nil {
			sessionLogger.Error().
				Str(logging.StageKey, stage).
				Msgf("Unable to partition pots: %s", err)
			continue
		}
		pots[stage] = structure
	}
	return pots
}

func rosterWithStacks(state *engine.EngineState, stacks map[uint64]int64) []engine.Player {
	players := make([]engine.Player, 0, len(state.Players))
	for _, p := range state.Players {
		p.Stack = stacks[p.ID]
		players = append(players, p)
	}
	return players
}
