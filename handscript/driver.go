package handscript

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
	"github.com/KillerEXXD/hhcapture-sub002/logging"
)

var driverLogger = logging.GetZeroLogger("handscript::driver", nil)

// Run replays a script through the engine and checks every expectation. The
// returned error carries the first mismatch.
func Run(script *Script) error {
	state, err := buildState(script)
	if err != nil {
		return err
	}

	nameToID := make(map[string]uint64)
	idToName := make(map[uint64]string)
	for _, p := range state.Players {
		nameToID[p.Name] = p.ID
		idToName[p.ID] = p.Name
	}

	state, err = applyBoard(script, state)
	if err != nil {
		return err
	}

	var lastKey engine.SectionKey
	for _, section := range script.Sections {
		stage, _ := engine.ParseStage(section.Stage)
		level, _ := engine.ParseLevel(section.Level)
		key := engine.SectionKey{Stage: stage, Level: level}
		lastKey = key
		for _, action := range section.Actions {
			actionType, _ := engine.ParseAction(action.Action)
			unit, _ := engine.ParseUnit(action.Unit)
			state, err = state.RecordAction(key, nameToID[action.Player], engine.ActionRecord{
				Action: actionType,
				Amount: action.Amount,
				Unit:   unit,
			})
			if err != nil {
				return errors.Wrapf(err, "recording [%s] for [%s] in [%s]", action.Action, action.Player, key)
			}
		}
	}

	state, cascade, err := state.ProcessCascade(lastKey)
	if err != nil {
		return errors.Wrap(err, "cascade failed")
	}
	if cascade.StoppedAt != nil {
		return fmt.Errorf("cascade stopped at [%s]: %s", cascade.StoppedAt, cascade.StopReason)
	}

	if err := checkStacks(script, state, nameToID, lastKey); err != nil {
		return err
	}
	return checkPots(script, state, idToName)
}

func buildState(script *Script) (*engine.EngineState, error) {
	players := make([]engine.Player, len(script.Players))
	for i, p := range script.Players {
		players[i] = engine.Player{
			ID:       uint64(i + 1),
			Name:     p.Name,
			Position: p.Position,
			Stack:    p.Stack,
		}
	}
	anteOrder, _ := engine.ParseAnteOrder(script.Blinds.AnteOrder)
	defaultUnit, _ := engine.ParseUnit(script.DefaultUnit)
	blinds := engine.BlindConfig{
		SmallBlind: script.Blinds.SmallBlind,
		BigBlind:   script.Blinds.BigBlind,
		Ante:       script.Blinds.Ante,
		AnteOrder:  anteOrder,
	}
	return engine.NewHandState(script.HandNum, players, blinds, defaultUnit)
}

func applyBoard(script *Script, state *engine.EngineState) (*engine.EngineState, error) {
	setCards := func(state *engine.EngineState, stage engine.Stage, strs []string) (*engine.EngineState, error) {
		if len(strs) == 0 {
			return state, nil
		}
		cards := make([]engine.Card, len(strs))
		for i, str := range strs {
			card, err := ParseCard(str)
			if err != nil {
				return state, err
			}
			cards[i] = card
		}
		return state.SetBoard(stage, cards)
	}
	state, err := setCards(state, engine.StageFlop, script.Board.Flop)
	if err != nil {
		return state, err
	}
	if script.Board.Turn != "" {
		if state, err = setCards(state, engine.StageTurn, []string{script.Board.Turn}); err != nil {
			return state, err
		}
	}
	if script.Board.River != "" {
		if state, err = setCards(state, engine.StageRiver, []string{script.Board.River}); err != nil {
			return state, err
		}
	}
	return state, nil
}

func checkStacks(script *Script, state *engine.EngineState, nameToID map[string]uint64, lastKey engine.SectionKey) error {
	got := state.Stacks[lastKey]
	if got == nil {
		return fmt.Errorf("section [%s] has no processed stacks", lastKey)
	}
	for name, want := range script.Expected.FinalStacks {
		var stack int64
		if current, ok := got.Updated[nameToID[name]]; ok {
			stack = current
		} else {
			// The player dropped out before the final section; their stack
			// froze where they left it.
			stack = finalStackOf(state, nameToID[name], lastKey)
		}
		if stack != want {
			return fmt.Errorf("final stack of [%s]: want %d, got %d", name, want, stack)
		}
	}
	return nil
}

// finalStackOf walks back to the last section the player took part in.
func finalStackOf(state *engine.EngineState, playerID uint64, lastKey engine.SectionKey) int64 {
	var stack int64
	for _, p := range state.Players {
		if p.ID == playerID {
			stack = p.Stack
		}
	}
	for _, key := range engine.SectionOrder {
		if lastKey.Before(key) {
			break
		}
		stacks := state.Stacks[key]
		if stacks == nil {
			continue
		}
		if updated, ok := stacks.Updated[playerID]; ok {
			stack = updated
		}
	}
	return stack
}

func checkPots(script *Script, state *engine.EngineState, idToName map[uint64]string) error {
	for _, want := range script.Expected.Pots {
		stage, _ := engine.ParseStage(want.Stage)
		got, err := state.CalculatePots(stage)
		if err != nil {
			return errors.Wrapf(err, "calculating pots for [%s]", want.Stage)
		}
		if got.MainPot.Amount != want.Main {
			return fmt.Errorf("[%s] main pot: want %d, got %d", want.Stage, want.Main, got.MainPot.Amount)
		}
		if want.Total != 0 && got.TotalPot != want.Total {
			return fmt.Errorf("[%s] total pot: want %d, got %d", want.Stage, want.Total, got.TotalPot)
		}
		if want.DeadMoney != 0 && got.DeadMoney != want.DeadMoney {
			return fmt.Errorf("[%s] dead money: want %d, got %d", want.Stage, want.DeadMoney, got.DeadMoney)
		}
		if len(want.MainEligible) > 0 {
			if err := checkEligible(want.MainEligible, got.MainPot.Eligible, idToName); err != nil {
				return errors.Wrapf(err, "[%s] main pot", want.Stage)
			}
		}
		if len(want.SidePots) > 0 {
			if len(want.SidePots) != len(got.SidePots) {
				return fmt.Errorf("[%s] side pots: want %d, got %d", want.Stage, len(want.SidePots), len(got.SidePots))
			}
			for i, side := range want.SidePots {
				if got.SidePots[i].Amount != side.Amount {
					return fmt.Errorf("[%s] side pot %d: want %d, got %d", want.Stage, i+1, side.Amount, got.SidePots[i].Amount)
				}
				if err := checkEligible(side.Eligible, got.SidePots[i].Eligible, idToName); err != nil {
					return errors.Wrapf(err, "[%s] side pot %d", want.Stage, i+1)
				}
			}
		}
	}
	return nil
}

func checkEligible(want []string, got []uint64, idToName map[uint64]string) error {
	gotNames := make([]string, len(got))
	for i, id := range got {
		gotNames[i] = idToName[id]
	}
	if len(want) != len(gotNames) {
		return fmt.Errorf("eligible players: want %v, got %v", want, gotNames)
	}
	for i := range want {
		if want[i] != gotNames[i] {
			return fmt.Errorf("eligible players: want %v, got %v", want, gotNames)
		}
	}
	return nil
}

// RunDir replays every script in the directory. All scripts run even when an
// earlier one fails; the first error is returned after the full pass.
func RunDir(dir string) error {
	scripts, err := ReadDir(dir)
	if err != nil {
		return err
	}
	var firstErr error
	passed := 0
	for name, script := range scripts {
		if err := Run(script); err != nil {
			driverLogger.Error().Msgf("Script %s FAILED: %s", name, err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "script [%s]", name)
			}
			continue
		}
		passed++
		driverLogger.Info().Msgf("Script %s passed", name)
	}
	driverLogger.Info().Msgf("%d/%d scripts passed", passed, len(scripts))
	return firstErr
}
