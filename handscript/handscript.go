// Package handscript reads YAML descriptions of complete hands. Scripts feed
// the engine's own tests and the -script-tests mode, which replays every
// script in a directory and reports mismatches against the expected stacks
// and pots.
package handscript

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
)

// Script contains one scripted hand.
type Script struct {
	HandNum     uint32       `yaml:"hand-num"`
	DefaultUnit string       `yaml:"default-unit"`
	Blinds      Blinds       `yaml:"blinds"`
	Players     []SeatPlayer `yaml:"players"`
	Board       Board        `yaml:"board"`
	Sections    []Section    `yaml:"sections"`
	Expected    Expected     `yaml:"expected"`
}

type Blinds struct {
	SmallBlind int64  `yaml:"small-blind"`
	BigBlind   int64  `yaml:"big-blind"`
	Ante       int64  `yaml:"ante"`
	AnteOrder  string `yaml:"ante-order"`
}

type SeatPlayer struct {
	Name     string `yaml:"name"`
	Position string `yaml:"position"`
	Stack    int64  `yaml:"stack"`
}

type Board struct {
	Flop  []string `yaml:"flop"`
	Turn  string   `yaml:"turn"`
	River string   `yaml:"river"`
}

type Section struct {
	Stage   string       `yaml:"stage"`
	Level   string       `yaml:"level"`
	Actions []SeatAction `yaml:"actions"`
}

type SeatAction struct {
	Player string `yaml:"player"`
	Action string `yaml:"action"`
	Amount string `yaml:"amount"`
	Unit   string `yaml:"unit"`
}

// Expected holds the assertions the driver checks after the cascade.
type Expected struct {
	FinalStacks map[string]int64 `yaml:"final-stacks"`
	Pots        []ExpectedPots   `yaml:"pots"`
}

type ExpectedPots struct {
	Stage        string        `yaml:"stage"`
	Main         int64         `yaml:"main"`
	MainEligible []string      `yaml:"main-eligible"`
	SidePots     []ExpectedPot `yaml:"side-pots"`
	DeadMoney    int64         `yaml:"dead-money"`
	Total        int64         `yaml:"total"`
}

type ExpectedPot struct {
	Amount   int64    `yaml:"amount"`
	Eligible []string `yaml:"eligible"`
}

// ReadScript reads and validates a script file.
func ReadScript(fileName string) (*Script, error) {
	bytes, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading script file [%s]", fileName)
	}
	var script Script
	if err := yaml.Unmarshal(bytes, &script); err != nil {
		return nil, errors.Wrapf(err, "Error parsing YAML file [%s]", fileName)
	}
	if err := script.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Error validating script [%s]", fileName)
	}
	return &script, nil
}

// ReadDir reads every .yaml script in a directory, sorted by name.
func ReadDir(dir string) (map[string]*Script, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading script directory [%s]", dir)
	}
	scripts := make(map[string]*Script)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		script, err := ReadScript(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts[entry.Name()] = script
	}
	return scripts, nil
}

// Validate checks cross references inside the script: unique player names,
// known positions, and actions that only name rostered players.
func (s *Script) Validate() error {
	if len(s.Players) < 2 {
		return fmt.Errorf("script needs at least two players")
	}
	playerNames := mapset.NewSet()
	for _, p := range s.Players {
		if p.Name == "" {
			return fmt.Errorf("player with empty name")
		}
		if playerNames.Contains(p.Name) {
			return fmt.Errorf("Duplicate player name [%s] in players", p.Name)
		}
		playerNames.Add(p.Name)
		if !engine.IsValidPosition(p.Position) {
			return fmt.Errorf("Invalid position [%s] for player [%s]", p.Position, p.Name)
		}
	}

	if s.DefaultUnit != "" {
		if _, err := engine.ParseUnit(s.DefaultUnit); err != nil {
			return err
		}
	}
	if _, err := engine.ParseAnteOrder(s.Blinds.AnteOrder); err != nil {
		return err
	}

	sectionKeys := mapset.NewSet()
	for i, section := range s.Sections {
		stage, err := engine.ParseStage(section.Stage)
		if err != nil {
			return errors.Wrapf(err, "section %d", i+1)
		}
		level, err := engine.ParseLevel(section.Level)
		if err != nil {
			return errors.Wrapf(err, "section %d", i+1)
		}
		key := engine.SectionKey{Stage: stage, Level: level}
		if sectionKeys.Contains(key) {
			return fmt.Errorf("Duplicate section [%s]", key)
		}
		sectionKeys.Add(key)

		actedPlayers := mapset.NewSet()
		for _, action := range section.Actions {
			if !playerNames.Contains(action.Player) {
				return fmt.Errorf("Unknown player [%s] in section [%s]", action.Player, key)
			}
			if actedPlayers.Contains(action.Player) {
				return fmt.Errorf("Duplicate action for player [%s] in section [%s]", action.Player, key)
			}
			actedPlayers.Add(action.Player)
			if _, err := engine.ParseAction(action.Action); err != nil {
				return errors.Wrapf(err, "player [%s] in section [%s]", action.Player, key)
			}
			if action.Unit != "" {
				if _, err := engine.ParseUnit(action.Unit); err != nil {
					return errors.Wrapf(err, "player [%s] in section [%s]", action.Player, key)
				}
			}
		}
	}

	for name := range s.Expected.FinalStacks {
		if !playerNames.Contains(name) {
			return fmt.Errorf("Unknown player [%s] in expected final-stacks", name)
		}
	}
	for _, pots := range s.Expected.Pots {
		if _, err := engine.ParseStage(pots.Stage); err != nil {
			return errors.Wrap(err, "expected pots")
		}
		for _, name := range pots.MainEligible {
			if !playerNames.Contains(name) {
				return fmt.Errorf("Unknown player [%s] in expected main-eligible", name)
			}
		}
		for _, side := range pots.SidePots {
			for _, name := range side.Eligible {
				if !playerNames.Contains(name) {
					return fmt.Errorf("Unknown player [%s] in expected side pot", name)
				}
			}
		}
	}
	return nil
}

// ParseCard converts "As" or "10h" into an engine card.
func ParseCard(str string) (engine.Card, error) {
	return engine.ParseCard(str)
}
