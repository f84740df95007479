// Package handsetup parses the human-readable hand-setup text the operator
// pastes in from the capture sheet: a 4-line header followed by one roster
// line per player.
//
//	Hand #214
//	Started: 2026-03-11 19:42:10 Ended: 2026-03-11 19:48:55
//	SB 500 BB 1000 Ante 1000
//	Stack Setup:
//	Ivan [SB] 125,000
//	Mina [BB] 98K
//	Ron 2.5Mil
package handsetup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
	"github.com/KillerEXXD/hhcapture-sub002/util"
)

const timestampLayout = "2006-01-02 15:04:05"

// HandSetup is the parsed setup header plus the player roster. Player ids are
// assigned in roster order starting at 1.
type HandSetup struct {
	HandNum   uint32
	StartedAt time.Time
	EndedAt   time.Time
	Blinds    engine.BlindConfig
	Players   []engine.Player
}

// Parse reads the 4-line header and roster lines. Blank lines at either end
// are tolerated; anything else malformed is an error naming the line.
func Parse(text string) (*HandSetup, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) < 5 {
		return nil, errors.Errorf("setup text needs a 4-line header and at least one roster line, got %d lines", len(lines))
	}

	setup := &HandSetup{}

	// Line 1: Hand #<n>
	if _, err := fmt.Sscanf(lines[0], "Hand #%d", &setup.HandNum); err != nil {
		return nil, errors.Wrapf(err, "line 1 [%s] is not a hand number", lines[0])
	}

	// Line 2: Started: <ts> Ended: <ts>
	if err := setup.parseTimestamps(lines[1]); err != nil {
		return nil, err
	}

	// Line 3: SB <n> BB <n> Ante <n>
	blinds, err := parseBlindLine(lines[2])
	if err != nil {
		return nil, err
	}
	setup.Blinds = blinds

	// Line 4: Stack Setup:
	if lines[3] != "Stack Setup:" {
		return nil, errors.Errorf("line 4 [%s] must be \"Stack Setup:\"", lines[3])
	}

	for i, line := range lines[4:] {
		player, err := parseRosterLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "roster line %d", i+1)
		}
		player.ID = uint64(i + 1)
		setup.Players = append(setup.Players, player)
	}
	return setup, nil
}

func (s *HandSetup) parseTimestamps(line string) error {
	endedIdx := strings.Index(line, "Ended:")
	if !strings.HasPrefix(line, "Started:") || endedIdx < 0 {
		return errors.Errorf("line 2 [%s] must be \"Started: <time> Ended: <time>\"", line)
	}
	startedStr := strings.TrimSpace(line[len("Started:"):endedIdx])
	endedStr := strings.TrimSpace(line[endedIdx+len("Ended:"):])
	started, err := time.Parse(timestampLayout, startedStr)
	if err != nil {
		return errors.Wrapf(err, "invalid started timestamp [%s]", startedStr)
	}
	ended, err := time.Parse(timestampLayout, endedStr)
	if err != nil {
		return errors.Wrapf(err, "invalid ended timestamp [%s]", endedStr)
	}
	s.StartedAt = started
	s.EndedAt = ended
	return nil
}

func parseBlindLine(line string) (engine.BlindConfig, error) {
	var blinds engine.BlindConfig
	fields := strings.Fields(line)
	if len(fields) != 6 || fields[0] != "SB" || fields[2] != "BB" || fields[4] != "Ante" {
		return blinds, errors.Errorf("line 3 [%s] must be \"SB <n> BB <n> Ante <n>\"", line)
	}
	var err error
	if blinds.SmallBlind, err = parseChips(fields[1]); err != nil {
		return blinds, errors.Wrap(err, "small blind")
	}
	if blinds.BigBlind, err = parseChips(fields[3]); err != nil {
		return blinds, errors.Wrap(err, "big blind")
	}
	if blinds.Ante, err = parseChips(fields[5]); err != nil {
		return blinds, errors.Wrap(err, "ante")
	}
	if blinds.BigBlind <= 0 {
		return blinds, errors.New("big blind must be positive")
	}
	return blinds, nil
}

// parseRosterLine reads "Name [Position] Stack"; the position is optional.
// Names may contain spaces.
func parseRosterLine(line string) (engine.Player, error) {
	var player engine.Player
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return player, errors.Errorf("[%s] must be \"Name [Position] Stack\"", line)
	}

	stack, err := parseChips(fields[len(fields)-1])
	if err != nil {
		return player, errors.Wrapf(err, "[%s] stack", line)
	}
	player.Stack = stack

	nameFields := fields[:len(fields)-1]
	last := nameFields[len(nameFields)-1]
	if strings.HasPrefix(last, "[") && strings.HasSuffix(last, "]") {
		player.Position = last[1 : len(last)-1]
		if !engine.IsValidPosition(player.Position) {
			return player, errors.Errorf("[%s] has unknown position [%s]", line, player.Position)
		}
		nameFields = nameFields[:len(nameFields)-1]
	}
	if len(nameFields) == 0 {
		return player, errors.Errorf("[%s] has no player name", line)
	}
	player.Name = strings.Join(nameFields, " ")
	return player, nil
}

// parseChips accepts plain integers with optional comma grouping and K/Mil
// suffixes: "125,000", "98K", "2.5Mil".
func parseChips(raw string) (int64, error) {
	multiplier := int64(1)
	str := strings.ReplaceAll(raw, ",", "")
	switch {
	case strings.HasSuffix(str, "Mil"):
		multiplier = 1000000
		str = strings.TrimSuffix(str, "Mil")
	case strings.HasSuffix(str, "K"):
		multiplier = 1000
		str = strings.TrimSuffix(str, "K")
	}
	value, err := strconv.ParseFloat(str, 64)
	if err != nil || value < 0 {
		return 0, errors.Errorf("[%s] is not a chip amount", raw)
	}
	chips := int64(value*float64(multiplier) + 0.5)
	return chips, nil
}

// Format renders the setup back into the canonical text form for clipboard
// export.
func (s *HandSetup) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hand #%d\n", s.HandNum)
	fmt.Fprintf(&b, "Started: %s Ended: %s\n", s.StartedAt.Format(timestampLayout), s.EndedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "SB %s BB %s Ante %s\n", util.FormatChips(s.Blinds.SmallBlind),
		util.FormatChips(s.Blinds.BigBlind), util.FormatChips(s.Blinds.Ante))
	b.WriteString("Stack Setup:\n")
	for _, p := range s.Players {
		if p.Position != "" {
			fmt.Fprintf(&b, "%s [%s] %s\n", p.Name, p.Position, util.FormatChips(p.Stack))
		} else {
			fmt.Fprintf(&b, "%s %s\n", p.Name, util.FormatChips(p.Stack))
		}
	}
	return b.String()
}
