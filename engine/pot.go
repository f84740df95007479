package engine

import (
	"fmt"
	"sort"
)

// CalculatePots partitions one betting round's chips into a main pot and side
// pots. Contributions are merged across the street's processed sections; the
// tier boundaries are the distinct round totals of the non-folded players, so
// every all-in stack closes a tier. Folded players' chips count toward the
// amounts but never toward eligibility. Antes are dead money: they are added
// to the total and awarded with the main pot, but are never tiered.
func (s *EngineState) CalculatePots(stage Stage) (*PotStructure, error) {
	roundContrib := make(map[uint64]int64)
	for _, key := range SectionOrder {
		if key.Stage != stage || !s.Processed[key] {
			continue
		}
		for id, amount := range s.Contributed[key] {
			roundContrib[id] += amount
		}
	}

	lastKey := s.lastSectionOf(stage)
	folded := make(map[uint64]bool)
	for _, player := range s.Players {
		if s.foldedThrough(lastKey, player.ID) {
			folded[player.ID] = true
		}
	}

	// Tier boundaries: distinct positive round totals of non-folded players,
	// ascending.
	levelSet := make(map[int64]bool)
	for _, player := range s.Players {
		if player.Stack == 0 || folded[player.ID] {
			continue
		}
		if roundContrib[player.ID] > 0 {
			levelSet[roundContrib[player.ID]] = true
		}
	}
	levels := make([]int64, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var total int64
	for _, amount := range roundContrib {
		total += amount
	}

	pots := make([]Pot, 0, len(levels))
	var assigned int64
	var prev int64
	for _, level := range levels {
		var slice int64
		for _, player := range s.Players {
			c := roundContrib[player.ID]
			slice += minInt64(c, level) - minInt64(c, prev)
		}
		if slice < 0 {
			return nil, InvariantError{Msg: fmt.Sprintf(
				"negative pot tier %d at level %d on %s", slice, level, stage)}
		}
		var eligible []uint64
		for _, player := range s.Players {
			if player.Stack == 0 || folded[player.ID] {
				continue
			}
			if roundContrib[player.ID] >= level {
				eligible = append(eligible, player.ID)
			}
		}
		pots = append(pots, Pot{Amount: slice, Eligible: eligible})
		assigned += slice
		prev = level
	}

	// A folded player may have put in more than any surviving stack; those
	// chips flow into the highest tier.
	if leftover := total - assigned; leftover > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += leftover
		assigned += leftover
	}

	structure := &PotStructure{
		CarriedPot:  s.carriedPot(stage),
		RoundStatus: s.CheckRoundComplete(lastKey),
	}
	if stage == StagePreflop {
		structure.DeadMoney = s.DeadMoney
	}

	if len(pots) == 0 {
		// Nothing was voluntarily contributed, or everything came from
		// players who folded. The round's chips are one uncontested pot for
		// the surviving players.
		structure.MainPot = Pot{Amount: total, Eligible: s.survivors(lastKey)}
		assigned = total
	} else {
		structure.MainPot = pots[0]
		structure.SidePots = pots[1:]
	}
	structure.TotalPot = structure.CarriedPot + total + structure.DeadMoney

	var partitioned int64
	partitioned = structure.MainPot.Amount
	for _, pot := range structure.SidePots {
		partitioned += pot.Amount
	}
	if partitioned != total {
		return nil, InvariantError{Msg: fmt.Sprintf(
			"pot partition for %s does not reconcile: tiers %d, contributions %d",
			stage, partitioned, total)}
	}
	return structure, nil
}

// lastSectionOf returns the latest section of the street that is part of the
// hand.
func (s *EngineState) lastSectionOf(stage Stage) SectionKey {
	last := SectionKey{Stage: stage, Level: LevelBase}
	for _, key := range SectionOrder {
		if key.Stage != stage {
			continue
		}
		if s.Processed[key] || s.hasActions(key) {
			last = key
		}
	}
	return last
}

// survivors lists, in roster order, the players still in the hand at the end
// of the section.
func (s *EngineState) survivors(key SectionKey) []uint64 {
	var alive []uint64
	for _, player := range s.Players {
		if player.Stack == 0 {
			continue
		}
		if s.foldedThrough(key, player.ID) {
			continue
		}
		alive = append(alive, player.ID)
	}
	return alive
}

// carriedPot is the chip total carried into the street from earlier streets,
// including preflop dead money.
func (s *EngineState) carriedPot(stage Stage) int64 {
	var carried int64
	for _, key := range SectionOrder {
		if key.Stage >= stage {
			break
		}
		if !s.Processed[key] {
			continue
		}
		for _, amount := range s.Contributed[key] {
			carried += amount
		}
	}
	if stage > StagePreflop {
		carried += s.DeadMoney
	}
	return carried
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
