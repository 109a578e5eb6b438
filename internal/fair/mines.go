package fair

import (
	"fmt"
	"sort"
)

const (
	MinesGridSize = 25 // 5x5
	MinMineCount  = 1
	MaxMineCount  = 24
)

type MinesParams struct {
	MineCount int
	Picks     []int // ordered cells to open; surviving all of them cashes out
}

type MinesResult struct {
	MineCells   []int
	Picks       []int
	SafeReveals int
	HitMine     bool
	Win         bool
	Multiplier  float64
}

func (p MinesParams) Validate() error {
	if p.MineCount < MinMineCount || p.MineCount > MaxMineCount {
		return fmt.Errorf("%w: mine count %d outside [%d, %d]",
			ErrInvalidGameParameters, p.MineCount, MinMineCount, MaxMineCount)
	}

	if len(p.Picks) < 1 {
		return fmt.Errorf("%w: at least one pick required", ErrInvalidGameParameters)
	}

	if len(p.Picks) > MinesGridSize-p.MineCount {
		return fmt.Errorf("%w: %d picks exceed the %d safe cells",
			ErrInvalidGameParameters, len(p.Picks), MinesGridSize-p.MineCount)
	}

	seen := make(map[int]bool, len(p.Picks))
	for _, cell := range p.Picks {
		if cell < 0 || cell >= MinesGridSize {
			return fmt.Errorf("%w: cell %d outside the grid", ErrInvalidGameParameters, cell)
		}
		if seen[cell] {
			return fmt.Errorf("%w: cell %d picked twice", ErrInvalidGameParameters, cell)
		}
		seen[cell] = true
	}

	return nil
}

// MineCells derives the mined cells by a partial Fisher-Yates shuffle
// over the grid, one derived float per selection. Sampling is without
// replacement and unbiased.
func MineCells(serverSeed, clientSeed string, nonce int64, mineCount int) []int {
	src := newFloatSource(serverSeed, clientSeed, gameMines, nonce)

	cells := make([]int, MinesGridSize)
	for i := range cells {
		cells[i] = i
	}

	for i := 0; i < mineCount; i++ {
		j := i + int(src.next()*float64(MinesGridSize-i))
		cells[i], cells[j] = cells[j], cells[i]
	}

	mines := make([]int, mineCount)
	copy(mines, cells[:mineCount])
	sort.Ints(mines)

	return mines
}

// MinesMultiplier is the payout after safeReveals survived picks: the
// product of the fair per-pick odds, with the house edge applied once.
// Monotonically increasing in safeReveals.
func MinesMultiplier(mineCount, safeReveals int, houseEdge float64) float64 {
	m := 1 - houseEdge
	for i := 0; i < safeReveals; i++ {
		m *= float64(MinesGridSize-i) / float64(MinesGridSize-mineCount-i)
	}
	return m
}

// PlayMines derives the layout and walks the pick list in order.
// Opening a mine ends the round at zero; surviving every pick cashes
// out at the reached multiplier.
func PlayMines(serverSeed, clientSeed string, nonce int64, p MinesParams, houseEdge float64) (MinesResult, error) {
	if err := p.Validate(); err != nil {
		return MinesResult{}, err
	}

	mines := MineCells(serverSeed, clientSeed, nonce, p.MineCount)

	mined := make(map[int]bool, len(mines))
	for _, cell := range mines {
		mined[cell] = true
	}

	result := MinesResult{MineCells: mines, Picks: p.Picks}
	for _, cell := range p.Picks {
		if mined[cell] {
			result.HitMine = true
			return result, nil
		}
		result.SafeReveals++
	}

	result.Win = true
	result.Multiplier = MinesMultiplier(p.MineCount, result.SafeReveals, houseEdge)

	return result, nil
}
