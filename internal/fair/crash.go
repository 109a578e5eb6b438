package fair

import (
	"fmt"
	"math"
)

const (
	CrashMinMultiplier = 1.0
	CrashMaxMultiplier = 1000.0

	crashMinCashout = 1.01
)

type CrashParams struct {
	Cashout float64 // requested cash-out multiplier
}

type CrashResult struct {
	CrashPoint float64
	Win        bool
	Multiplier float64
}

func (p CrashParams) Validate() error {
	if p.Cashout < crashMinCashout || p.Cashout > CrashMaxMultiplier {
		return fmt.Errorf("%w: crash cash-out %.2f outside [%.2f, %.2f]",
			ErrInvalidGameParameters, p.Cashout, crashMinCashout, CrashMaxMultiplier)
	}
	return nil
}

// CrashPoint maps the unit value onto [1.00, 1000.00], skewed so that
// the expected payout of any cash-out target is 1 - houseEdge.
func CrashPoint(serverSeed, clientSeed string, nonce int64, houseEdge float64) float64 {
	u := Unit(serverSeed, clientSeed, gameCrash, nonce)

	point := math.Floor(100*(1-houseEdge)/(1-u)) / 100

	if point < CrashMinMultiplier {
		point = CrashMinMultiplier
	}
	if point > CrashMaxMultiplier {
		point = CrashMaxMultiplier
	}

	return point
}

// PlayCrash settles a bet against the derived crash point: cashing out
// at m wins iff m <= crashPoint.
func PlayCrash(serverSeed, clientSeed string, nonce int64, p CrashParams, houseEdge float64) (CrashResult, error) {
	if err := p.Validate(); err != nil {
		return CrashResult{}, err
	}

	point := CrashPoint(serverSeed, clientSeed, nonce, houseEdge)

	result := CrashResult{CrashPoint: point}
	if p.Cashout <= point {
		result.Win = true
		result.Multiplier = p.Cashout
	}

	return result, nil
}
