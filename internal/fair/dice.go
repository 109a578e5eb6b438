package fair

import "fmt"

const (
	diceMinWinProb = 0.01
	diceMaxWinProb = 0.95
)

type DiceParams struct {
	Target int  // winning threshold on a 1-100 roll
	Over   bool // true = roll must exceed Target, false = roll at most Target
}

type DiceResult struct {
	Roll       int
	Win        bool
	Multiplier float64
}

// WinProbability is the chance of the requested bet winning.
func (p DiceParams) WinProbability() float64 {
	if p.Over {
		return float64(100-p.Target) / 100
	}
	return float64(p.Target) / 100
}

func (p DiceParams) Validate() error {
	if p.Target < 1 || p.Target > 99 {
		return fmt.Errorf("%w: dice target %d out of range", ErrInvalidGameParameters, p.Target)
	}

	if wp := p.WinProbability(); wp < diceMinWinProb || wp > diceMaxWinProb {
		return fmt.Errorf("%w: dice win probability %.2f outside [%.2f, %.2f]",
			ErrInvalidGameParameters, wp, diceMinWinProb, diceMaxWinProb)
	}

	return nil
}

// DiceMultiplier is the payout multiplier for a winning bet: fair odds
// with the house edge applied exactly once.
func DiceMultiplier(p DiceParams, houseEdge float64) float64 {
	return (1 - houseEdge) / p.WinProbability()
}

// PlayDice derives the roll and settles the bet.
func PlayDice(serverSeed, clientSeed string, nonce int64, p DiceParams, houseEdge float64) (DiceResult, error) {
	if err := p.Validate(); err != nil {
		return DiceResult{}, err
	}

	u := Unit(serverSeed, clientSeed, gameDice, nonce)
	roll := int(u*100) + 1 // 1..100

	win := roll <= p.Target
	if p.Over {
		win = roll > p.Target
	}

	result := DiceResult{Roll: roll, Win: win}
	if win {
		result.Multiplier = DiceMultiplier(p, houseEdge)
	}

	return result, nil
}
