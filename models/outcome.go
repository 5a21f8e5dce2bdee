package models

// Outcome представляет результат матча с точки зрения первого игрока.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
	OutcomeLoss Outcome = "loss"
)

// Valid reports whether o is one of the three legal outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeDraw, OutcomeLoss:
		return true
	}
	return false
}

// Points maps the outcome to the point pair (player one, player two).
// The pair always sums to 1.
func (o Outcome) Points() (float64, float64) {
	switch o {
	case OutcomeWin:
		return 1, 0
	case OutcomeLoss:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}
