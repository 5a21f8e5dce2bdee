package standings

import "github.com/Dosada05/chess-swiss/models"

// TieBreakMetric ранжирует участников с равным счётом. Стратегия
// подключаемая: ни Ledger, ни генератор пар не зависят от конкретной
// метрики.
type TieBreakMetric interface {
	GetName() string

	Compute(t *models.Tournament, p *models.Participant) float64
}

// Buchholz — сумма накопленных счетов всех соперников участника.
type Buchholz struct{}

func NewBuchholz() TieBreakMetric {
	return Buchholz{}
}

func (Buchholz) GetName() string {
	return "Buchholz"
}

func (Buchholz) Compute(t *models.Tournament, p *models.Participant) float64 {
	var sum float64
	for _, opponentID := range p.Opponents {
		if opponent := t.ParticipantByPlayer(opponentID); opponent != nil {
			sum += opponent.Score
		}
	}
	return sum
}
