package standings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/chess-swiss/models"
)

var (
	ErrInvalidResult      = errors.New("match result is not a legal outcome pair")
	ErrAlreadyRecorded    = errors.New("match result was already recorded")
	ErrNotRecorded        = errors.New("match result was never recorded")
	ErrUnknownParticipant = errors.New("match references a player not enrolled in the tournament")
)

const scoreEpsilon = 0.001

// Ledger ведёт накопленные счета и историю соперников одного турнира.
// Запись результата идемпотентна: повторная запись того же матча
// отклоняется, чтобы очки не удваивались.
type Ledger struct {
	tournament *models.Tournament
}

func NewLedger(t *models.Tournament) *Ledger {
	return &Ledger{tournament: t}
}

// RecordResult applies a freshly resolved match to both participants:
// adds the point pair to their cumulative scores and inserts each into
// the other's opponent history.
func (l *Ledger) RecordResult(m *models.Match) error {
	if !m.Resolved {
		return ErrInvalidResult
	}
	if sum := m.Player1Score + m.Player2Score; sum > 1+scoreEpsilon || sum < 1-scoreEpsilon {
		return ErrInvalidResult
	}
	if m.Recorded {
		return ErrAlreadyRecorded
	}

	p1 := l.tournament.ParticipantByPlayer(m.Player1ID)
	p2 := l.tournament.ParticipantByPlayer(m.Player2ID)
	if p1 == nil || p2 == nil {
		return fmt.Errorf("%w: %s vs %s", ErrUnknownParticipant, m.Player1ID, m.Player2ID)
	}

	p1.Score += m.Player1Score
	p2.Score += m.Player2Score
	p1.AddOpponent(p2.PlayerID)
	p2.AddOpponent(p1.PlayerID)
	m.Recorded = true
	return nil
}

// OverrideResult corrects an already-recorded match: прежняя пара очков
// снимается с участников до применения исправления, поэтому итоговые
// счета не удваиваются. История соперников не меняется — пара та же.
func (l *Ledger) OverrideResult(m *models.Match, outcome models.Outcome) error {
	if !m.Recorded {
		return ErrNotRecorded
	}

	p1 := l.tournament.ParticipantByPlayer(m.Player1ID)
	p2 := l.tournament.ParticipantByPlayer(m.Player2ID)
	if p1 == nil || p2 == nil {
		return fmt.Errorf("%w: %s vs %s", ErrUnknownParticipant, m.Player1ID, m.Player2ID)
	}

	prev1, prev2 := m.Player1Score, m.Player2Score
	p1.Score -= prev1
	p2.Score -= prev2
	if err := m.OverrideResult(outcome); err != nil {
		p1.Score += prev1
		p2.Score += prev2
		return err
	}
	return l.RecordResult(m)
}

// Standings returns the participants ordered for display: higher score
// first; among equal scores the enrollment order is preserved, unless a
// tie-break round has run — then the tie-break value decides, highest
// first.
func (l *Ledger) Standings() []*models.Participant {
	ranked := make([]*models.Participant, len(l.tournament.Participants))
	copy(ranked, l.tournament.Participants)

	// Метрика участвует в порядке после первого тай-брейкового тура,
	// а также в финальной таблице: нерешаемый тай на финише
	// упорядочивается метрикой без дополнительного тура.
	tieBreakRan := l.tournament.TieBreakRoundsPlayed() > 0 ||
		l.tournament.Status == models.StatusFinished
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if tieBreakRan && ranked[i].TieBreak != ranked[j].TieBreak {
			return ranked[i].TieBreak > ranked[j].TieBreak
		}
		return ranked[i].Seed < ranked[j].Seed
	})
	return ranked
}

// TiedForFirst returns the participants sharing the top cumulative
// score, or nil when the first place is held outright.
func (l *Ledger) TiedForFirst() []*models.Participant {
	ranked := l.Standings()
	if len(ranked) < 2 {
		return nil
	}

	top := ranked[0].Score
	var tied []*models.Participant
	for _, p := range ranked {
		if diff := p.Score - top; diff > scoreEpsilon || diff < -scoreEpsilon {
			break
		}
		tied = append(tied, p)
	}
	if len(tied) < 2 {
		return nil
	}
	return tied
}

// ApplyTieBreak recomputes every participant's tie-break value with the
// given metric.
func (l *Ledger) ApplyTieBreak(metric TieBreakMetric) {
	for _, p := range l.tournament.Participants {
		p.TieBreak = metric.Compute(l.tournament, p)
	}
}
