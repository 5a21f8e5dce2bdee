package models

import (
	"fmt"
	"time"
)

// Структурированная запись турнира для save/load на стороне хоста.
// Формат файла и атомарная запись — забота хоста; здесь только
// структура и гарантия инвариантов при восстановлении.

type TournamentSnapshot struct {
	ID           int                   `json:"id"`
	Name         string                `json:"name"`
	Location     string                `json:"location"`
	Description  string                `json:"description,omitempty"`
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	RoundCount   int                   `json:"round_count"`
	Status       TournamentStatus      `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	Participants []ParticipantSnapshot `json:"participants"`
	Rounds       []RoundSnapshot       `json:"rounds"`
}

type ParticipantSnapshot struct {
	PlayerID  string   `json:"player_id"`
	Seed      int      `json:"seed"`
	Score     float64  `json:"score"`
	TieBreak  float64  `json:"tie_break"`
	Opponents []string `json:"opponents"`
}

type RoundSnapshot struct {
	Number    int             `json:"number"`
	TieBreak  bool            `json:"tie_break"`
	Status    RoundStatus     `json:"status"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Matches   []MatchSnapshot `json:"matches"`
}

type MatchSnapshot struct {
	UID          string  `json:"uid"`
	OrderInRound int     `json:"order_in_round"`
	Player1ID    string  `json:"player1_id"`
	Player2ID    string  `json:"player2_id"`
	Player1Score float64 `json:"player1_score"`
	Player2Score float64 `json:"player2_score"`
	Resolved     bool    `json:"resolved"`
	Recorded     bool    `json:"recorded"`
}

// Snapshot serializes the tournament into a structured record.
func (t *Tournament) Snapshot() *TournamentSnapshot {
	s := &TournamentSnapshot{
		ID:          t.ID,
		Name:        t.Name,
		Location:    t.Location,
		Description: t.Description,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		RoundCount:  t.RoundCount,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
	for _, p := range t.Participants {
		opponents := make([]string, len(p.Opponents))
		copy(opponents, p.Opponents)
		s.Participants = append(s.Participants, ParticipantSnapshot{
			PlayerID:  p.PlayerID,
			Seed:      p.Seed,
			Score:     p.Score,
			TieBreak:  p.TieBreak,
			Opponents: opponents,
		})
	}
	for _, r := range t.Rounds {
		rs := RoundSnapshot{
			Number:    r.Number,
			TieBreak:  r.TieBreak,
			Status:    r.Status,
			StartedAt: r.StartedAt,
			EndedAt:   r.EndedAt,
		}
		for _, m := range r.Matches {
			rs.Matches = append(rs.Matches, MatchSnapshot{
				UID:          m.UID,
				OrderInRound: m.OrderInRound,
				Player1ID:    m.Player1ID,
				Player2ID:    m.Player2ID,
				Player1Score: m.Player1Score,
				Player2Score: m.Player2Score,
				Resolved:     m.Resolved,
				Recorded:     m.Recorded,
			})
		}
		s.Rounds = append(s.Rounds, rs)
	}
	return s
}

// RestoreTournament rebuilds a tournament from a snapshot and verifies
// that it passes the same invariants as one built live.
func RestoreTournament(s *TournamentSnapshot) (*Tournament, error) {
	t := &Tournament{
		ID:          s.ID,
		Name:        s.Name,
		Location:    s.Location,
		Description: s.Description,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		RoundCount:  s.RoundCount,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
	switch s.Status {
	case StatusRegistration, StatusInProgress, StatusTieBreak, StatusFinished:
	default:
		return nil, fmt.Errorf("snapshot has unknown status %q", s.Status)
	}
	for _, ps := range s.Participants {
		opponents := make([]string, len(ps.Opponents))
		copy(opponents, ps.Opponents)
		t.Participants = append(t.Participants, &Participant{
			TournamentID: s.ID,
			PlayerID:     ps.PlayerID,
			Seed:         ps.Seed,
			Score:        ps.Score,
			TieBreak:     ps.TieBreak,
			Opponents:    opponents,
		})
	}
	for _, rs := range s.Rounds {
		r := &Round{
			TournamentID: s.ID,
			Number:       rs.Number,
			TieBreak:     rs.TieBreak,
			Status:       rs.Status,
			StartedAt:    rs.StartedAt,
			EndedAt:      rs.EndedAt,
		}
		for _, ms := range rs.Matches {
			m, err := NewMatch(ms.UID, rs.Number, ms.OrderInRound, ms.Player1ID, ms.Player2ID)
			if err != nil {
				return nil, fmt.Errorf("round %d match %s: %w", rs.Number, ms.UID, err)
			}
			m.Player1Score = ms.Player1Score
			m.Player2Score = ms.Player2Score
			m.Resolved = ms.Resolved
			m.Recorded = ms.Recorded
			r.Matches = append(r.Matches, m)
		}
		t.Rounds = append(t.Rounds, r)
	}
	if err := ValidateTournament(t); err != nil {
		return nil, fmt.Errorf("snapshot failed invariant check: %w", err)
	}
	return t, nil
}
