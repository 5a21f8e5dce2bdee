package models

import "errors"

var (
	ErrSelfPairing      = errors.New("a player cannot be paired against themselves")
	ErrInvalidOutcome   = errors.New("outcome must be win, draw or loss")
	ErrResultAlreadySet = errors.New("match result is already set")
	ErrResultNotSet     = errors.New("match result is not set")
)

// Match — неупорядоченная пара участников одного тура.
// Результат устанавливается ровно один раз; исправление результата —
// это явный override через OverrideResult, а не тихая мутация.
type Match struct {
	ID           int     `json:"-" db:"id"`
	RoundID      int     `json:"-" db:"round_id"`
	UID          string  `json:"uid" db:"uid"`
	RoundNumber  int     `json:"round_number" db:"round_number"`
	OrderInRound int     `json:"order_in_round" db:"order_in_round"`
	Player1ID    string  `json:"player1_id" db:"player1_id"`
	Player2ID    string  `json:"player2_id" db:"player2_id"`
	Player1Score float64 `json:"player1_score" db:"player1_score"`
	Player2Score float64 `json:"player2_score" db:"player2_score"`
	Resolved     bool    `json:"resolved" db:"resolved"`
	Recorded     bool    `json:"recorded" db:"recorded"` // result applied to the ledger
}

// NewMatch creates an unresolved match between two distinct players.
func NewMatch(uid string, round, order int, player1ID, player2ID string) (*Match, error) {
	if player1ID == player2ID {
		return nil, ErrSelfPairing
	}
	return &Match{
		UID:          uid,
		RoundNumber:  round,
		OrderInRound: order,
		Player1ID:    player1ID,
		Player2ID:    player2ID,
	}, nil
}

// SetResult resolves the match. It fails if a result was already set.
func (m *Match) SetResult(outcome Outcome) error {
	if m.Resolved {
		return ErrResultAlreadySet
	}
	if !outcome.Valid() {
		return ErrInvalidOutcome
	}
	m.Player1Score, m.Player2Score = outcome.Points()
	m.Resolved = true
	return nil
}

// OverrideResult replaces an existing result. Явная операция исправления:
// требует, чтобы результат уже был установлен, и сбрасывает флаг Recorded,
// чтобы ledger применил исправление заново.
func (m *Match) OverrideResult(outcome Outcome) error {
	if !m.Resolved {
		return ErrResultNotSet
	}
	if !outcome.Valid() {
		return ErrInvalidOutcome
	}
	m.Player1Score, m.Player2Score = outcome.Points()
	m.Recorded = false
	return nil
}

// Outcome returns the recorded outcome from player one's perspective.
func (m *Match) Outcome() (Outcome, bool) {
	if !m.Resolved {
		return "", false
	}
	switch {
	case m.Player1Score > m.Player2Score:
		return OutcomeWin, true
	case m.Player1Score < m.Player2Score:
		return OutcomeLoss, true
	default:
		return OutcomeDraw, true
	}
}

// WinnerID returns the winner's player ID, or "" for a draw or an
// unresolved match.
func (m *Match) WinnerID() string {
	if !m.Resolved {
		return ""
	}
	if m.Player1Score > m.Player2Score {
		return m.Player1ID
	}
	if m.Player2Score > m.Player1Score {
		return m.Player2ID
	}
	return ""
}

func (m *Match) IsDraw() bool {
	return m.Resolved && m.Player1Score == m.Player2Score
}

// InvolvesPlayer reports whether playerID takes part in the match.
func (m *Match) InvolvesPlayer(playerID string) bool {
	return playerID == m.Player1ID || playerID == m.Player2ID
}

// OpponentOf returns the opponent of playerID, or "" if the player is
// not part of the match.
func (m *Match) OpponentOf(playerID string) string {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID
	case m.Player2ID:
		return m.Player1ID
	}
	return ""
}

// ScoreFor returns playerID's points in this match.
func (m *Match) ScoreFor(playerID string) (float64, bool) {
	switch playerID {
	case m.Player1ID:
		return m.Player1Score, true
	case m.Player2ID:
		return m.Player2Score, true
	}
	return 0, false
}
