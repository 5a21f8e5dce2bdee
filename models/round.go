package models

import (
	"errors"
	"time"
)

var ErrRoundIncomplete = errors.New("all matches must be resolved before closing the round")

// RoundStatus — статусы тура, соответствующие ENUM в БД.
type RoundStatus string

const (
	RoundStatusOpen     RoundStatus = "open"
	RoundStatusComplete RoundStatus = "complete"
)

// Round — упорядоченный набор матчей, созданных вместе.
type Round struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Number       int         `json:"number" db:"number"` // 1-based, monotonically increasing
	TieBreak     bool        `json:"tie_break" db:"tie_break"`
	Status       RoundStatus `json:"status" db:"status"`
	StartedAt    time.Time   `json:"started_at" db:"started_at"`
	EndedAt      *time.Time  `json:"ended_at,omitempty" db:"ended_at"`
	Matches      []*Match    `json:"matches" db:"-"`
}

// AllMatchesResolved reports whether every match has a result.
func (r *Round) AllMatchesResolved() bool {
	for _, m := range r.Matches {
		if !m.Resolved {
			return false
		}
	}
	return true
}

// Close marks the round complete. Fails while any match is unresolved.
func (r *Round) Close(now time.Time) error {
	if !r.AllMatchesResolved() {
		return ErrRoundIncomplete
	}
	r.Status = RoundStatusComplete
	r.EndedAt = &now
	return nil
}

// MatchByUID returns the match with the given UID, or nil.
func (r *Round) MatchByUID(uid string) *Match {
	for _, m := range r.Matches {
		if m.UID == uid {
			return m
		}
	}
	return nil
}

// PlayerIDs lists every player appearing in the round, in match order.
func (r *Round) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Matches)*2)
	for _, m := range r.Matches {
		ids = append(ids, m.Player1ID, m.Player2ID)
	}
	return ids
}
