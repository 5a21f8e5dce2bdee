package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusInProgress   TournamentStatus = "in_progress"
	StatusTieBreak     TournamentStatus = "tiebreak"
	StatusFinished     TournamentStatus = "finished"
)

const DefaultRoundCount = 4

// Tournament — один турнир по швейцарской системе. Владеет своими
// участниками и турами эксклюзивно; между турнирами ничего не разделяется.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Location    string           `json:"location" db:"location"`
	Description string           `json:"description,omitempty" db:"description"`
	StartDate   string           `json:"start_date" db:"start_date"` // YYYY-MM-DD, validated upstream
	EndDate     string           `json:"end_date" db:"end_date"`
	RoundCount  int              `json:"round_count" db:"round_count"` // configured number of standard rounds
	Status      TournamentStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	Participants []*Participant `json:"participants,omitempty" db:"-"` // enrollment order
	Rounds       []*Round       `json:"rounds,omitempty" db:"-"`
}

// ParticipantByPlayer returns the participant enrolled for playerID, or nil.
func (t *Tournament) ParticipantByPlayer(playerID string) *Participant {
	for _, p := range t.Participants {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// CurrentRound returns the most recently opened round, or nil before round 1.
func (t *Tournament) CurrentRound() *Round {
	if len(t.Rounds) == 0 {
		return nil
	}
	return t.Rounds[len(t.Rounds)-1]
}

// RoundByNumber returns the round with the given number, or nil.
func (t *Tournament) RoundByNumber(number int) *Round {
	for _, r := range t.Rounds {
		if r.Number == number {
			return r
		}
	}
	return nil
}

// StandardRoundsPlayed counts non-tie-break rounds opened so far.
func (t *Tournament) StandardRoundsPlayed() int {
	n := 0
	for _, r := range t.Rounds {
		if !r.TieBreak {
			n++
		}
	}
	return n
}

// TieBreakRoundsPlayed counts tie-break rounds opened so far.
func (t *Tournament) TieBreakRoundsPlayed() int {
	n := 0
	for _, r := range t.Rounds {
		if r.TieBreak {
			n++
		}
	}
	return n
}

func (t *Tournament) HasStarted() bool {
	return len(t.Rounds) > 0
}

// Accepting reports whether the tournament still accepts round activity.
func (t *Tournament) Accepting() bool {
	return t.Status == StatusInProgress || t.Status == StatusTieBreak
}
