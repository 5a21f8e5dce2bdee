package models

// Participant связывает игрока с одним турниром: накопленный счёт,
// история соперников и значение тай-брейка. Живёт ровно столько,
// сколько живёт турнир.
type Participant struct {
	ID           int      `json:"id" db:"id"`
	TournamentID int      `json:"tournament_id" db:"tournament_id"`
	PlayerID     string   `json:"player_id" db:"player_id"` // national identifier
	Seed         int      `json:"seed" db:"seed"`           // 1-based enrollment order
	Score        float64  `json:"score" db:"score"`
	TieBreak     float64  `json:"tie_break" db:"tie_break"`
	Opponents    []string `json:"opponents" db:"opponents"` // ordered, unique

	// Optional linked identity, populated by the service layer.
	Player *Player `json:"player,omitempty" db:"-"`
}

// HasFaced reports whether the participant already played against playerID.
func (p *Participant) HasFaced(playerID string) bool {
	for _, id := range p.Opponents {
		if id == playerID {
			return true
		}
	}
	return false
}

// AddOpponent appends playerID to the opponent history, keeping it unique.
func (p *Participant) AddOpponent(playerID string) {
	if p.HasFaced(playerID) {
		return
	}
	p.Opponents = append(p.Opponents, playerID)
}
