package pairing

import "github.com/Dosada05/chess-swiss/models"

// RoundQuality — метрики качества сгенерированных пар одного тура.
type RoundQuality struct {
	TotalPairs    int     `json:"total_pairs"`
	Rematches     int     `json:"rematches"`
	RematchRate   float64 `json:"rematch_rate"` // percent
	AvgScoreDiff  float64 `json:"average_score_difference"`
	MaxScoreDiff  float64 `json:"max_score_difference"`
	BalancedPairs int     `json:"balanced_pairs"` // score difference <= 1.0
}

// AnalyzeRound reports how well a round's pairings follow the Swiss
// preferences: rematch count against earlier rounds, and the score
// spread inside each pair at analysis time.
func AnalyzeRound(t *models.Tournament, round *models.Round) RoundQuality {
	q := RoundQuality{TotalPairs: len(round.Matches)}

	var diffSum float64
	for _, m := range round.Matches {
		if playedBefore(t, round.Number, m.Player1ID, m.Player2ID) {
			q.Rematches++
		}

		var s1, s2 float64
		if p := t.ParticipantByPlayer(m.Player1ID); p != nil {
			s1 = p.Score
		}
		if p := t.ParticipantByPlayer(m.Player2ID); p != nil {
			s2 = p.Score
		}
		diff := s1 - s2
		if diff < 0 {
			diff = -diff
		}
		diffSum += diff
		if diff > q.MaxScoreDiff {
			q.MaxScoreDiff = diff
		}
		if diff <= 1.0 {
			q.BalancedPairs++
		}
	}

	if q.TotalPairs > 0 {
		q.RematchRate = float64(q.Rematches) / float64(q.TotalPairs) * 100
		q.AvgScoreDiff = diffSum / float64(q.TotalPairs)
	}
	return q
}

func playedBefore(t *models.Tournament, beforeRound int, player1ID, player2ID string) bool {
	for _, r := range t.Rounds {
		if r.Number >= beforeRound {
			continue
		}
		for _, m := range r.Matches {
			if m.InvolvesPlayer(player1ID) && m.InvolvesPlayer(player2ID) {
				return true
			}
		}
	}
	return false
}
