package models

import "fmt"

// ValidateTournament проверяет инварианты агрегата целиком. Используется
// при восстановлении из снапшота, чтобы десериализованный турнир
// удовлетворял тем же инвариантам, что и построенный вживую.
func ValidateTournament(t *Tournament) error {
	if t.RoundCount < 1 {
		return fmt.Errorf("round count must be at least 1, got %d", t.RoundCount)
	}

	enrolled := make(map[string]bool, len(t.Participants))
	for _, p := range t.Participants {
		if enrolled[p.PlayerID] {
			return fmt.Errorf("participant %s enrolled twice", p.PlayerID)
		}
		enrolled[p.PlayerID] = true
	}

	if t.HasStarted() {
		if len(t.Participants) < 2 || len(t.Participants)%2 != 0 {
			return fmt.Errorf("started tournament requires an even field of at least 2, got %d", len(t.Participants))
		}
	}

	tieBreaks := 0
	for i, r := range t.Rounds {
		if r.Number != i+1 {
			return fmt.Errorf("round %d has number %d, want %d", i+1, r.Number, i+1)
		}
		if r.TieBreak {
			tieBreaks++
		}
		if len(r.Matches) == 0 {
			return fmt.Errorf("round %d has no matches", r.Number)
		}
		if r.Status == RoundStatusComplete && !r.AllMatchesResolved() {
			return fmt.Errorf("round %d marked complete with unresolved matches", r.Number)
		}
		// Каждый участник играет ровно один матч за тур; тай-брейковый тур
		// ограничен подгруппой, поэтому для него проверяется только
		// уникальность и принадлежность к турниру.
		seen := make(map[string]bool)
		for _, id := range r.PlayerIDs() {
			if !enrolled[id] {
				return fmt.Errorf("round %d references unknown player %s", r.Number, id)
			}
			if seen[id] {
				return fmt.Errorf("round %d pairs player %s more than once", r.Number, id)
			}
			seen[id] = true
		}
		if !r.TieBreak && len(seen) != len(t.Participants) {
			return fmt.Errorf("round %d covers %d of %d participants", r.Number, len(seen), len(t.Participants))
		}
	}

	if len(t.Rounds) > t.RoundCount+tieBreaks {
		return fmt.Errorf("tournament has %d rounds, expected at most %d standard plus %d tie-break", len(t.Rounds), t.RoundCount, tieBreaks)
	}

	// Открытых туров не больше одного, и только последним.
	for i, r := range t.Rounds {
		if r.Status == RoundStatusOpen && i != len(t.Rounds)-1 {
			return fmt.Errorf("round %d is open but is not the last round", r.Number)
		}
	}

	// Суммы из записанных матчей должны совпадать с накопленными счетами.
	expected := make(map[string]float64, len(t.Participants))
	for _, r := range t.Rounds {
		for _, m := range r.Matches {
			if m.Recorded {
				expected[m.Player1ID] += m.Player1Score
				expected[m.Player2ID] += m.Player2Score
			}
		}
	}
	for _, p := range t.Participants {
		if diff := p.Score - expected[p.PlayerID]; diff > 0.001 || diff < -0.001 {
			return fmt.Errorf("participant %s has score %v, recorded matches sum to %v", p.PlayerID, p.Score, expected[p.PlayerID])
		}
	}

	return nil
}
