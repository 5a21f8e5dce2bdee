package pairing

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/chess-swiss/models"
)

type SwissGenerator struct{}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GenerateRound produces the matches for one round.
// Round 1: random shuffle, split into two halves, pair position i of the
// first half with position i of the second.
// Rounds 2+: participants ordered by descending score (stable), walked top
// to bottom, each paired with the nearest lower unpaired participant not
// faced before. When every remaining candidate was already faced, the
// constraint is relaxed and the nearest unpaired participant is taken
// regardless of history. Сознательное ослабление, не ошибка: в маленьких
// полях поздние туры без повторов невозможны.
func (g *SwissGenerator) GenerateRound(ctx context.Context, params GenerateRoundParams) ([]*models.Match, error) {
	field := params.Participants
	if len(field) < 2 {
		return nil, fmt.Errorf("SwissGenerator: %w (found %d)", ErrFieldTooSmall, len(field))
	}
	if len(field)%2 != 0 {
		return nil, fmt.Errorf("SwissGenerator: %w (found %d)", ErrOddField, len(field))
	}

	var pairs [][2]*models.Participant
	if params.RoundNumber <= 1 {
		rng := params.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		pairs = firstRoundPairs(field, rng)
	} else {
		pairs = swissPairs(field)
	}

	matches := make([]*models.Match, 0, len(pairs))
	for i, pair := range pairs {
		m, err := models.NewMatch(uuid.NewString(), params.RoundNumber, i+1, pair[0].PlayerID, pair[1].PlayerID)
		if err != nil {
			return nil, fmt.Errorf("SwissGenerator: round %d pair %d: %w", params.RoundNumber, i+1, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func firstRoundPairs(field []*models.Participant, rng *rand.Rand) [][2]*models.Participant {
	shuffled := make([]*models.Participant, len(field))
	copy(shuffled, field)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	half := len(shuffled) / 2
	pairs := make([][2]*models.Participant, 0, half)
	for i := 0; i < half; i++ {
		pairs = append(pairs, [2]*models.Participant{shuffled[i], shuffled[half+i]})
	}
	return pairs
}

func swissPairs(field []*models.Participant) [][2]*models.Participant {
	ordered := make([]*models.Participant, len(field))
	copy(ordered, field)
	// Stable: участники с равным счётом сохраняют переданный порядок.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	pairs := make([][2]*models.Participant, 0, len(ordered)/2)
	for len(ordered) > 0 {
		top := ordered[0]
		ordered = ordered[1:]

		idx := 0
		for i, candidate := range ordered {
			if !top.HasFaced(candidate.PlayerID) {
				idx = i
				break
			}
		}
		// idx stays 0 when every candidate was faced: relaxed fallback.
		opponent := ordered[idx]
		ordered = append(ordered[:idx], ordered[idx+1:]...)
		pairs = append(pairs, [2]*models.Participant{top, opponent})
	}
	return pairs
}
