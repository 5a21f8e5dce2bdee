package pairing

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/chess-swiss/models"
)

func makeField(ids ...string) []*models.Participant {
	field := make([]*models.Participant, 0, len(ids))
	for i, id := range ids {
		field = append(field, &models.Participant{PlayerID: id, Seed: i + 1})
	}
	return field
}

// assertPerfectMatching checks that every participant appears in exactly
// one match of the round.
func assertPerfectMatching(t *testing.T, field []*models.Participant, matches []*models.Match) {
	t.Helper()
	seen := make(map[string]int)
	for _, m := range matches {
		seen[m.Player1ID]++
		seen[m.Player2ID]++
	}
	assert.Len(t, matches, len(field)/2)
	for _, p := range field {
		assert.Equal(t, 1, seen[p.PlayerID], "player %s should appear exactly once", p.PlayerID)
	}
}

func TestGenerateRound_OddFieldRejected(t *testing.T) {
	g := NewSwissGenerator()

	_, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: makeField("a", "b", "c"),
		RoundNumber:  1,
	})

	assert.ErrorIs(t, err, ErrOddField)
}

func TestGenerateRound_FieldTooSmall(t *testing.T) {
	g := NewSwissGenerator()

	_, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: makeField("a"),
		RoundNumber:  1,
	})

	assert.ErrorIs(t, err, ErrFieldTooSmall)
}

func TestGenerateRound_FirstRoundPerfectMatching(t *testing.T) {
	g := NewSwissGenerator()
	field := makeField("a", "b", "c", "d", "e", "f", "g", "h")

	matches, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  1,
		Rand:         rand.New(rand.NewSource(7)),
	})

	require.NoError(t, err)
	assertPerfectMatching(t, field, matches)
	for i, m := range matches {
		assert.Equal(t, 1, m.RoundNumber)
		assert.Equal(t, i+1, m.OrderInRound)
		assert.False(t, m.Resolved)
		assert.NotEmpty(t, m.UID)
	}
}

// TestGenerateRound_FirstRoundSeededReproducible verifies that the same
// seed yields the same draw, and a different seed may change it.
func TestGenerateRound_FirstRoundSeededReproducible(t *testing.T) {
	g := NewSwissGenerator()
	field := makeField("a", "b", "c", "d", "e", "f")

	first, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  1,
		Rand:         rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)

	second, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  1,
		Rand:         rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Player1ID, second[i].Player1ID)
		assert.Equal(t, first[i].Player2ID, second[i].Player2ID)
	}
}

func TestGenerateRound_FirstRoundHalfSplit(t *testing.T) {
	g := NewSwissGenerator()
	field := makeField("a", "b", "c", "d")

	// Замер перестановки: при четырёх участниках пары всегда соединяют
	// позицию i первой половины с позицией i второй.
	rng := rand.New(rand.NewSource(11))
	shuffled := make([]*models.Participant, len(field))
	copy(shuffled, field)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	matches, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  1,
		Rand:         rand.New(rand.NewSource(11)),
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, shuffled[0].PlayerID, matches[0].Player1ID)
	assert.Equal(t, shuffled[2].PlayerID, matches[0].Player2ID)
	assert.Equal(t, shuffled[1].PlayerID, matches[1].Player1ID)
	assert.Equal(t, shuffled[3].PlayerID, matches[1].Player2ID)
}

func TestGenerateRound_LaterRoundPairsByScore(t *testing.T) {
	g := NewSwissGenerator()
	field := makeField("a", "b", "c", "d")
	field[0].Score = 1 // a
	field[1].Score = 1 // b
	field[2].Score = 0 // c
	field[3].Score = 0 // d
	field[0].Opponents = []string{"c"}
	field[2].Opponents = []string{"a"}
	field[1].Opponents = []string{"d"}
	field[3].Opponents = []string{"b"}

	matches, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Лидеры играют между собой, аутсайдеры между собой.
	assert.Equal(t, "a", matches[0].Player1ID)
	assert.Equal(t, "b", matches[0].Player2ID)
	assert.Equal(t, "c", matches[1].Player1ID)
	assert.Equal(t, "d", matches[1].Player2ID)
}

func TestGenerateRound_AvoidsRematchWhenPossible(t *testing.T) {
	g := NewSwissGenerator()
	field := makeField("a", "b", "c", "d")
	field[0].Score = 1
	field[1].Score = 1
	field[2].Score = 0
	field[3].Score = 0
	// a уже играл с b: ближайший низший без повтора — c.
	field[0].Opponents = []string{"b"}
	field[1].Opponents = []string{"a"}

	matches, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "a", matches[0].Player1ID)
	assert.Equal(t, "c", matches[0].Player2ID)
	assert.Equal(t, "b", matches[1].Player1ID)
	assert.Equal(t, "d", matches[1].Player2ID)
}

// TestGenerateRound_ForcedRematchFallback covers the relaxed fallback:
// in a 4-player field entering round 3 everyone has faced everyone
// reachable, so a rematch is unavoidable and the nearest participant
// is taken regardless of history.
func TestGenerateRound_ForcedRematchFallback(t *testing.T) {
	g := NewSwissGenerator()
	field := makeField("a", "b", "c", "d")
	field[0].Score = 2
	field[0].Opponents = []string{"b", "c", "d"}
	field[1].Score = 1
	field[1].Opponents = []string{"a", "c", "d"}
	field[2].Score = 1
	field[2].Opponents = []string{"a", "b", "d"}
	field[3].Score = 0
	field[3].Opponents = []string{"a", "b", "c"}

	matches, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  4,
	})
	require.NoError(t, err)
	assertPerfectMatching(t, field, matches)
}

func TestGenerateRound_StableOrderAmongEqualScores(t *testing.T) {
	g := NewSwissGenerator()
	field := makeField("a", "b", "c", "d", "e", "f")
	// Все с равным счётом: порядок передачи сохраняется.
	matches, err := g.GenerateRound(context.Background(), GenerateRoundParams{
		Participants: field,
		RoundNumber:  2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "a", matches[0].Player1ID)
	assert.Equal(t, "b", matches[0].Player2ID)
	assert.Equal(t, "c", matches[1].Player1ID)
	assert.Equal(t, "d", matches[1].Player2ID)
	assert.Equal(t, "e", matches[2].Player1ID)
	assert.Equal(t, "f", matches[2].Player2ID)
}
