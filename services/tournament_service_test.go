package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/chess-swiss/models"
)

func registerPlayers(t *testing.T, stack *testStack, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := stack.players.Register(context.Background(), PlayerInput{
			NationalID: id,
			LastName:   "Player",
			FirstName:  id,
			BirthDate:  "1985-03-12",
		})
		require.NoError(t, err)
	}
}

func TestCreateTournament_DefaultsRoundCount(t *testing.T) {
	stack := newTestStack()

	tournament, err := stack.tournaments.Create(context.Background(), CreateTournamentInput{Name: "Open"})

	require.NoError(t, err)
	assert.Equal(t, models.DefaultRoundCount, tournament.RoundCount)
	assert.Equal(t, models.StatusRegistration, tournament.Status)
}

func TestCreateTournament_NameRequired(t *testing.T) {
	stack := newTestStack()

	_, err := stack.tournaments.Create(context.Background(), CreateTournamentInput{Name: "  "})

	assert.ErrorIs(t, err, ErrTournamentNameRequired)
}

func TestEnroll_UnknownPlayerRejected(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament, err := stack.tournaments.Create(ctx, CreateTournamentInput{Name: "Open"})
	require.NoError(t, err)

	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"ghost"})

	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestEnroll_DuplicateRejected(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	registerPlayers(t, stack, "p1", "p2")
	tournament, err := stack.tournaments.Create(ctx, CreateTournamentInput{Name: "Open"})
	require.NoError(t, err)

	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p1", "p1"})
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)

	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p1", "p2"})
	require.NoError(t, err)

	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p2"})
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)
}

func TestEnroll_SeedsFollowEnrollmentOrder(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	registerPlayers(t, stack, "p1", "p2", "p3", "p4")
	tournament, err := stack.tournaments.Create(ctx, CreateTournamentInput{Name: "Open"})
	require.NoError(t, err)

	first, err := stack.tournaments.Enroll(ctx, tournament.ID, []string{"p1", "p2"})
	require.NoError(t, err)
	second, err := stack.tournaments.Enroll(ctx, tournament.ID, []string{"p3", "p4"})
	require.NoError(t, err)

	assert.Equal(t, 1, first[0].Seed)
	assert.Equal(t, 2, first[1].Seed)
	assert.Equal(t, 3, second[0].Seed)
	assert.Equal(t, 4, second[1].Seed)
}

func TestEnroll_OddBatchRejected(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	registerPlayers(t, stack, "p1", "p2", "p3")
	tournament, err := stack.tournaments.Create(ctx, CreateTournamentInput{Name: "Open"})
	require.NoError(t, err)

	// Партия записей, оставляющая поле нечётным, отклоняется на месте.
	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p1", "p2", "p3"})
	assert.ErrorIs(t, err, ErrOddField)

	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p1", "p2"})
	require.NoError(t, err)
	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p3"})
	assert.ErrorIs(t, err, ErrOddField)
}

func TestStart_ClosesRegistration(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	registerPlayers(t, stack, "p1", "p2", "p3")
	tournament, err := stack.tournaments.Create(ctx, CreateTournamentInput{Name: "Open"})
	require.NoError(t, err)
	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p1", "p2"})
	require.NoError(t, err)

	_, err = stack.tournaments.Start(ctx, tournament.ID)
	require.NoError(t, err)

	// Поле зафиксировано: ни записать игрока, ни стартовать второй раз.
	_, err = stack.tournaments.Enroll(ctx, tournament.ID, []string{"p3"})
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	_, err = stack.tournaments.Start(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 1, "p1", "p2")

	seed := int64(8)
	_, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)
	playRound(t, stack, tournament.ID, models.OutcomeWin)

	snap, err := stack.tournaments.Snapshot(ctx, tournament.ID)
	require.NoError(t, err)

	// Исходный турнир остаётся в хранилище: восстановление не должно
	// споткнуться о глобальную уникальность uid матчей.
	restored, err := stack.tournaments.Restore(ctx, snap)
	require.NoError(t, err)
	assert.NotEqual(t, tournament.ID, restored.ID)

	reloaded, err := stack.tournaments.GetByID(ctx, restored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, reloaded.Status)
	require.Len(t, reloaded.Participants, 2)
	require.Len(t, reloaded.Rounds, 1)

	// Матчи восстановленной записи получают свежие идентификаторы.
	require.Len(t, reloaded.Rounds[0].Matches, 1)
	assert.NotEmpty(t, reloaded.Rounds[0].Matches[0].UID)
	assert.NotEqual(t, snap.Rounds[0].Matches[0].UID, reloaded.Rounds[0].Matches[0].UID)

	var total float64
	for _, p := range reloaded.Participants {
		total += p.Score
	}
	assert.InDelta(t, 1.0, total, 0.001)

	// Тот же снимок можно восстановить повторно.
	again, err := stack.tournaments.Restore(ctx, snap)
	require.NoError(t, err)
	assert.NotEqual(t, restored.ID, again.ID)
}

func TestRestore_InvalidSnapshotRejected(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 1, "p1", "p2")

	seed := int64(8)
	_, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)
	playRound(t, stack, tournament.ID, models.OutcomeWin)

	snap, err := stack.tournaments.Snapshot(ctx, tournament.ID)
	require.NoError(t, err)
	snap.Participants[0].Score = 99

	_, err = stack.tournaments.Restore(ctx, snap)
	assert.ErrorIs(t, err, ErrSnapshotInvalid)
}
