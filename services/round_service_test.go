package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/pairing"
	"github.com/Dosada05/chess-swiss/repositories"
	"github.com/Dosada05/chess-swiss/standings"
)

type testStack struct {
	players     PlayerService
	tournaments TournamentService
	rounds      RoundService
}

func newTestStack() *testStack {
	playerRepo := repositories.NewMemoryPlayerRepository()
	tournamentRepo := repositories.NewMemoryTournamentRepository()
	participantRepo := repositories.NewMemoryParticipantRepository()
	roundRepo := repositories.NewMemoryRoundRepository()
	matchRepo := repositories.NewMemoryMatchRepository()

	tournaments := NewTournamentService(nil, tournamentRepo, participantRepo, playerRepo, roundRepo, matchRepo, nil)
	rounds := NewRoundService(nil, tournamentRepo, participantRepo, playerRepo, roundRepo, matchRepo,
		pairing.NewSwissGenerator(), standings.NewBuchholz(), nil, tournaments)

	return &testStack{
		players:     NewPlayerService(playerRepo),
		tournaments: tournaments,
		rounds:      rounds,
	}
}

// startedTournament registers playerIDs, creates a tournament with the
// given round count, enrolls everyone and starts it.
func startedTournament(t *testing.T, stack *testStack, roundCount int, playerIDs ...string) *models.Tournament {
	t.Helper()
	ctx := context.Background()

	for _, id := range playerIDs {
		_, err := stack.players.Register(ctx, PlayerInput{
			NationalID: id,
			LastName:   "Player",
			FirstName:  id,
			BirthDate:  "1990-01-01",
		})
		require.NoError(t, err)
	}

	tournament, err := stack.tournaments.Create(ctx, CreateTournamentInput{
		Name:       "Test Open",
		RoundCount: roundCount,
	})
	require.NoError(t, err)

	_, err = stack.tournaments.Enroll(ctx, tournament.ID, playerIDs)
	require.NoError(t, err)

	tournament, err = stack.tournaments.Start(ctx, tournament.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, tournament.Status)
	return tournament
}

// playRound resolves every match of the current open round with the
// given outcome.
func playRound(t *testing.T, stack *testStack, tournamentID int, outcome models.Outcome) {
	t.Helper()
	ctx := context.Background()

	round, _, err := stack.rounds.CurrentRound(ctx, tournamentID)
	require.NoError(t, err)
	require.Equal(t, models.RoundStatusOpen, round.Status)

	for _, m := range round.Matches {
		_, err := stack.rounds.SubmitResult(ctx, tournamentID, m.UID, outcome)
		require.NoError(t, err)
	}
}

func TestTournament_FourPlayersThreeRounds(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 3, "p1", "p2", "p3", "p4")

	seed := int64(1)
	for i := 1; i <= 3; i++ {
		round, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
		require.NoError(t, err)
		assert.Equal(t, i, round.Number)
		assert.False(t, round.TieBreak)
		assert.Len(t, round.Matches, 2)

		playRound(t, stack, tournament.ID, models.OutcomeWin)
	}

	final, err := stack.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, final.Rounds, 3)

	// Каждый сыграл ровно три матча, суммарный счёт поля 3 очка за тур.
	var total float64
	for _, p := range final.Participants {
		total += p.Score
		assert.LessOrEqual(t, len(p.Opponents), 3)
	}
	assert.InDelta(t, 6.0, total, 0.001)

	// Турнир либо завершён, либо ждёт тай-брейка — но не в игре.
	assert.NotEqual(t, models.StatusInProgress, final.Status)
}

func TestTournament_TwoPlayerDrawGoesToTieBreak(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 1, "p1", "p2")

	seed := int64(5)
	_, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)

	playRound(t, stack, tournament.ID, models.OutcomeDraw)

	after, err := stack.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTieBreak, after.Status)

	// Тай-брейковый тур сводит разделивших первое место.
	round, err := stack.rounds.OpenNextRound(ctx, tournament.ID, nil)
	require.NoError(t, err)
	assert.True(t, round.TieBreak)
	require.Len(t, round.Matches, 1)

	playRound(t, stack, tournament.ID, models.OutcomeWin)

	finished, err := stack.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, finished.Status)

	ranked, err := stack.tournaments.Standings(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

// TestTournament_TieBreakCap drives two players through repeated draws:
// after the third tie-break round the tournament finishes even though
// the tie stands.
func TestTournament_TieBreakCap(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 1, "p1", "p2")

	seed := int64(3)
	for i := 0; i < 4; i++ {
		_, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
		require.NoError(t, err)
		playRound(t, stack, tournament.ID, models.OutcomeDraw)
	}

	finished, err := stack.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, finished.Status)
	assert.Equal(t, 3, finished.TieBreakRoundsPlayed())

	// Дальше туров нет.
	_, err = stack.rounds.OpenNextRound(ctx, tournament.ID, nil)
	assert.ErrorIs(t, err, ErrTournamentFinished)
}

func TestSubmitResult_FinishedTournamentRejects(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 1, "p1", "p2")

	seed := int64(2)
	round, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)
	matchUID := round.Matches[0].UID

	playRound(t, stack, tournament.ID, models.OutcomeWin)

	after, err := stack.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFinished, after.Status)

	_, err = stack.rounds.SubmitResult(ctx, tournament.ID, matchUID, models.OutcomeDraw)
	assert.ErrorIs(t, err, ErrTournamentFinished)
}

func TestSubmitResult_SecondSubmissionRejected(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 2, "p1", "p2", "p3", "p4")

	seed := int64(9)
	round, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)
	matchUID := round.Matches[0].UID

	_, err = stack.rounds.SubmitResult(ctx, tournament.ID, matchUID, models.OutcomeWin)
	require.NoError(t, err)

	_, err = stack.rounds.SubmitResult(ctx, tournament.ID, matchUID, models.OutcomeDraw)
	assert.ErrorIs(t, err, ErrResultAlreadySet)

	// Счёт не удвоился.
	after, err := stack.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	var total float64
	for _, p := range after.Participants {
		total += p.Score
	}
	assert.InDelta(t, 1.0, total, 0.001)
}

// TestOverrideResult_CorrectsScore records a wrong winner on one match
// of an open round and overrides it: the totals reflect the corrected
// outcome without double-counting.
func TestOverrideResult_CorrectsScore(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 2, "p1", "p2", "p3", "p4")

	seed := int64(11)
	round, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)
	match := round.Matches[0]

	_, err = stack.rounds.SubmitResult(ctx, tournament.ID, match.UID, models.OutcomeWin)
	require.NoError(t, err)

	corrected, err := stack.rounds.OverrideResult(ctx, tournament.ID, match.UID, models.OutcomeLoss)
	require.NoError(t, err)
	assert.Equal(t, match.Player2ID, corrected.WinnerID())

	after, err := stack.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, after.ParticipantByPlayer(match.Player1ID).Score)
	assert.Equal(t, 1.0, after.ParticipantByPlayer(match.Player2ID).Score)

	// Один сыгранный матч — ровно одно очко на поле.
	var total float64
	for _, p := range after.Participants {
		total += p.Score
	}
	assert.InDelta(t, 1.0, total, 0.001)
}

func TestOverrideResult_RequiresSubmittedResult(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 2, "p1", "p2", "p3", "p4")

	seed := int64(12)
	round, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)

	_, err = stack.rounds.OverrideResult(ctx, tournament.ID, round.Matches[0].UID, models.OutcomeWin)
	assert.ErrorIs(t, err, ErrResultNotSet)
}

func TestOverrideResult_ClosedRoundRejected(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 2, "p1", "p2", "p3", "p4")

	seed := int64(13)
	round, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)
	matchUID := round.Matches[0].UID
	playRound(t, stack, tournament.ID, models.OutcomeWin)

	_, err = stack.rounds.OverrideResult(ctx, tournament.ID, matchUID, models.OutcomeDraw)
	assert.ErrorIs(t, err, ErrNoRoundToPlay)
}

func TestSubmitResult_UnknownMatch(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 1, "p1", "p2")

	seed := int64(4)
	_, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)

	_, err = stack.rounds.SubmitResult(ctx, tournament.ID, "no-such-match", models.OutcomeWin)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestOpenNextRound_RequiresPreviousRoundClosed(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()
	tournament := startedTournament(t, stack, 2, "p1", "p2", "p3", "p4")

	seed := int64(6)
	_, err := stack.rounds.OpenNextRound(ctx, tournament.ID, &seed)
	require.NoError(t, err)

	_, err = stack.rounds.OpenNextRound(ctx, tournament.ID, nil)
	assert.ErrorIs(t, err, ErrRoundStillOpen)
}

func TestOpenNextRound_BeforeStartRejected(t *testing.T) {
	stack := newTestStack()
	ctx := context.Background()

	_, err := stack.players.Register(ctx, PlayerInput{
		NationalID: "p1", LastName: "Player", FirstName: "p1", BirthDate: "1990-01-01",
	})
	require.NoError(t, err)

	tournament, err := stack.tournaments.Create(ctx, CreateTournamentInput{Name: "Pending"})
	require.NoError(t, err)

	_, err = stack.rounds.OpenNextRound(ctx, tournament.ID, nil)
	assert.ErrorIs(t, err, ErrTournamentNotStarted)
}
