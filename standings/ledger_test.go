package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/chess-swiss/models"
)

func makeTournament(playerIDs ...string) *models.Tournament {
	t := &models.Tournament{
		Name:       "Test Open",
		RoundCount: 3,
		Status:     models.StatusInProgress,
	}
	for i, id := range playerIDs {
		t.Participants = append(t.Participants, &models.Participant{
			PlayerID: id,
			Seed:     i + 1,
		})
	}
	return t
}

func resolvedMatch(t *testing.T, p1, p2 string, outcome models.Outcome) *models.Match {
	t.Helper()
	m, err := models.NewMatch("uid-"+p1+p2, 1, 1, p1, p2)
	require.NoError(t, err)
	require.NoError(t, m.SetResult(outcome))
	return m
}

func TestRecordResult_AppliesScoresAndHistory(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)

	m := resolvedMatch(t, "a", "b", models.OutcomeWin)
	require.NoError(t, ledger.RecordResult(m))

	a := tournament.ParticipantByPlayer("a")
	b := tournament.ParticipantByPlayer("b")
	assert.Equal(t, 1.0, a.Score)
	assert.Equal(t, 0.0, b.Score)
	assert.Equal(t, []string{"b"}, a.Opponents)
	assert.Equal(t, []string{"a"}, b.Opponents)
	assert.True(t, m.Recorded)
}

func TestRecordResult_DrawSplitsPoint(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)

	require.NoError(t, ledger.RecordResult(resolvedMatch(t, "a", "b", models.OutcomeDraw)))

	assert.Equal(t, 0.5, tournament.ParticipantByPlayer("a").Score)
	assert.Equal(t, 0.5, tournament.ParticipantByPlayer("b").Score)
}

// TestRecordResult_Idempotent verifies that recording the same match
// twice does not double the points.
func TestRecordResult_Idempotent(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)
	m := resolvedMatch(t, "a", "b", models.OutcomeWin)

	require.NoError(t, ledger.RecordResult(m))
	err := ledger.RecordResult(m)

	assert.ErrorIs(t, err, ErrAlreadyRecorded)
	assert.Equal(t, 1.0, tournament.ParticipantByPlayer("a").Score)
}

// TestOverrideResult_TakesBackPriorPoints drives the correction flow:
// a win recorded by mistake is overridden to a loss, and the single
// match still contributes exactly one point to the field.
func TestOverrideResult_TakesBackPriorPoints(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)
	m := resolvedMatch(t, "a", "b", models.OutcomeWin)
	require.NoError(t, ledger.RecordResult(m))

	require.NoError(t, ledger.OverrideResult(m, models.OutcomeLoss))

	a := tournament.ParticipantByPlayer("a")
	b := tournament.ParticipantByPlayer("b")
	assert.Equal(t, 0.0, a.Score)
	assert.Equal(t, 1.0, b.Score)
	assert.InDelta(t, 1.0, a.Score+b.Score, 0.001)
	// История соперников не дублируется.
	assert.Equal(t, []string{"b"}, a.Opponents)
	assert.Equal(t, []string{"a"}, b.Opponents)
	assert.True(t, m.Recorded)
}

func TestOverrideResult_RequiresRecordedMatch(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)
	m := resolvedMatch(t, "a", "b", models.OutcomeWin)

	err := ledger.OverrideResult(m, models.OutcomeDraw)

	assert.ErrorIs(t, err, ErrNotRecorded)
	assert.Equal(t, 0.0, tournament.ParticipantByPlayer("a").Score)
}

func TestOverrideResult_InvalidOutcomeLeavesScoresIntact(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)
	m := resolvedMatch(t, "a", "b", models.OutcomeWin)
	require.NoError(t, ledger.RecordResult(m))

	err := ledger.OverrideResult(m, models.Outcome("bogus"))

	assert.ErrorIs(t, err, models.ErrInvalidOutcome)
	assert.Equal(t, 1.0, tournament.ParticipantByPlayer("a").Score)
	assert.Equal(t, 0.0, tournament.ParticipantByPlayer("b").Score)
	assert.True(t, m.Recorded)
}

func TestRecordResult_UnresolvedRejected(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)
	m, err := models.NewMatch("uid", 1, 1, "a", "b")
	require.NoError(t, err)

	assert.ErrorIs(t, ledger.RecordResult(m), ErrInvalidResult)
}

func TestRecordResult_UnknownParticipant(t *testing.T) {
	tournament := makeTournament("a", "b")
	ledger := NewLedger(tournament)

	err := ledger.RecordResult(resolvedMatch(t, "a", "x", models.OutcomeWin))

	assert.ErrorIs(t, err, ErrUnknownParticipant)
}

func TestStandings_OrderedByScoreThenSeed(t *testing.T) {
	tournament := makeTournament("a", "b", "c", "d")
	tournament.ParticipantByPlayer("a").Score = 1
	tournament.ParticipantByPlayer("b").Score = 2
	tournament.ParticipantByPlayer("c").Score = 1
	tournament.ParticipantByPlayer("d").Score = 0

	ranked := NewLedger(tournament).Standings()

	require.Len(t, ranked, 4)
	assert.Equal(t, "b", ranked[0].PlayerID)
	// a и c делят счёт: порядок записи (seed) сохраняется.
	assert.Equal(t, "a", ranked[1].PlayerID)
	assert.Equal(t, "c", ranked[2].PlayerID)
	assert.Equal(t, "d", ranked[3].PlayerID)
}

func TestStandings_TieBreakOrderAfterTieBreakRound(t *testing.T) {
	tournament := makeTournament("a", "b", "c", "d")
	tournament.Rounds = append(tournament.Rounds, &models.Round{Number: 4, TieBreak: true})
	tournament.ParticipantByPlayer("a").Score = 2
	tournament.ParticipantByPlayer("a").TieBreak = 3
	tournament.ParticipantByPlayer("b").Score = 2
	tournament.ParticipantByPlayer("b").TieBreak = 5
	tournament.ParticipantByPlayer("c").Score = 1
	tournament.ParticipantByPlayer("d").Score = 1

	ranked := NewLedger(tournament).Standings()

	// Тай-брейковый тур сыгран: среди равных решает метрика.
	assert.Equal(t, "b", ranked[0].PlayerID)
	assert.Equal(t, "a", ranked[1].PlayerID)
}

func TestStandings_FinishedTournamentUsesTieBreakValues(t *testing.T) {
	tournament := makeTournament("a", "b", "c")
	tournament.Status = models.StatusFinished
	tournament.ParticipantByPlayer("a").Score = 1
	tournament.ParticipantByPlayer("a").TieBreak = 1
	tournament.ParticipantByPlayer("b").Score = 1
	tournament.ParticipantByPlayer("b").TieBreak = 2
	tournament.ParticipantByPlayer("c").Score = 1
	tournament.ParticipantByPlayer("c").TieBreak = 3

	ranked := NewLedger(tournament).Standings()

	assert.Equal(t, "c", ranked[0].PlayerID)
	assert.Equal(t, "b", ranked[1].PlayerID)
	assert.Equal(t, "a", ranked[2].PlayerID)
}

func TestTiedForFirst_NilWhenOutrightLeader(t *testing.T) {
	tournament := makeTournament("a", "b")
	tournament.ParticipantByPlayer("a").Score = 1

	assert.Nil(t, NewLedger(tournament).TiedForFirst())
}

func TestTiedForFirst_ReturnsSharedTop(t *testing.T) {
	tournament := makeTournament("a", "b", "c", "d")
	tournament.ParticipantByPlayer("a").Score = 2
	tournament.ParticipantByPlayer("b").Score = 2
	tournament.ParticipantByPlayer("c").Score = 2
	tournament.ParticipantByPlayer("d").Score = 0

	tied := NewLedger(tournament).TiedForFirst()

	require.Len(t, tied, 3)
	ids := []string{tied[0].PlayerID, tied[1].PlayerID, tied[2].PlayerID}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}

func TestBuchholz_SumsOpponentScores(t *testing.T) {
	tournament := makeTournament("a", "b", "c", "d")
	tournament.ParticipantByPlayer("a").Opponents = []string{"b", "c"}
	tournament.ParticipantByPlayer("b").Score = 2
	tournament.ParticipantByPlayer("c").Score = 0.5

	metric := NewBuchholz()

	assert.Equal(t, "Buchholz", metric.GetName())
	assert.Equal(t, 2.5, metric.Compute(tournament, tournament.ParticipantByPlayer("a")))
}

func TestApplyTieBreak_FillsAllParticipants(t *testing.T) {
	tournament := makeTournament("a", "b")
	tournament.ParticipantByPlayer("a").Opponents = []string{"b"}
	tournament.ParticipantByPlayer("b").Opponents = []string{"a"}
	tournament.ParticipantByPlayer("a").Score = 1

	ledger := NewLedger(tournament)
	ledger.ApplyTieBreak(NewBuchholz())

	assert.Equal(t, 0.0, tournament.ParticipantByPlayer("a").TieBreak)
	assert.Equal(t, 1.0, tournament.ParticipantByPlayer("b").TieBreak)
}
