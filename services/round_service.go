package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/pairing"
	"github.com/Dosada05/chess-swiss/repositories"
	"github.com/Dosada05/chess-swiss/standings"
)

// Предел рекурсии тай-брейков: после третьего дополнительного тура
// турнир завершается и порядок решает метрика.
const maxTieBreakRounds = 3

type RoundService interface {
	// OpenNextRound формирует пары и открывает следующий тур. Для
	// турнира в статусе tiebreak поле сужается до группы, разделившей
	// первое место. Ненулевой seed делает жеребьёвку первого тура
	// воспроизводимой.
	OpenNextRound(ctx context.Context, tournamentID int, seed *int64) (*models.Round, error)

	// SubmitResult записывает исход матча текущего тура. Когда
	// закрывается последний матч, тур завершается и турнир переходит
	// в следующее состояние.
	SubmitResult(ctx context.Context, tournamentID int, matchUID string, outcome models.Outcome) (*models.Match, error)

	// OverrideResult исправляет уже записанный результат матча, пока
	// его тур ещё открыт. Прежние очки снимаются перед применением
	// исправления, так что счета не удваиваются.
	OverrideResult(ctx context.Context, tournamentID int, matchUID string, outcome models.Outcome) (*models.Match, error)

	CurrentRound(ctx context.Context, tournamentID int) (*models.Round, *pairing.RoundQuality, error)
	ListRounds(ctx context.Context, tournamentID int) ([]*models.Round, error)
}

type roundService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	playerRepo      repositories.PlayerRepository
	roundRepo       repositories.RoundRepository
	matchRepo       repositories.MatchRepository
	generator       pairing.Generator
	metric          standings.TieBreakMetric
	hub             *pairing.Hub
	tournaments     TournamentService
}

func NewRoundService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	generator pairing.Generator,
	metric standings.TieBreakMetric,
	hub *pairing.Hub,
	tournaments TournamentService,
) RoundService {
	return &roundService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		playerRepo:      playerRepo,
		roundRepo:       roundRepo,
		matchRepo:       matchRepo,
		generator:       generator,
		metric:          metric,
		hub:             hub,
		tournaments:     tournaments,
	}
}

func (s *roundService) loadTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if err := loadTournamentAggregate(ctx, tournament, s.playerRepo, s.participantRepo, s.roundRepo, s.matchRepo); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *roundService) OpenNextRound(ctx context.Context, tournamentID int, seed *int64) (*models.Round, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	switch tournament.Status {
	case models.StatusRegistration:
		return nil, ErrTournamentNotStarted
	case models.StatusFinished:
		return nil, ErrTournamentFinished
	}

	if current := tournament.CurrentRound(); current != nil && current.Status == models.RoundStatusOpen {
		return nil, ErrRoundStillOpen
	}

	field := tournament.Participants
	tieBreak := tournament.Status == models.StatusTieBreak
	if tieBreak {
		field = standings.NewLedger(tournament).TiedForFirst()
	} else if tournament.StandardRoundsPlayed() >= tournament.RoundCount {
		return nil, ErrAllRoundsPlayed
	}

	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(*seed))
	}

	roundNumber := len(tournament.Rounds) + 1
	matches, err := s.generator.GenerateRound(ctx, pairing.GenerateRoundParams{
		Tournament:   tournament,
		Participants: field,
		RoundNumber:  roundNumber,
		TieBreak:     tieBreak,
		Rand:         rng,
	})
	if err != nil {
		if errors.Is(err, pairing.ErrOddField) {
			return nil, ErrOddField
		}
		if errors.Is(err, pairing.ErrFieldTooSmall) {
			return nil, ErrFieldTooSmall
		}
		return nil, fmt.Errorf("failed to generate round %d for tournament %d: %w", roundNumber, tournamentID, err)
	}

	round := &models.Round{
		TournamentID: tournamentID,
		Number:       roundNumber,
		TieBreak:     tieBreak,
		Status:       models.RoundStatusOpen,
		StartedAt:    time.Now(),
		Matches:      matches,
	}

	txErr := runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if err := s.roundRepo.Create(ctx, exec, round); err != nil {
			return fmt.Errorf("failed to persist round %d: %w", roundNumber, err)
		}
		for _, match := range matches {
			match.RoundID = round.ID
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return fmt.Errorf("failed to persist match %s: %w", match.UID, err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.broadcast(tournamentID, pairing.EventRoundOpened, round)
	return round, nil
}

func (s *roundService) SubmitResult(ctx context.Context, tournamentID int, matchUID string, outcome models.Outcome) (*models.Match, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	switch tournament.Status {
	case models.StatusRegistration:
		return nil, ErrTournamentNotStarted
	case models.StatusFinished:
		return nil, ErrTournamentFinished
	}

	round := tournament.CurrentRound()
	if round == nil || round.Status != models.RoundStatusOpen {
		return nil, ErrNoRoundToPlay
	}

	match := round.MatchByUID(matchUID)
	if match == nil {
		return nil, ErrMatchNotFound
	}

	if err := match.SetResult(outcome); err != nil {
		switch {
		case errors.Is(err, models.ErrResultAlreadySet):
			return nil, ErrResultAlreadySet
		case errors.Is(err, models.ErrInvalidOutcome):
			return nil, fmt.Errorf("%w: %q", ErrValidationFailed, outcome)
		}
		return nil, err
	}

	ledger := standings.NewLedger(tournament)
	if err := ledger.RecordResult(match); err != nil {
		return nil, fmt.Errorf("failed to record result for match %s: %w", matchUID, err)
	}

	p1 := tournament.ParticipantByPlayer(match.Player1ID)
	p2 := tournament.ParticipantByPlayer(match.Player2ID)

	roundClosed := round.AllMatchesResolved()
	var nextStatus models.TournamentStatus
	var standingsToSave []*models.Participant
	if roundClosed {
		if err := round.Close(time.Now()); err != nil {
			return nil, err
		}
		nextStatus, standingsToSave = s.advance(tournament, ledger)
	}

	txErr := runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to persist result for match %s: %w", matchUID, err)
		}
		for _, p := range []*models.Participant{p1, p2} {
			if err := s.participantRepo.UpdateStanding(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to persist standing for %s: %w", p.PlayerID, err)
			}
		}
		if !roundClosed {
			return nil
		}
		if err := s.roundRepo.UpdateStatus(ctx, exec, round.ID, round.Status, round.EndedAt); err != nil {
			return fmt.Errorf("failed to close round %d: %w", round.Number, err)
		}
		for _, p := range standingsToSave {
			if err := s.participantRepo.UpdateStanding(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to persist tie-break for %s: %w", p.PlayerID, err)
			}
		}
		if nextStatus != tournament.Status {
			if !isValidStatusTransition(tournament.Status, nextStatus) {
				return fmt.Errorf("illegal status transition %s -> %s", tournament.Status, nextStatus)
			}
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, nextStatus); err != nil {
				return fmt.Errorf("failed to update tournament %d status: %w", tournamentID, err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.broadcast(tournamentID, pairing.EventResultRecorded, match)
	if roundClosed {
		tournament.Status = nextStatus
		s.broadcast(tournamentID, pairing.EventStandingsUpdated, ledger.Standings())
		if nextStatus == models.StatusFinished {
			s.broadcast(tournamentID, pairing.EventTournamentFinished, ledger.Standings())
			s.archive(ctx, tournamentID)
		}
	}
	return match, nil
}

func (s *roundService) OverrideResult(ctx context.Context, tournamentID int, matchUID string, outcome models.Outcome) (*models.Match, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	switch tournament.Status {
	case models.StatusRegistration:
		return nil, ErrTournamentNotStarted
	case models.StatusFinished:
		return nil, ErrTournamentFinished
	}

	// Исправление допустимо, пока тур открыт: после закрытия его итоги
	// уже повлияли на жеребьёвку и статус турнира.
	round := tournament.CurrentRound()
	if round == nil || round.Status != models.RoundStatusOpen {
		return nil, ErrNoRoundToPlay
	}

	match := round.MatchByUID(matchUID)
	if match == nil {
		return nil, ErrMatchNotFound
	}

	ledger := standings.NewLedger(tournament)
	if err := ledger.OverrideResult(match, outcome); err != nil {
		switch {
		case errors.Is(err, standings.ErrNotRecorded):
			return nil, ErrResultNotSet
		case errors.Is(err, models.ErrInvalidOutcome):
			return nil, fmt.Errorf("%w: %q", ErrValidationFailed, outcome)
		}
		return nil, fmt.Errorf("failed to override result for match %s: %w", matchUID, err)
	}

	p1 := tournament.ParticipantByPlayer(match.Player1ID)
	p2 := tournament.ParticipantByPlayer(match.Player2ID)

	txErr := runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to persist override for match %s: %w", matchUID, err)
		}
		for _, p := range []*models.Participant{p1, p2} {
			if err := s.participantRepo.UpdateStanding(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to persist standing for %s: %w", p.PlayerID, err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.broadcast(tournamentID, pairing.EventResultRecorded, match)
	s.broadcast(tournamentID, pairing.EventStandingsUpdated, ledger.Standings())
	return match, nil
}

// advance решает, куда двигается турнир после закрытия тура: ещё один
// обычный тур, тай-брейк для разделивших первое место, или финиш.
// Возвращает следующий статус и участников, чьи тай-брейк значения
// нужно сохранить.
func (s *roundService) advance(tournament *models.Tournament, ledger *standings.Ledger) (models.TournamentStatus, []*models.Participant) {
	if tournament.StandardRoundsPlayed() < tournament.RoundCount {
		return models.StatusInProgress, nil
	}

	// После каждого тай-брейкового тура метрика пересчитывается: её
	// значения участвуют в итоговом порядке.
	var toSave []*models.Participant
	if tournament.TieBreakRoundsPlayed() > 0 {
		ledger.ApplyTieBreak(s.metric)
		toSave = tournament.Participants
	}

	tied := ledger.TiedForFirst()
	if tied == nil || len(tied)%2 != 0 || tournament.TieBreakRoundsPlayed() >= maxTieBreakRounds {
		if tied != nil {
			// Нерешаемый тай-брейк: метрика определяет итоговый порядок.
			ledger.ApplyTieBreak(s.metric)
			toSave = tournament.Participants
		}
		return models.StatusFinished, toSave
	}
	return models.StatusTieBreak, toSave
}

func (s *roundService) CurrentRound(ctx context.Context, tournamentID int) (*models.Round, *pairing.RoundQuality, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	round := tournament.CurrentRound()
	if round == nil {
		return nil, nil, ErrRoundNotFound
	}
	quality := pairing.AnalyzeRound(tournament, round)
	return round, &quality, nil
}

func (s *roundService) ListRounds(ctx context.Context, tournamentID int) ([]*models.Round, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Rounds == nil {
		return []*models.Round{}, nil
	}
	return tournament.Rounds, nil
}

func (s *roundService) broadcast(tournamentID int, event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	room := strconv.Itoa(tournamentID)
	s.hub.BroadcastToRoom(room, pairing.WebSocketMessage{
		Type:    event,
		Payload: payload,
		RoomID:  room,
	})
}

// archive выгружает итоговый снимок в объектное хранилище. Ошибка
// архива не откатывает завершение турнира.
func (s *roundService) archive(ctx context.Context, tournamentID int) {
	if s.tournaments == nil {
		return
	}
	location, err := s.tournaments.ArchiveSnapshot(ctx, tournamentID)
	if err != nil {
		slog.Warn("failed to archive tournament snapshot", "tournament_id", tournamentID, "error", err)
		return
	}
	slog.Info("tournament snapshot archived", "tournament_id", tournamentID, "location", location)
}
