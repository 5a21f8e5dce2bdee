package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/repositories"
	"github.com/Dosada05/chess-swiss/standings"
	"github.com/Dosada05/chess-swiss/storage"
)

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]models.Tournament, error)
	Enroll(ctx context.Context, tournamentID int, playerIDs []string) ([]*models.Participant, error)
	Start(ctx context.Context, tournamentID int) (*models.Tournament, error)
	Standings(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	Snapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error)
	Restore(ctx context.Context, snap *models.TournamentSnapshot) (*models.Tournament, error)
	ArchiveSnapshot(ctx context.Context, tournamentID int) (string, error)
}

type CreateTournamentInput struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	RoundCount  int    `json:"round_count"`
}

type tournamentService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	playerRepo      repositories.PlayerRepository
	roundRepo       repositories.RoundRepository
	matchRepo       repositories.MatchRepository
	uploader        storage.FileUploader
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) TournamentService {
	return &tournamentService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		playerRepo:      playerRepo,
		roundRepo:       roundRepo,
		matchRepo:       matchRepo,
		uploader:        uploader,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameRequired
	}
	roundCount := input.RoundCount
	if roundCount == 0 {
		roundCount = models.DefaultRoundCount
	}
	if roundCount < 1 {
		return nil, ErrInvalidRoundCount
	}

	tournament := &models.Tournament{
		Name:        strings.TrimSpace(input.Name),
		Location:    strings.TrimSpace(input.Location),
		Description: strings.TrimSpace(input.Description),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		RoundCount:  roundCount,
		Status:      models.StatusRegistration,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	if err := loadTournamentAggregate(ctx, tournament, s.playerRepo, s.participantRepo, s.roundRepo, s.matchRepo); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []models.Tournament{}, nil
	}
	return tournaments, nil
}

// Enroll записывает игроков в турнир. Принимается только на стадии
// регистрации; каждый идентификатор должен существовать в реестре и
// быть уникальным в рамках турнира.
func (s *tournamentService) Enroll(ctx context.Context, tournamentID int, playerIDs []string) ([]*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationClosed
	}

	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEnrollment, id)
		}
		seen[id] = true
		if _, err := s.playerRepo.GetByNationalID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
			}
			return nil, fmt.Errorf("failed to look up player %s: %w", id, err)
		}
	}

	existing, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	enrolledAlready := make(map[string]bool, len(existing))
	for _, p := range existing {
		enrolledAlready[p.PlayerID] = true
	}
	for _, id := range playerIDs {
		if enrolledAlready[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEnrollment, id)
		}
	}
	// Поле остаётся чётным после каждой партии записей: нечётная партия
	// отклоняется сразу, а не при старте.
	if (len(existing)+len(playerIDs))%2 != 0 {
		return nil, ErrOddField
	}

	var enrolled []*models.Participant
	txErr := runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		seed := len(existing)
		for _, id := range playerIDs {
			seed++
			participant := &models.Participant{
				TournamentID: tournamentID,
				PlayerID:     id,
				Seed:         seed,
			}
			if err := s.participantRepo.Create(ctx, exec, participant); err != nil {
				if errors.Is(err, repositories.ErrParticipantConflict) {
					return fmt.Errorf("%w: %s", ErrDuplicateEnrollment, id)
				}
				return fmt.Errorf("failed to enroll player %s: %w", id, err)
			}
			enrolled = append(enrolled, participant)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return enrolled, nil
}

// Start переводит турнир из регистрации в игру. Поле фиксируется:
// дальнейшая запись игроков отклоняется.
func (s *tournamentService) Start(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationClosed
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	if len(participants) < 2 {
		return nil, ErrFieldTooSmall
	}
	if len(participants)%2 != 0 {
		return nil, ErrOddField
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusInProgress); err != nil {
		return nil, fmt.Errorf("failed to update tournament %d status: %w", tournamentID, err)
	}
	tournament.Status = models.StatusInProgress
	tournament.Participants = participants
	return tournament, nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return standings.NewLedger(tournament).Standings(), nil
}

func (s *tournamentService) Snapshot(ctx context.Context, tournamentID int) (*models.TournamentSnapshot, error) {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return tournament.Snapshot(), nil
}

// Restore восстанавливает турнир из снимка как новую запись. Снимок
// проходит полную проверку инвариантов до первой записи в хранилище.
func (s *tournamentService) Restore(ctx context.Context, snap *models.TournamentSnapshot) (*models.Tournament, error) {
	tournament, err := models.RestoreTournament(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create restored tournament: %w", err)
	}

	txErr := runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		for _, p := range tournament.Participants {
			p.TournamentID = tournament.ID
			if err := s.participantRepo.Create(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to restore participant %s: %w", p.PlayerID, err)
			}
		}
		for _, round := range tournament.Rounds {
			round.TournamentID = tournament.ID
			if err := s.roundRepo.Create(ctx, exec, round); err != nil {
				return fmt.Errorf("failed to restore round %d: %w", round.Number, err)
			}
			for _, match := range round.Matches {
				match.RoundID = round.ID
				// UID матчей глобально уникальны, а исходный турнир может
				// всё ещё существовать в том же хранилище: восстановленные
				// матчи получают свежие идентификаторы.
				match.UID = uuid.NewString()
				if err := s.matchRepo.Create(ctx, exec, match); err != nil {
					return fmt.Errorf("failed to restore match %s: %w", match.UID, err)
				}
			}
		}
		// Накопленные счета и история соперников приходят из снимка,
		// Create их не пишет.
		for _, p := range tournament.Participants {
			if err := s.participantRepo.UpdateStanding(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to restore standing for %s: %w", p.PlayerID, err)
			}
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournament.ID, tournament.Status); err != nil {
			return fmt.Errorf("failed to restore tournament status: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return tournament, nil
}

// ArchiveSnapshot сериализует снимок турнира и выгружает его в
// объектное хранилище. Возвращает публичный URL архива.
func (s *tournamentService) ArchiveSnapshot(ctx context.Context, tournamentID int) (string, error) {
	if s.uploader == nil {
		return "", errors.New("snapshot archive storage is not configured")
	}

	snap, err := s.Snapshot(ctx, tournamentID)
	if err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot for tournament %d: %w", tournamentID, err)
	}

	key := fmt.Sprintf("tournaments/%d/snapshot-%s.json", tournamentID, time.Now().UTC().Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot for tournament %d: %w", tournamentID, err)
	}
	return result.Location, nil
}
