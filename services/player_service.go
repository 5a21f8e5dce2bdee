package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/repositories"
)

// PlayerService — реестр игроков: единственный владелец их
// идентификационных данных. Турниры ссылаются на игроков только по
// национальному идентификатору.
type PlayerService interface {
	Register(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, nationalID string, input PlayerInput) (*models.Player, error)
	Remove(ctx context.Context, nationalID string) error
}

type PlayerInput struct {
	NationalID string `json:"national_id"`
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func validatePlayerInput(input PlayerInput) error {
	if strings.TrimSpace(input.NationalID) == "" ||
		strings.TrimSpace(input.LastName) == "" ||
		strings.TrimSpace(input.FirstName) == "" ||
		strings.TrimSpace(input.BirthDate) == "" {
		return ErrPlayerFieldsRequired
	}
	if _, err := time.Parse("2006-01-02", input.BirthDate); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBirthDate, input.BirthDate)
	}
	return nil
}

func (s *playerService) Register(ctx context.Context, input PlayerInput) (*models.Player, error) {
	if err := validatePlayerInput(input); err != nil {
		return nil, err
	}

	player := &models.Player{
		NationalID: strings.TrimSpace(input.NationalID),
		LastName:   strings.TrimSpace(input.LastName),
		FirstName:  strings.TrimSpace(input.FirstName),
		BirthDate:  input.BirthDate,
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerIDConflict) {
			return nil, ErrPlayerIDConflict
		}
		return nil, fmt.Errorf("failed to register player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error) {
	player, err := s.playerRepo.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", nationalID, err)
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if players == nil {
		return []models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) Update(ctx context.Context, nationalID string, input PlayerInput) (*models.Player, error) {
	input.NationalID = nationalID
	if err := validatePlayerInput(input); err != nil {
		return nil, err
	}

	player := &models.Player{
		NationalID: nationalID,
		LastName:   strings.TrimSpace(input.LastName),
		FirstName:  strings.TrimSpace(input.FirstName),
		BirthDate:  input.BirthDate,
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %s: %w", nationalID, err)
	}
	return player, nil
}

func (s *playerService) Remove(ctx context.Context, nationalID string) error {
	if err := s.playerRepo.Delete(ctx, nationalID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %s: %w", nationalID, err)
	}
	return nil
}
