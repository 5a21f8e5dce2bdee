package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/repositories"
)

// --- Общие хелперы ---

// runInTx выполняет fn внутри транзакции, если сервис подключен к БД.
// Без БД (in-memory режим) fn получает nil-исполнитель и репозитории
// работают со своим хранилищем напрямую.
func runInTx(ctx context.Context, db *sql.DB, fn func(exec repositories.SQLExecutor) error) error {
	if db == nil {
		return fn(nil)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("transaction rollback failed", "error", rbErr, "cause", txErr)
			}
		}
	}()

	if txErr = fn(tx); txErr != nil {
		return txErr
	}
	if err := tx.Commit(); err != nil {
		txErr = err
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusRegistration: {models.StatusInProgress},
		models.StatusInProgress:   {models.StatusTieBreak, models.StatusFinished},
		models.StatusTieBreak:     {models.StatusTieBreak, models.StatusFinished},
		models.StatusFinished:     {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// loadTournamentAggregate собирает полный агрегат турнира: участники с
// привязанными игроками, туры с матчами. Независимые ветки грузятся
// параллельно.
func loadTournamentAggregate(
	ctx context.Context,
	tournament *models.Tournament,
	playerRepo repositories.PlayerRepository,
	participantRepo repositories.ParticipantRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
) error {
	g, gCtx := errgroup.WithContext(ctx)

	var participants []*models.Participant
	var rounds []*models.Round
	var players []models.Player

	g.Go(func() error {
		var err error
		participants, err = participantRepo.ListByTournament(gCtx, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to list participants for tournament %d: %w", tournament.ID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rounds, err = roundRepo.ListByTournament(gCtx, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to list rounds for tournament %d: %w", tournament.ID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		players, err = playerRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list players: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	byNationalID := make(map[string]*models.Player, len(players))
	for i := range players {
		byNationalID[players[i].NationalID] = &players[i]
	}
	for _, p := range participants {
		p.Player = byNationalID[p.PlayerID]
	}

	mg, mCtx := errgroup.WithContext(ctx)
	for _, round := range rounds {
		round := round
		mg.Go(func() error {
			matches, err := matchRepo.ListByRound(mCtx, round.ID)
			if err != nil {
				return fmt.Errorf("failed to list matches for round %d: %w", round.ID, err)
			}
			round.Matches = matches
			return nil
		})
	}
	if err := mg.Wait(); err != nil {
		return err
	}

	tournament.Participants = participants
	tournament.Rounds = rounds
	return nil
}
