package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/chess-swiss/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Round, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus, endedAt *time.Time) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (tournament_id, number, tie_break, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		round.TournamentID, round.Number, round.TieBreak, round.Status, round.StartedAt,
	).Scan(&round.ID)
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Round, error) {
	query := `
		SELECT id, tournament_id, number, tie_break, status, started_at, ended_at
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*models.Round
	for rows.Next() {
		round := &models.Round{}
		if err := rows.Scan(
			&round.ID, &round.TournamentID, &round.Number, &round.TieBreak,
			&round.Status, &round.StartedAt, &round.EndedAt,
		); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus, endedAt *time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rounds SET status = $1, ended_at = $2 WHERE id = $3`,
		status, endedAt, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
