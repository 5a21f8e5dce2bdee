package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/chess-swiss/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, location, description, start_date, end_date, round_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		t.Name, t.Location, t.Description, t.StartDate, t.EndDate, t.RoundCount, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, location, description, start_date, end_date, round_count, status, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Location, &t.Description, &t.StartDate, &t.EndDate,
		&t.RoundCount, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, name, location, description, start_date, end_date, round_count, status, created_at
		FROM tournaments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []models.Tournament
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Location, &t.Description, &t.StartDate, &t.EndDate,
			&t.RoundCount, &t.Status, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
