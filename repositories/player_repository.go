package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Dosada05/chess-swiss/models"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerIDConflict = errors.New("national identifier is already registered")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, nationalID string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (national_id, last_name, first_name, birth_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.NationalID,
		player.LastName,
		player.FirstName,
		player.BirthDate,
	).Scan(&player.ID, &player.CreatedAt)

	return handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Player, error) {
	query := `
		SELECT id, national_id, last_name, first_name, birth_date, created_at
		FROM players
		WHERE national_id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, nationalID).Scan(
		&p.ID, &p.NationalID, &p.LastName, &p.FirstName, &p.BirthDate, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `
		SELECT id, national_id, last_name, first_name, birth_date, created_at
		FROM players
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.NationalID, &p.LastName, &p.FirstName, &p.BirthDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET last_name = $1, first_name = $2, birth_date = $3
		WHERE national_id = $4`

	result, err := r.db.ExecContext(ctx, query,
		player.LastName, player.FirstName, player.BirthDate, player.NationalID,
	)
	if err != nil {
		return handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, nationalID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE national_id = $1`, nationalID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "players_national_id_key" {
			return ErrPlayerIDConflict
		}
	}
	return err
}
