package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Dosada05/chess-swiss/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchUIDConflict = errors.New("match uid conflict")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	ListByRound(ctx context.Context, roundID int) ([]*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(round_id, uid, round_number, order_in_round, player1_id, player2_id,
			 player1_score, player2_score, resolved, recorded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		m.RoundID, m.UID, m.RoundNumber, m.OrderInRound, m.Player1ID, m.Player2ID,
		m.Player1Score, m.Player2Score, m.Resolved, m.Recorded,
	).Scan(&m.ID)

	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "matches_uid_key" {
			return ErrMatchUIDConflict
		}
	}
	return err
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Match, error) {
	query := `
		SELECT id, round_id, uid, round_number, order_in_round,
		       player1_id, player2_id, player1_score, player2_score,
		       resolved, recorded
		FROM matches
		WHERE round_id = $1
		ORDER BY order_in_round`

	rows, err := r.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m := &models.Match{}
		if err := rows.Scan(
			&m.ID, &m.RoundID, &m.UID, &m.RoundNumber, &m.OrderInRound,
			&m.Player1ID, &m.Player2ID, &m.Player1Score, &m.Player2Score,
			&m.Resolved, &m.Recorded,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE matches
		SET player1_score = $1, player2_score = $2, resolved = $3, recorded = $4
		WHERE uid = $5`,
		m.Player1Score, m.Player2Score, m.Resolved, m.Recorded, m.UID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
