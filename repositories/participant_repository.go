package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Dosada05/chess-swiss/models"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("player is already enrolled in this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, participant *models.Participant) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	UpdateStanding(ctx context.Context, exec SQLExecutor, participant *models.Participant) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (tournament_id, player_id, seed, score, tie_break, opponents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		p.TournamentID, p.PlayerID, p.Seed, p.Score, p.TieBreak, pq.Array(p.Opponents),
	).Scan(&p.ID)

	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "participants_tournament_id_player_id_key" {
			return ErrParticipantConflict
		}
	}
	return err
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `
		SELECT id, tournament_id, player_id, seed, score, tie_break, opponents
		FROM participants
		WHERE tournament_id = $1
		ORDER BY seed`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.PlayerID, &p.Seed, &p.Score, &p.TieBreak,
			pq.Array(&p.Opponents),
		); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) UpdateStanding(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE participants
		SET score = $1, tie_break = $2, opponents = $3
		WHERE tournament_id = $4 AND player_id = $5`,
		p.Score, p.TieBreak, pq.Array(p.Opponents), p.TournamentID, p.PlayerID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
