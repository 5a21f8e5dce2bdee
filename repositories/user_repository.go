package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Dosada05/chess-swiss/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
	}
	return err
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, `WHERE email = $1`, email)
}

func (r *postgresUserRepository) getBy(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, role, created_at
		FROM users ` + where

	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
