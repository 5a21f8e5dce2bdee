package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/repositories"
	"github.com/Dosada05/chess-swiss/utils"
)

var (
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, input LoginInput) (*models.User, string, error)
}

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	if len(input.Password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, "", ErrValidationFailed
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleOrganizer,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, "", ErrAuthEmailTaken
		}
		return nil, "", fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	user.PasswordHash = ""
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	user.PasswordHash = ""
	return user, token, nil
}
