package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrPlayerFieldsRequired   = errors.New("national id, last name, first name and birth date are required")
	ErrInvalidBirthDate       = errors.New("birth date must be in YYYY-MM-DD format")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrInvalidRoundCount      = errors.New("round count must be at least 1")
	ErrRegistrationClosed     = errors.New("tournament registration is closed")
	ErrOddField               = errors.New("tournament requires an even number of participants")
	ErrFieldTooSmall          = errors.New("tournament requires at least 2 participants")
	ErrRoundStillOpen         = errors.New("current round has unresolved matches")
	ErrNoRoundToPlay          = errors.New("tournament has no open round")
	ErrTournamentNotStarted   = errors.New("tournament has not been started")
	ErrTournamentFinished     = errors.New("tournament is finished")
	ErrAllRoundsPlayed        = errors.New("all configured rounds have been played")
	ErrResultAlreadySet       = errors.New("match result was already submitted")
	ErrResultNotSet           = errors.New("match result has not been submitted yet")
	ErrSnapshotInvalid        = errors.New("snapshot violates tournament invariants")

	// Ошибки конфликтов
	ErrUserEmailConflict   = errors.New("email address is already in use")
	ErrPlayerIDConflict    = errors.New("national identifier is already registered")
	ErrDuplicateEnrollment = errors.New("player is already enrolled in this tournament")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrMatchNotFound      = errors.New("match not found")
)
