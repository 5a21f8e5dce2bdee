package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/chess-swiss/services"
	"github.com/Dosada05/chess-swiss/standings"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Паника, т.к. это ошибка программиста (передан не указатель)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Ресурс не найден
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrRoundNotFound),
		errors.Is(err, services.ErrMatchNotFound):
		notFoundResponse(w, r)

	// Конфликты
	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrPlayerIDConflict),
		errors.Is(err, services.ErrDuplicateEnrollment),
		errors.Is(err, services.ErrResultAlreadySet),
		errors.Is(err, standings.ErrAlreadyRecorded):
		conflictResponse(w, r, err.Error())

	// Невалидные данные / бизнес-правила
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPlayerFieldsRequired),
		errors.Is(err, services.ErrInvalidBirthDate),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrInvalidRoundCount),
		errors.Is(err, services.ErrOddField),
		errors.Is(err, services.ErrFieldTooSmall),
		errors.Is(err, services.ErrSnapshotInvalid):
		badRequestResponse(w, r, err)

	// Нарушения состояния турнира
	case errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrTournamentNotStarted),
		errors.Is(err, services.ErrTournamentFinished),
		errors.Is(err, services.ErrRoundStillOpen),
		errors.Is(err, services.ErrNoRoundToPlay),
		errors.Is(err, services.ErrResultNotSet),
		errors.Is(err, services.ErrAllRoundsPlayed):
		conflictResponse(w, r, err.Error())

	// Ошибки авторизации/доступа
	case errors.Is(err, services.ErrAuthenticationFailed),
		errors.Is(err, services.ErrAuthInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, err.Error())
	case errors.Is(err, services.ErrAuthEmailTaken):
		conflictResponse(w, r, err.Error())

	// Непредвиденные ошибки / ошибки по умолчанию
	default:
		serverErrorResponse(w, r, err)
	}
}
