package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/chess-swiss/utils"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Authenticate проверяет Bearer-токен и кладёт claims в контекст.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseJWT(parts[1])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize пропускает только пользователей с одной из указанных ролей.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(claimsContextKey).(jwt.MapClaims)
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			role, _ := claims["role"].(string)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "insufficient permissions", http.StatusForbidden)
		})
	}
}

// GetUserIDFromContext достаёт user_id из JWT claims в контексте запроса.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("user claims not found in context")
	}
	idRaw, ok := claims["user_id"]
	if !ok {
		return 0, errors.New("user_id not found in token")
	}
	idFloat, ok := idRaw.(float64)
	if !ok {
		return 0, errors.New("user_id has invalid type")
	}
	return int(idFloat), nil
}
