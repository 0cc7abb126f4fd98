package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/taskhub/student-task-service/internal/entity"
)

// TokenVerifier - внешняя проверка личности: bearer-токен -> callerID.
// Сервис доверяет возвращенному callerID безусловно.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

type contextKey struct{}

var callerIDKey contextKey

// CallerID достает идентификатор вызывающего из контекста запроса.
// Пустая строка - запрос не прошел через Authenticate.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerIDKey).(string)
	return id
}

// Authenticate проверяет заголовок Authorization: "Bearer <token>".
// Нет токена или истек -> 401, невалидный/подделанный -> 403.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token := bearerToken(authHeader)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "Authentication token required.")
				return
			}

			callerID, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, entity.ErrTokenExpired) {
					writeMessage(w, http.StatusUnauthorized, "Token expired. Please sign in again.")
					return
				}
				writeMessage(w, http.StatusForbidden, "Invalid or malformed authentication token.")
				return
			}

			ctx := context.WithValue(r.Context(), callerIDKey, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
