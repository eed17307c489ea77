// Package middleware содержит HTTP middleware роутера:
// аутентификацию по заголовку и сбор метрик запросов.
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/avdk/BMS-SchedulingService/internal/api/handlers"
)

const msgMissingUserID = "отсутствует заголовок X-User-ID"

type contextKey string

const userIDKey contextKey = "userID"

// Auth требует валидный заголовок X-User-ID и кладёт ID сотрудника в контекст.
// Аутентификация выполняется на API gateway, сервис доверяет заголовку.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID извлекает ID сотрудника из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
