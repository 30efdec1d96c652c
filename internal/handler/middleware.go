package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ctxKey int

const currentUserKey ctxKey = iota

// RequestLogger — middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoadUser восстанавливает пользователя из сессии и кладёт его в контекст.
// Запрос без сессии проходит дальше анонимным.
func LoadUser(sessions *SessionManager, accounts usecase.AccountUseCase, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessions.UserID(r)
			if id == uuid.Nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := accounts.Load(r.Context(), id)
			if err != nil {
				logger.Error("failed to load session user", "user_id", id, "error", err)
				respondWithError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера", logger)
				return
			}
			if user == nil {
				// пользователь удалён, сессия больше недействительна
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), currentUserKey, user)))
		})
	}
}

// RequireUser отвечает 401, если в контексте нет пользователя.
func RequireUser(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CurrentUser(r.Context()) == nil {
				respondWithError(w, http.StatusUnauthorized, "Требуется вход", logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser возвращает пользователя текущего запроса или nil.
func CurrentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(currentUserKey).(*domain.User)
	return u
}

// currentUserID возвращает uuid.Nil для анонимного запроса.
func currentUserID(ctx context.Context) uuid.UUID {
	if u := CurrentUser(ctx); u != nil {
		return u.ID
	}
	return uuid.Nil
}
