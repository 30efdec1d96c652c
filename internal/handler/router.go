package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/BlogApp/internal/metrics"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pinger проверяет доступность зависимостей для /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps — всё, что нужно HTTP-слою.
type RouterDeps struct {
	Accounts       usecase.AccountUseCase
	Posts          usecase.PostUseCase
	Sessions       *SessionManager
	Metrics        *metrics.Metrics
	Health         Pinger
	Logger         *slog.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewRouter собирает chi-роутер со всеми маршрутами API.
func NewRouter(deps RouterDeps) http.Handler {
	authHandler := NewAuthHandler(deps.Accounts, deps.Sessions, deps.Metrics, deps.Logger)
	postHandler := NewPostHandler(deps.Posts, deps.Metrics, deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.HTTPMetrics)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", healthHandler(deps.Health, deps.Logger))
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(LoadUser(deps.Sessions, deps.Accounts, deps.Logger))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/posts", postHandler.ListPublished)
		r.Get("/posts/{id}", postHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(deps.Logger))

			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Get("/dashboard", postHandler.Dashboard)
			r.Post("/posts", postHandler.Create)
			r.Put("/posts/{id}", postHandler.Update)
			r.Delete("/posts/{id}", postHandler.Delete)
		})
	})

	return r
}

func healthHandler(p Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				logger.Error("health check failed", "error", err)
				respondWithError(w, http.StatusServiceUnavailable, "database unavailable", logger)
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
