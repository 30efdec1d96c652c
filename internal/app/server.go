package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GoArmGo/BlogApp/internal/handler"
)

const shutdownTimeout = 30 * time.Second

// Handler собирает HTTP-роутер из зависимостей приложения
func (a *App) Handler() http.Handler {
	return handler.NewRouter(handler.RouterDeps{
		Accounts:       a.Accounts,
		Posts:          a.Posts,
		Sessions:       handler.NewSessionManager(a.Config.SessionSecret, a.Config.SessionMaxAge, a.Config.SessionSecure),
		Metrics:        a.Metrics,
		Health:         a.Health,
		Logger:         a.Logger,
		RequestTimeout: a.Config.RequestTimeout,
		AllowedOrigins: a.Config.CORSAllowedOrigins,
	})
}

// runServer запускает HTTP сервер и останавливает его при отмене ctx
func (a *App) runServer(ctx context.Context) error {
	serverAddr := fmt.Sprintf(":%s", a.Config.ServerPort)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server started", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutdown signal received, stopping http server")

	ctxServer, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.Logger.Info("http server stopped")
	return nil
}
