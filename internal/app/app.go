package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/handler"
	"github.com/GoArmGo/BlogApp/internal/metrics"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

// Closer — ресурс, который нужно освободить при завершении (бд, брокер).
type Closer interface {
	Close() error
}

// Deps — собранные di-контейнером зависимости приложения.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Health   handler.Pinger
	Accounts usecase.AccountUseCase
	Posts    usecase.PostUseCase
	Metrics  *metrics.Metrics

	// только для воркера
	Archive  usecase.ArchiveUseCase
	Consumer ports.PostEventConsumer

	// закрываются в обратном порядке
	Closers []Closer
}

type App struct {
	Deps
}

func NewApp(deps Deps) *App {
	return &App{Deps: deps}
}

// LoggerIns возвращает основной логгер приложения.
func (a *App) LoggerIns() *slog.Logger {
	return a.Logger
}

// Run запускает приложение в заданном режиме и блокируется до SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case config.ModeServer:
		err = a.runServer(ctx)
	case config.ModeWorker:
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, config.ModeServer, config.ModeWorker)
	}

	a.Logger.Info("shutting down")
	if closeErr := a.Shutdown(); closeErr != nil {
		a.Logger.Error("shutdown finished with errors", "error", closeErr)
		err = errors.Join(err, closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.Closers) - 1; i >= 0; i-- {
		if err := a.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
