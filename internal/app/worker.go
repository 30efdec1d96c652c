package app

import (
	"context"
	"errors"
	"fmt"
)

// runWorker слушает события о постах и обновляет архив до отмены ctx
func (a *App) runWorker(ctx context.Context) error {
	if a.Consumer == nil || a.Archive == nil {
		return errors.New("worker mode requires an event consumer and an archive")
	}

	if err := a.Consumer.StartConsumingPostEvents(ctx, a.Archive.HandlePostEvent); err != nil {
		return fmt.Errorf("start RabbitMQ consumer: %w", err)
	}
	a.Logger.Info("worker started, waiting for post events")

	<-ctx.Done()

	a.Logger.Info("shutdown signal received, stopping worker")
	return nil
}
