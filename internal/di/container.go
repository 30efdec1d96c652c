package di

import (
	"context"
	"fmt"

	"github.com/GoArmGo/BlogApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/BlogApp/internal/app"
	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/database/client"
	"github.com/GoArmGo/BlogApp/internal/database/storage"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/metrics"
	"github.com/GoArmGo/BlogApp/internal/rabbitmq"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

// BuildApp инициализирует все зависимости для режима mode и возвращает готовый объект App.
// При ошибке уже открытые соединения закрываются.
func BuildApp(ctx context.Context, mode string) (_ *app.App, err error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(mode); err != nil {
		return nil, fmt.Errorf("invalid configuration for mode %q: %w", mode, err)
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []app.Closer
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i].Close()
			}
		}
	}()

	// 2. Подключение к бд и миграции
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient)

	// 3. Инициализация хранилищ
	userStorage := storage.NewUserStorage(dbClient.Gorm, slogger)
	postStorage := storage.NewPostStorage(dbClient.Gorm, slogger)

	// 4. RabbitMQ, если настроен
	var publisher ports.PostEventPublisher = ports.NopPublisher{}
	var consumer ports.PostEventConsumer
	if cfg.EventsEnabled() {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, rabbitMQClient)
		publisher = rabbitMQClient
		consumer = rabbitMQClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, post events are disabled")
	}

	// 5. Бизнес-логика
	deps := app.Deps{
		Config:   cfg,
		Logger:   slogger,
		Health:   dbClient,
		Accounts: usecase.NewAccountUseCase(userStorage, slogger),
		Posts:    usecase.NewPostUseCase(postStorage, userStorage, publisher, slogger),
		Metrics:  metrics.New(),
		Consumer: consumer,
	}

	// 6. Архив в MinIO нужен только воркеру
	if mode == config.ModeWorker {
		fileStorage, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			return nil, err
		}
		deps.Archive = usecase.NewArchiveUseCase(fileStorage, slogger)
	}

	deps.Closers = closers
	slogger.Info("all dependencies initialized", "mode", mode, "db_driver", dbClient.Driver())
	return app.NewApp(deps), nil
}
