package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ModeServer = "server"
	ModeWorker = "worker"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	ServerPort     string        `env:"SERVER_PORT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Сессии (cookie, подписанная секретом)
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	SessionSecure bool          `env:"SESSION_SECURE"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Настройки для MinIO, нужны только воркеру архива
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"blog-archive"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`

	// Пустой RabbitMQURL отключает публикацию событий
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"post_events_queue"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (use %q or %q)", cfg.DatabaseDriver, DriverPostgres, DriverSQLite)
	}

	return &cfg, nil
}

// Validate проверяет, что для выбранного режима заданы все внешние сервисы.
func (c *Config) Validate(mode string) error {
	switch mode {
	case ModeServer:
		return nil
	case ModeWorker:
		var errs []error
		if c.RabbitMQ.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required in worker mode"))
		}
		if c.MinioEndpoint == "" || c.MinioAccessKeyID == "" || c.MinioSecretAccessKey == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID and MINIO_SECRET_ACCESS_KEY are required in worker mode"))
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}
}

// EventsEnabled сообщает, настроен ли брокер для публикации событий.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}
