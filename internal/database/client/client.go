package client

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Client держит единственный пул соединений с бд на всё время жизни процесса.
// DB (sqlx) и Gorm работают поверх одного и того же *sql.DB.
type Client struct {
	DB     *sqlx.DB
	Gorm   *gorm.DB
	driver string
	logger *slog.Logger
}

// NewClient открывает соединение с бд по настройкам и приводит схему к актуальной версии.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return NewSQLiteClient(cfg.DatabaseURL, logger)
	default:
		return NewPostgresClient(cfg.DatabaseURL, logger)
	}
}

// NewPostgresClient инициализирует подключение к PostgreSQL и применяет миграции
func NewPostgresClient(databaseURL string, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		logger.Error("failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := applyMigrations(databaseURL, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), gormConfig())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init gorm over postgres: %w", err)
	}

	logger.Info("PostgreSQL connection established successfully",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, Gorm: gdb, driver: config.DriverPostgres, logger: logger}, nil
}

// NewSQLiteClient открывает SQLite (файл или ":memory:") и создаёт схему через AutoMigrate.
// Используется для локальной разработки и в тестах хранилищ.
func NewSQLiteClient(dsn string, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		logger.Error("failed to open SQLite database", "dsn", dsn, "error", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sqlite handle: %w", err)
	}
	// SQLite сериализует запись, а ":memory:" живёт только в одном соединении
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&domain.User{}, &domain.Post{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate sqlite schema: %w", err)
	}

	logger.Info("SQLite database ready",
		"dsn", dsn,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: sqlx.NewDb(sqlDB, "sqlite"), Gorm: gdb, driver: config.DriverSQLite, logger: logger}, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// applyMigrations применяет все доступные миграции к бд
func applyMigrations(databaseURL string, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("migrations not required, database is up to date")
	case err != nil:
		return fmt.Errorf("apply migrations: %w", err)
	default:
		logger.Info("migrations applied successfully")
	}
	return nil
}

// Driver возвращает имя драйвера бд.
func (c *Client) Driver() string {
	return c.driver
}

// Ping проверяет доступность бд, используется в /health.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	start := time.Now()
	err := c.DB.Close()
	if err != nil {
		c.logger.Error("failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("database connection closed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
