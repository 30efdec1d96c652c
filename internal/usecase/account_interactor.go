package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/security"
	"github.com/google/uuid"
)

// accountUseCase implements AccountUseCase
type accountUseCase struct {
	userStorage ports.UserStorage
	logger      *slog.Logger
}

// NewAccountUseCase создает новый экземпляр AccountUseCase
func NewAccountUseCase(userStorage ports.UserStorage, logger *slog.Logger) AccountUseCase {
	return &accountUseCase{
		userStorage: userStorage,
		logger:      logger,
	}
}

func (uc *accountUseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("usecase: register %q: %w", username, err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := uc.userStorage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("usecase: register %q: %w", username, err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (uc *accountUseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("usecase: authenticate: %w", err)
	}

	if user == nil {
		security.CheckDummy(password)
		uc.logger.Info("authentication failed", "reason", "unknown user")
		return nil, nil
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		uc.logger.Info("authentication failed", "reason", "wrong password", "user_id", user.ID)
		return nil, nil
	}

	uc.logger.Info("user authenticated", "user_id", user.ID)
	return user, nil
}

func (uc *accountUseCase) Load(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	user, err := uc.userStorage.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: load user %s: %w", id, err)
	}
	return user, nil
}
