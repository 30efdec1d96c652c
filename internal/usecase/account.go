package usecase

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// AccountUseCase определяет бизнес-логику работы с учётными записями авторов
type AccountUseCase interface {
	// Register создаёт пользователя. Имя обрезается по краям, пароль берётся как есть.
	// Ошибки: domain.ErrInvalidInput, domain.ErrDuplicateUsername
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate возвращает пользователя при верной паре имя/пароль.
	// Неизвестное имя и неверный пароль неразличимы: оба дают (nil, nil)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// Load восстанавливает пользователя по ID из сессии, (nil, nil) если его нет
	Load(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
