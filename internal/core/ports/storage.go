package ports

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Методы Get* возвращают (nil, nil), если пользователь не найден.
type UserStorage interface {
	// CreateUser сохраняет нового пользователя, при занятом имени возвращает domain.ErrDuplicateUsername
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// PostMutation вызывается внутри транзакции над заблокированной строкой поста.
// Возврат ошибки откатывает транзакцию.
type PostMutation func(post *domain.Post) error

// PostStorage определяет методы для взаимодействия с хранилищем постов.
// Посты возвращаются с загруженной ассоциацией Author.
type PostStorage interface {
	SavePost(ctx context.Context, post *domain.Post) error

	// GetPostByID возвращает (nil, nil), если пост не найден
	GetPostByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// ListPublishedPosts отдаёт опубликованные посты, новые первыми
	ListPublishedPosts(ctx context.Context) ([]domain.Post, error)

	// ListPostsByAuthor отдаёт все посты автора, включая неопубликованные
	ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error)

	// UpdatePost загружает пост, применяет mutate и сохраняет title/content одной транзакцией.
	// Если поста нет, возвращает domain.ErrNotFound.
	UpdatePost(ctx context.Context, id uuid.UUID, mutate PostMutation) (*domain.Post, error)

	// DeletePost загружает пост, вызывает check и удаляет строку одной транзакцией.
	// Возвращает удалённый пост. Если поста нет, возвращает domain.ErrNotFound.
	DeletePost(ctx context.Context, id uuid.UUID, check PostMutation) (*domain.Post, error)
}
