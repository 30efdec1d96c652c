package usecase

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// PostUseCase определяет бизнес-логику работы с постами блога
type PostUseCase interface {
	// ListPublished возвращает опубликованные посты, новые первыми
	ListPublished(ctx context.Context) ([]domain.Post, error)

	// ListByAuthor возвращает все посты автора, включая черновики.
	// Для неизвестного имени возвращается пустой список
	ListByAuthor(ctx context.Context, username string) ([]domain.Post, error)

	// Create публикует новый пост от имени автора
	Create(ctx context.Context, authorID uuid.UUID, input domain.PostInput) (*domain.Post, error)

	// Get возвращает пост по ID без проверки видимости
	Get(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// Update перезаписывает заголовок и текст. Править может только автор
	Update(ctx context.Context, id, actingUserID uuid.UUID, title, content string) (*domain.Post, error)

	// Delete удаляет пост безвозвратно. Удалять может только автор
	Delete(ctx context.Context, id, actingUserID uuid.UUID) error
}
