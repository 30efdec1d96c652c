package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostStorage реализует интерфейс ports.PostStorage с использованием GORM
type PostStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewPostStorage(db *gorm.DB, logger *slog.Logger) *PostStorage {
	return &PostStorage{db: db, logger: logger}
}

// SavePost сохраняет новый пост. Ассоциация Author не записывается.
func (s *PostStorage) SavePost(ctx context.Context, post *domain.Post) error {
	start := time.Now()

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	result := s.db.WithContext(ctx).Omit(clause.Associations).Create(post)
	if result.Error != nil {
		s.logger.Error("failed to save post", "author_id", post.AuthorID, "error", result.Error)
		return fmt.Errorf("insert post: %w", result.Error)
	}

	s.logger.Info("post saved successfully",
		"id", post.ID,
		"author_id", post.AuthorID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetPostByID получает пост по ID, (nil, nil) если не найден
func (s *PostStorage) GetPostByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	result := s.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.logger.Warn("post not found by id", "id", id)
			return nil, nil
		}
		s.logger.Error("failed to get post by id", "id", id, "error", result.Error)
		return nil, fmt.Errorf("select post by id: %w", result.Error)
	}
	return &post, nil
}

// ListPublishedPosts получает опубликованные посты, новые первыми
func (s *PostStorage) ListPublishedPosts(ctx context.Context) ([]domain.Post, error) {
	start := time.Now()

	var posts []domain.Post
	result := s.db.WithContext(ctx).
		Preload("Author").
		Where("is_published = ?", true).
		Order("published_date DESC").
		Find(&posts)
	if result.Error != nil {
		s.logger.Error("failed to list published posts", "error", result.Error)
		return nil, fmt.Errorf("select published posts: %w", result.Error)
	}

	s.logger.Info("listed published posts",
		"count", len(posts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return posts, nil
}

// ListPostsByAuthor получает все посты автора, включая неопубликованные
func (s *PostStorage) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	start := time.Now()

	var posts []domain.Post
	result := s.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("published_date DESC").
		Find(&posts)
	if result.Error != nil {
		s.logger.Error("failed to list posts by author", "author_id", authorID, "error", result.Error)
		return nil, fmt.Errorf("select posts by author: %w", result.Error)
	}

	s.logger.Info("listed posts by author",
		"author_id", authorID,
		"count", len(posts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return posts, nil
}

// UpdatePost применяет mutate к заблокированной строке и сохраняет только title и content
func (s *PostStorage) UpdatePost(ctx context.Context, id uuid.UUID, mutate ports.PostMutation) (*domain.Post, error) {
	start := time.Now()

	var post domain.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, id, &post); err != nil {
			return err
		}
		if err := mutate(&post); err != nil {
			return err
		}
		// published_date и is_published не трогаем
		return tx.Model(&post).
			Omit(clause.Associations).
			Updates(map[string]interface{}{"title": post.Title, "content": post.Content}).
			Error
	})
	if err != nil {
		s.logWriteError("update", id, err)
		return nil, err
	}

	s.logger.Info("post updated successfully",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &post, nil
}

// DeletePost вызывает check над заблокированной строкой и удаляет пост навсегда
func (s *PostStorage) DeletePost(ctx context.Context, id uuid.UUID, check ports.PostMutation) (*domain.Post, error) {
	start := time.Now()

	var post domain.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, id, &post); err != nil {
			return err
		}
		if err := check(&post); err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, "id = ?", id).Error
	})
	if err != nil {
		s.logWriteError("delete", id, err)
		return nil, err
	}

	s.logger.Info("post deleted successfully",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &post, nil
}

// lockPost читает пост с блокировкой строки (SQLite блокировку игнорирует)
func lockPost(tx *gorm.DB, id uuid.UUID, post *domain.Post) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("select post for update: %w", err)
	}
	var author domain.User
	err = tx.First(&author, "id = ?", post.AuthorID).Error
	switch {
	case err == nil:
		post.Author = &author
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("select post author: %w", err)
	}
	return nil
}

func (s *PostStorage) logWriteError(op string, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrInvalidInput):
		s.logger.Warn("post "+op+" rejected", "id", id, "reason", err)
	default:
		s.logger.Error("failed to "+op+" post", "id", id, "error", err)
	}
}
