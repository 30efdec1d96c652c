package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// postUseCase implements PostUseCase
type postUseCase struct {
	postStorage ports.PostStorage
	userStorage ports.UserStorage
	publisher   ports.PostEventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewPostUseCase создает новый экземпляр PostUseCase.
// publisher получает события после успешной записи в бд
func NewPostUseCase(
	postStorage ports.PostStorage,
	userStorage ports.UserStorage,
	publisher ports.PostEventPublisher,
	logger *slog.Logger,
) PostUseCase {
	return &postUseCase{
		postStorage: postStorage,
		userStorage: userStorage,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *postUseCase) ListPublished(ctx context.Context) ([]domain.Post, error) {
	posts, err := uc.postStorage.ListPublishedPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: list published posts: %w", err)
	}
	return posts, nil
}

func (uc *postUseCase) ListByAuthor(ctx context.Context, username string) ([]domain.Post, error) {
	author, err := uc.userStorage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("usecase: list posts of %q: %w", username, err)
	}
	if author == nil {
		return []domain.Post{}, nil
	}

	posts, err := uc.postStorage.ListPostsByAuthor(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: list posts of %q: %w", username, err)
	}
	return posts, nil
}

func (uc *postUseCase) Create(ctx context.Context, authorID uuid.UUID, input domain.PostInput) (*domain.Post, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	author, err := uc.userStorage.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("usecase: create post: %w", err)
	}
	if author == nil {
		return nil, fmt.Errorf("usecase: author %s: %w", authorID, domain.ErrNotFound)
	}

	post := &domain.Post{
		ID:            uuid.New(),
		Title:         input.Title,
		Content:       input.Content,
		AuthorID:      author.ID,
		PublishedDate: uc.now().UTC(),
		IsPublished:   true,
		Category:      input.CategoryPtr(),
	}
	if err := uc.postStorage.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("usecase: create post: %w", err)
	}
	post.Author = author

	uc.publish(ctx, payloads.PostCreated, post)
	return post, nil
}

func (uc *postUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := uc.postStorage.GetPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: get post %s: %w", id, err)
	}
	if post == nil {
		return nil, fmt.Errorf("usecase: post %s: %w", id, domain.ErrNotFound)
	}
	return post, nil
}

func (uc *postUseCase) Update(ctx context.Context, id, actingUserID uuid.UUID, title, content string) (*domain.Post, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateContent(content); err != nil {
		return nil, err
	}

	post, err := uc.postStorage.UpdatePost(ctx, id, func(p *domain.Post) error {
		if !p.OwnedBy(actingUserID) {
			return domain.ErrForbidden
		}
		p.Title = title
		p.Content = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: update post %s: %w", id, err)
	}

	uc.publish(ctx, payloads.PostUpdated, post)
	return post, nil
}

func (uc *postUseCase) Delete(ctx context.Context, id, actingUserID uuid.UUID) error {
	post, err := uc.postStorage.DeletePost(ctx, id, func(p *domain.Post) error {
		if !p.OwnedBy(actingUserID) {
			return domain.ErrForbidden
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("usecase: delete post %s: %w", id, err)
	}

	uc.publish(ctx, payloads.PostDeleted, post)
	return nil
}

// publish не влияет на результат операции: запись в бд уже зафиксирована
func (uc *postUseCase) publish(ctx context.Context, t payloads.PostEventType, post *domain.Post) {
	event := payloads.NewPostEvent(t, post, uc.now().UTC())
	if err := uc.publisher.PublishPostEvent(ctx, event); err != nil {
		uc.logger.Error("failed to publish post event",
			"type", t,
			"post_id", post.ID,
			"error", err,
		)
		return
	}
	uc.logger.Debug("post event published", "type", t, "post_id", post.ID)
}
