package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// ArchivedPost - документ, который лежит в архиве по ключу posts/<id>.json
type ArchivedPost struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	Category      *string   `json:"category,omitempty"`
	PublishedDate time.Time `json:"published_date"`
	ArchivedAt    time.Time `json:"archived_at"`
}

// ArchiveKey возвращает ключ объекта для поста
func ArchiveKey(postID uuid.UUID) string {
	return fmt.Sprintf("posts/%s.json", postID)
}

type archiveUseCase struct {
	fileStorage FileStorage
	logger      *slog.Logger
}

// NewArchiveUseCase создает новый экземпляр ArchiveUseCase
func NewArchiveUseCase(fileStorage FileStorage, logger *slog.Logger) ArchiveUseCase {
	return &archiveUseCase{
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (uc *archiveUseCase) HandlePostEvent(ctx context.Context, event payloads.PostEvent) error {
	key := ArchiveKey(event.PostID)
	log := uc.logger.With("type", event.Type, "post_id", event.PostID, "key", key)

	if event.Type == payloads.PostDeleted || !event.IsPublished {
		if err := uc.fileStorage.DeleteFile(ctx, key); err != nil {
			return fmt.Errorf("usecase: remove archived post %s: %w", event.PostID, err)
		}
		log.Info("post removed from archive")
		return nil
	}

	doc := ArchivedPost{
		ID:            event.PostID,
		Title:         event.Title,
		Content:       event.Content,
		Author:        event.Author,
		Category:      event.Category,
		PublishedDate: event.PublishedDate,
		ArchivedAt:    event.OccurredAt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("usecase: encode archived post %s: %w", event.PostID, err)
	}

	url, err := uc.fileStorage.UploadFile(ctx, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return fmt.Errorf("usecase: upload archived post %s: %w", event.PostID, err)
	}

	log.Info("post archived", "url", url, "size", len(body))
	return nil
}
