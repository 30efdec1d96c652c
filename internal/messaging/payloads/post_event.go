package payloads

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// PostEventType описывает, что произошло с постом.
type PostEventType string

const (
	PostCreated PostEventType = "post.created"
	PostUpdated PostEventType = "post.updated"
	PostDeleted PostEventType = "post.deleted"
)

// PostEvent представляет сообщение об изменении поста,
// передаётся через RabbitMQ воркеру архива.
type PostEvent struct {
	Type          PostEventType `json:"type"`
	PostID        uuid.UUID     `json:"post_id"`
	AuthorID      uuid.UUID     `json:"author_id"`
	Author        string        `json:"author,omitempty"`
	Title         string        `json:"title,omitempty"`
	Content       string        `json:"content,omitempty"`
	Category      *string       `json:"category,omitempty"`
	PublishedDate time.Time     `json:"published_date"`
	IsPublished   bool          `json:"is_published"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// NewPostEvent снимает снимок поста для события указанного типа.
func NewPostEvent(t PostEventType, post *domain.Post, at time.Time) PostEvent {
	return PostEvent{
		Type:          t,
		PostID:        post.ID,
		AuthorID:      post.AuthorID,
		Author:        post.AuthorName(),
		Title:         post.Title,
		Content:       post.Content,
		Category:      post.Category,
		PublishedDate: post.PublishedDate,
		IsPublished:   post.IsPublished,
		OccurredAt:    at,
	}
}

// DecodePostEvent разбирает тело сообщения и проверяет обязательные поля.
func DecodePostEvent(body []byte) (PostEvent, error) {
	var event PostEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return PostEvent{}, fmt.Errorf("decode post event: %w", err)
	}
	switch event.Type {
	case PostCreated, PostUpdated, PostDeleted:
	default:
		return PostEvent{}, fmt.Errorf("decode post event: unknown type %q", event.Type)
	}
	if event.PostID == uuid.Nil {
		return PostEvent{}, fmt.Errorf("decode post event: missing post_id")
	}
	return event, nil
}
