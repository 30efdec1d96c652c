package ports

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

// PostEventPublisher определяет методы для публикации событий об изменении постов.
// Используется сценариями работы с постами после успешного коммита.
type PostEventPublisher interface {
	PublishPostEvent(ctx context.Context, event payloads.PostEvent) error
}

// PostEventConsumer определяет методы для потребления событий о постах,
// используется воркером архива.
type PostEventConsumer interface {
	// StartConsumingPostEvents начинает прослушивание очереди
	// и вызывает handler для каждого полученного события
	StartConsumingPostEvents(ctx context.Context, handler func(context.Context, payloads.PostEvent) error) error
}

// NopPublisher отбрасывает события. Используется, когда брокер не настроен.
type NopPublisher struct{}

func (NopPublisher) PublishPostEvent(context.Context, payloads.PostEvent) error { return nil }
