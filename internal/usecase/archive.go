package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
type FileStorage interface {
	// UploadFile загружает файл в хранилище и возвращает его URL.
	// `key` - уникальное имя объекта в бакете (например, posts/<id>.json)
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)

	// DeleteFile удаляет объект по ключу. Отсутствие объекта ошибкой не считается
	DeleteFile(ctx context.Context, key string) error
}

// ArchiveUseCase поддерживает статический архив опубликованных постов в объектном хранилище
type ArchiveUseCase interface {
	// HandlePostEvent записывает или удаляет архивную копию поста.
	// Возврат ошибки означает, что событие нужно обработать повторно
	HandlePostEvent(ctx context.Context, event payloads.PostEvent) error
}
