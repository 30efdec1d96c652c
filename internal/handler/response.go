package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/google/uuid"
)

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondWithDomainError переводит доменную ошибку в HTTP-статус.
// Детали внутренних ошибок только логируются.
func respondWithDomainError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error(), logger)
	case errors.Is(err, domain.ErrDuplicateUsername):
		respondWithError(w, http.StatusConflict, "Имя пользователя уже занято", logger)
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Не найдено", logger)
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Недостаточно прав", logger)
	default:
		logger.Error("request failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера", logger)
	}
}

// userResponse — представление пользователя без хеша пароля.
type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username}
}

// postResponse — пост с именем автора, подставленным при отдаче.
type postResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	AuthorID      uuid.UUID `json:"author_id"`
	Author        string    `json:"author"`
	PublishedDate time.Time `json:"published_date"`
	IsPublished   bool      `json:"is_published"`
	Category      *string   `json:"category,omitempty"`
}

func newPostResponse(p *domain.Post) postResponse {
	return postResponse{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		AuthorID:      p.AuthorID,
		Author:        p.AuthorName(),
		PublishedDate: p.PublishedDate,
		IsPublished:   p.IsPublished,
		Category:      p.Category,
	}
}

func newPostListResponse(posts []domain.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		out = append(out, newPostResponse(&posts[i]))
	}
	return out
}
