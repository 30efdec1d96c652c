package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/metrics"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PostHandler — обработчик HTTP-запросов для работы с постами.
type PostHandler struct {
	posts   usecase.PostUseCase
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewPostHandler создаёт новый экземпляр PostHandler.
func NewPostHandler(posts usecase.PostUseCase, m *metrics.Metrics, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:   posts,
		metrics: m,
		logger:  logger,
	}
}

func (h *PostHandler) postID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn("invalid post id", "id", raw, "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректный id поста", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// ListPublished — GET /api/posts
func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPostListResponse(posts), h.logger)
}

// Get — GET /api/posts/{id}. Черновик виден только автору, остальным 404.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}
	if !post.VisibleTo(currentUserID(r.Context())) {
		respondWithDomainError(w, domain.ErrNotFound, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, newPostResponse(post), h.logger)
}

// Dashboard — GET /api/dashboard, все посты текущего пользователя.
func (h *PostHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	posts, err := h.posts.ListByAuthor(r.Context(), user.Username)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPostListResponse(posts), h.logger)
}

// Create — POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid create post request", "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	user := CurrentUser(r.Context())
	post, err := h.posts.Create(r.Context(), user.ID, domain.PostInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	h.metrics.ObservePostOperation("create", err)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("post created", "post_id", post.ID, "user_id", user.ID)
	respondWithJSON(w, http.StatusCreated, newPostResponse(post), h.logger)
}

// Update — PUT /api/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	var req updatePostRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid update post request", "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	user := CurrentUser(r.Context())
	post, err := h.posts.Update(r.Context(), id, user.ID, req.Title, req.Content)
	h.metrics.ObservePostOperation("update", err)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("post updated", "post_id", post.ID, "user_id", user.ID)
	respondWithJSON(w, http.StatusOK, newPostResponse(post), h.logger)
}

// Delete — DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	user := CurrentUser(r.Context())
	err := h.posts.Delete(r.Context(), id, user.ID)
	h.metrics.ObservePostOperation("delete", err)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("post deleted", "post_id", id, "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
