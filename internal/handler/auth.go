package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/BlogApp/internal/metrics"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

// AuthHandler — регистрация, вход и выход.
type AuthHandler struct {
	accounts usecase.AccountUseCase
	sessions *SessionManager
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewAuthHandler(accounts usecase.AccountUseCase, sessions *SessionManager, m *metrics.Metrics, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
	}
}

// Register — POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid register request", "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, newUserResponse(user), h.logger)
}

// Login — POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.logger.Warn("invalid login request", "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	h.metrics.ObserveAuthAttempt(user != nil, err)
	if err != nil {
		respondWithDomainError(w, err, h.logger)
		return
	}
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Неверное имя пользователя или пароль", h.logger)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		h.logger.Error("failed to save session", "user_id", user.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(user), h.logger)
}

// Logout — POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Error("failed to clear session", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me — GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, newUserResponse(CurrentUser(r.Context())), h.logger)
}
