package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName   = "blogapp_session"
	sessionUserID = "user_id"
)

// SessionManager хранит ID пользователя в подписанной cookie.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager создаёт cookie-хранилище сессий.
func NewSessionManager(secret string, maxAge time.Duration, secure bool) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Login записывает пользователя в сессию. Прежние значения сессии удаляются.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	session, _ := m.store.Get(r, sessionName)
	for k := range session.Values {
		delete(session.Values, k)
	}
	session.Values[sessionUserID] = userID.String()
	return session.Save(r, w)
}

// Logout удаляет cookie сессии.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID возвращает ID из сессии или uuid.Nil, если сессии нет или cookie повреждена.
func (m *SessionManager) UserID(r *http.Request) uuid.UUID {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return uuid.Nil
	}
	raw, ok := session.Values[sessionUserID].(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
