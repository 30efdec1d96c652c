package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/database/client"
	"github.com/GoArmGo/BlogApp/internal/database/storage"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/metrics"
	"github.com/GoArmGo/BlogApp/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	db     *client.Client
	posts  *storage.PostStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Discard()
	db, err := client.NewSQLiteClient(":memory:", log)
	require.NoError(t, err)

	users := storage.NewUserStorage(db.Gorm, log)
	posts := storage.NewPostStorage(db.Gorm, log)

	router := NewRouter(RouterDeps{
		Accounts:       usecase.NewAccountUseCase(users, log),
		Posts:          usecase.NewPostUseCase(posts, users, ports.NopPublisher{}, log),
		Sessions:       NewSessionManager("test-secret-test-secret-test-sec", time.Hour, false),
		Metrics:        metrics.New(),
		Health:         db,
		Logger:         log,
		RequestTimeout: 5 * time.Second,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = db.Close()
	})
	return &testEnv{server: srv, db: db, posts: posts}
}

// newBrowser — клиент со своей cookie-сессией
func (e *testEnv) newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (e *testEnv) signUp(t *testing.T, username, password string) *http.Client {
	t.Helper()
	c := e.newBrowser(t)
	resp, _ := e.do(t, c, http.MethodPost, "/api/register", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = e.do(t, c, http.MethodPost, "/api/login", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return c
}

func decodePost(t *testing.T, body []byte) postResponse {
	t.Helper()
	var p postResponse
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func decodePosts(t *testing.T, body []byte) []postResponse {
	t.Helper()
	var ps []postResponse
	require.NoError(t, json.Unmarshal(body, &ps))
	return ps
}

func TestAPI_Scenario(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signUp(t, "alice", "pw1")

	resp, body := env.do(t, alice, http.MethodPost, "/api/posts", map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodePost(t, body)
	assert.Equal(t, "alice", created.Author)
	assert.True(t, created.IsPublished)

	anon := env.newBrowser(t)
	resp, body = env.do(t, anon, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodePosts(t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "T", list[0].Title)
	assert.Equal(t, "alice", list[0].Author)

	bob := env.signUp(t, "bob", "pw2")
	resp, _ = env.do(t, bob, http.MethodPut, "/api/posts/"+created.ID.String(), map[string]string{"title": "X", "content": "Y"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, bob, http.MethodDelete, "/api/posts/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, alice, http.MethodPut, "/api/posts/"+created.ID.String(), map[string]string{"title": "T2", "content": "C2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "T2", decodePost(t, body).Title)
	assert.Equal(t, "C2", decodePost(t, body).Content)

	resp, body = env.do(t, anon, http.MethodGet, "/api/posts/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodePost(t, body)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, "C2", got.Content)
	assert.True(t, got.PublishedDate.Equal(created.PublishedDate))

	resp, _ = env.do(t, alice, http.MethodDelete, "/api/posts/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, alice, http.MethodDelete, "/api/posts/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, anon, http.MethodGet, "/api/posts/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_RegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	c := env.newBrowser(t)

	resp, _ := env.do(t, c, http.MethodPost, "/api/register", map[string]string{"username": "", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, c, http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = env.do(t, c, http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_RegisterTooLongInput(t *testing.T) {
	env := newTestEnv(t)
	c := env.newBrowser(t)

	resp, body := env.do(t, c, http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "password")

	resp, _ = env.do(t, c, http.MethodPost, "/api/register", map[string]string{"username": strings.Repeat("a", 81), "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_PostFieldLengthLimits(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signUp(t, "alice", "pw1")

	resp, body := env.do(t, alice, http.MethodPost, "/api/posts", map[string]string{"title": strings.Repeat("t", 500), "content": "C"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "title")

	resp, _ = env.do(t, alice, http.MethodPost, "/api/posts", map[string]string{"title": "T", "content": "C", "category": strings.Repeat("c", 51)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, alice, http.MethodPost, "/api/posts", map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodePost(t, body)

	resp, _ = env.do(t, alice, http.MethodPut, "/api/posts/"+created.ID.String(), map[string]string{"title": strings.Repeat("t", 101), "content": "C"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, env.newBrowser(t), http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodePosts(t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "T", list[0].Title)
}

func TestAPI_LoginFailureAndLogout(t *testing.T) {
	env := newTestEnv(t)
	_ = env.signUp(t, "alice", "pw1")

	c := env.newBrowser(t)
	resp, _ := env.do(t, c, http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, c, http.MethodPost, "/api/login", map[string]string{"username": "ghost", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, c, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, c, http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, c, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me userResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "alice", me.Username)
	assert.NotContains(t, string(body), "password")

	resp, _ = env.do(t, c, http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, c, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_ProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	c := env.newBrowser(t)

	resp, _ := env.do(t, c, http.MethodPost, "/api/posts", map[string]string{"title": "T", "content": "C"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, c, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CreateValidationAndFormBody(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signUp(t, "alice", "pw1")

	resp, body := env.do(t, alice, http.MethodPost, "/api/posts", map[string]string{"title": "   ", "content": "C"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "title")

	form := url.Values{"title": {"Form title"}, "content": {"Form body"}, "category": {"notes"}}
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/posts", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	formResp, err := alice.Do(req)
	require.NoError(t, err)
	defer formResp.Body.Close()
	require.Equal(t, http.StatusCreated, formResp.StatusCode)

	var created postResponse
	require.NoError(t, json.NewDecoder(formResp.Body).Decode(&created))
	assert.Equal(t, "Form title", created.Title)
	require.NotNil(t, created.Category)
	assert.Equal(t, "notes", *created.Category)
}

func TestAPI_DraftVisibleOnlyToAuthor(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signUp(t, "alice", "pw1")
	bob := env.signUp(t, "bob", "pw2")

	resp, body := env.do(t, alice, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me userResponse
	require.NoError(t, json.Unmarshal(body, &me))

	// черновики создаются только напрямую через хранилище
	draft := &domain.Post{
		Title:         "draft",
		Content:       "wip",
		AuthorID:      me.ID,
		PublishedDate: time.Now().UTC(),
		IsPublished:   false,
	}
	require.NoError(t, env.posts.SavePost(context.Background(), draft))
	path := "/api/posts/" + draft.ID.String()

	resp, _ = env.do(t, alice, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, bob, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, env.newBrowser(t), http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodePosts(t, body))

	resp, body = env.do(t, alice, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decodePosts(t, body)
	require.Len(t, mine, 1)
	assert.False(t, mine[0].IsPublished)
}

func TestAPI_InvalidPostID(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, env.newBrowser(t), http.MethodGet, "/api/posts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	c := env.newBrowser(t)

	resp, body := env.do(t, c, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")

	resp, body = env.do(t, c, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_latency_seconds")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_Unavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(failingPinger{}, logger.Discard()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRespondWithDomainError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.InvalidInput("title is required"), http.StatusBadRequest},
		{domain.ErrDuplicateUsername, http.StatusConflict},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		respondWithDomainError(rec, tc.err, logger.Discard())
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}

	rec := httptest.NewRecorder()
	respondWithDomainError(rec, errors.New("pq: password authentication failed"), logger.Discard())
	assert.NotContains(t, rec.Body.String(), "pq:")
}
