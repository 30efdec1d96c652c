package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// memStore - хранилище пользователей и постов в памяти для тестов сценариев
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
	posts map[uuid.UUID]domain.Post
	err   error
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[uuid.UUID]domain.User),
		posts: make(map[uuid.UUID]domain.Post),
	}
}

func (s *memStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *memStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

// withAuthor копирует пост и подставляет автора, как это делает Preload
func (s *memStore) withAuthor(p domain.Post) domain.Post {
	if u, ok := s.users[p.AuthorID]; ok {
		p.Author = &u
	}
	return p
}

func (s *memStore) SavePost(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	stored := *post
	stored.Author = nil
	s.posts[post.ID] = stored
	return nil
}

func (s *memStore) GetPostByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	p = s.withAuthor(p)
	return &p, nil
}

func (s *memStore) list(keep func(domain.Post) bool) []domain.Post {
	out := []domain.Post{}
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, s.withAuthor(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedDate.After(out[j].PublishedDate)
	})
	return out
}

func (s *memStore) ListPublishedPosts(context.Context) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.list(func(p domain.Post) bool { return p.IsPublished }), nil
}

func (s *memStore) ListPostsByAuthor(_ context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.list(func(p domain.Post) bool { return p.AuthorID == authorID }), nil
}

func (s *memStore) UpdatePost(_ context.Context, id uuid.UUID, mutate ports.PostMutation) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	work := s.withAuthor(p)
	if err := mutate(&work); err != nil {
		return nil, err
	}
	p.Title = work.Title
	p.Content = work.Content
	s.posts[id] = p
	out := s.withAuthor(p)
	return &out, nil
}

func (s *memStore) DeletePost(_ context.Context, id uuid.UUID, check ports.PostMutation) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := s.withAuthor(p)
	if err := check(&out); err != nil {
		return nil, err
	}
	delete(s.posts, id)
	return &out, nil
}

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	mu     sync.Mutex
	events []payloads.PostEvent
	err    error
}

func (p *recordingPublisher) PublishPostEvent(_ context.Context, event payloads.PostEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []payloads.PostEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]payloads.PostEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// memFileStorage - объектное хранилище в памяти
type memFileStorage struct {
	objects     map[string][]byte
	contentType map[string]string
	failUpload  bool
}

func newMemFileStorage() *memFileStorage {
	return &memFileStorage{
		objects:     make(map[string][]byte),
		contentType: make(map[string]string),
	}
}

func (m *memFileStorage) UploadFile(_ context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if m.failUpload {
		return "", errors.New("upload failed")
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[key] = b
	m.contentType[key] = contentType
	return "http://archive.local/" + key, nil
}

func (m *memFileStorage) DeleteFile(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}
