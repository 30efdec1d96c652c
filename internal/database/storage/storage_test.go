package storage

import (
	"context"
	"testing"
	"time"

	"github.com/GoArmGo/BlogApp/internal/database/client"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	c, err := client.NewSQLiteClient(":memory:", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c.Gorm
}

func mustCreateUser(t *testing.T, s *UserStorage, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "hash-" + username}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustSavePost(t *testing.T, s *PostStorage, author *domain.User, title string, published bool, at time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{
		Title:         title,
		Content:       "content of " + title,
		AuthorID:      author.ID,
		PublishedDate: at,
		IsPublished:   published,
	}
	require.NoError(t, s.SavePost(context.Background(), p))
	require.NotEqual(t, uuid.Nil, p.ID)
	return p
}
