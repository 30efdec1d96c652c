package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post представляет запись блога,
// соответствует таблице posts в бд.
// Автор хранится как ссылка на users.id, имя пользователя подтягивается
// только при отдаче поста клиенту (ассоциация Author).
type Post struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title         string    `json:"title" gorm:"size:100;not null"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	AuthorID      uuid.UUID `json:"author_id" gorm:"type:uuid;not null;index"`
	Author        *User     `json:"-" gorm:"foreignKey:AuthorID"`
	PublishedDate time.Time `json:"published_date" gorm:"not null;index"`
	IsPublished   bool      `json:"is_published" gorm:"not null"`
	Category      *string   `json:"category,omitempty" gorm:"size:50"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// OwnedBy сообщает, является ли пользователь автором поста.
func (p *Post) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && p.AuthorID == userID
}

// VisibleTo: опубликованный пост виден всем, черновик только автору.
func (p *Post) VisibleTo(userID uuid.UUID) bool {
	return p.IsPublished || p.OwnedBy(userID)
}

// AuthorName возвращает имя автора, если ассоциация загружена.
func (p *Post) AuthorName() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Username
}

// PostInput содержит поля, которые автор передаёт при создании поста.
type PostInput struct {
	Title    string
	Content  string
	Category string
}

// Normalize обрезает пробелы в заголовке и категории и проверяет поля.
// Текст поста остаётся как есть.
func (in PostInput) Normalize() (PostInput, error) {
	title, err := NormalizeTitle(in.Title)
	if err != nil {
		return PostInput{}, err
	}
	if err := ValidateContent(in.Content); err != nil {
		return PostInput{}, err
	}
	category, err := NormalizeCategory(in.Category)
	if err != nil {
		return PostInput{}, err
	}
	return PostInput{Title: title, Content: in.Content, Category: category}, nil
}

// CategoryPtr возвращает nil для пустой категории.
func (in PostInput) CategoryPtr() *string {
	if in.Category == "" {
		return nil
	}
	c := in.Category
	return &c
}
