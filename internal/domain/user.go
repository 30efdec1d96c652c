package domain

import (
	"time"

	"github.com/google/uuid"
)

// User представляет учётную запись автора блога.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" gorm:"size:80;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:120;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
