package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Ограничения совпадают с размерами колонок в миграциях и gorm-тегах.
const (
	MaxUsernameLength = 80
	MaxTitleLength    = 100
	MaxCategoryLength = 50

	// bcrypt не принимает пароли длиннее 72 байт
	MaxPasswordBytes = 72
)

// NormalizeUsername обрезает пробелы и проверяет длину имени в символах.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", InvalidInput("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", InvalidInput(fmt.Sprintf("username must be at most %d characters", MaxUsernameLength))
	}
	return username, nil
}

// ValidatePassword проверяет пароль как есть, без обрезки пробелов.
func ValidatePassword(password string) error {
	if password == "" {
		return InvalidInput("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return InvalidInput(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// NormalizeTitle обрезает пробелы и проверяет длину заголовка в символах.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", InvalidInput("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", InvalidInput(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	return title, nil
}

// ValidateContent отвергает пустой текст. Сам текст сохраняется без изменений.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return InvalidInput("content is required")
	}
	return nil
}

// NormalizeCategory обрезает пробелы, пустая категория допустима.
func NormalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return "", InvalidInput(fmt.Sprintf("category must be at most %d characters", MaxCategoryLength))
	}
	return category, nil
}
