package domain

import (
	"errors"
	"fmt"
)

// Ошибки доменного уровня. Проверять через errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
)

// InvalidInput оборачивает ErrInvalidInput с пояснением, какое поле не прошло проверку.
func InvalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}
