package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash сравнивается с паролем, когда пользователь не найден,
// чтобы обе ветки отказа стоили одно сравнение bcrypt.
var dummyHash = mustHash("blogapp-dummy-password")

func mustHash(p string) []byte {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return b
}

// HashPassword возвращает соленый bcrypt-хеш пароля.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword сравнивает пароль с хешем за постоянное время.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckDummy тратит столько же времени, сколько CheckPassword, и всегда возвращает false.
func CheckDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return false
}
