package models

import (
	"html"
	"strings"
	"taskhub/internal/domain/errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	DateLayout        = "2006-01-02"
)

// HashPassword проверяет длину пароля до хеширования: правило действует
// для любого пути создания или обновления пользователя.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", errors.ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword возвращает false и для неверного пароля, и для
// повреждённого хеша.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func SanitizeEmail(email string) string {
	return html.EscapeString(strings.TrimSpace(email))
}

func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, errors.ErrInvalidDate
	}
	return parsed, nil
}
