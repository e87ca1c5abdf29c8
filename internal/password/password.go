// Package password хэширует и проверяет пароли папок через bcrypt.
package password

import (
	"FolderVaultBot/internal/common"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength: самый короткий пароль, который принимают сцены.
	MinLength = 4
	// MaxLength ограничивает ввод в символах, а не в байтах.
	MaxLength = 128
)

type Hasher struct {
	cost int
}

// NewHasher возвращает Hasher с заданной стоимостью bcrypt, приведённой
// к допустимому диапазону.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Validate проверяет длину пароля в символах.
func Validate(secret string) error {
	n := utf8.RuneCountInString(secret)
	if n < MinLength {
		return fmt.Errorf("%w: password shorter than %d", common.ErrValidation, MinLength)
	}
	if n > MaxLength {
		return fmt.Errorf("%w: password longer than %d", common.ErrValidation, MaxLength)
	}
	return nil
}

// prehash сводит пароль к 44 байтам: bcrypt не принимает больше 72 байт,
// а кириллический пароль доходит до предела уже на 37 символах.
func prehash(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (h *Hasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify сообщает, подходит ли пароль к хэшу. Битый хэш не подходит никогда.
func (h *Hasher) Verify(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(secret))
	return err == nil
}
