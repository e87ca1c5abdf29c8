package bot

import (
	"FolderVaultBot/internal/common"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxFolderNameLength  = 255
	MaxDescriptionLength = 1000
	MaxTagsLength        = 255
)

// Латиница, цифры, _, -, пробел, кириллица и арабское письмо.
var folderNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-\s\x{0400}-\x{04FF}\x{0600}-\x{06FF}]+$`)

// validateFolderName проверяет имя до любого обращения к базе.
func validateFolderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty folder name", common.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxFolderNameLength {
		return fmt.Errorf("%w: folder name longer than %d", common.ErrValidation, MaxFolderNameLength)
	}
	if !folderNamePattern.MatchString(name) {
		return fmt.Errorf("%w: folder name has forbidden characters", common.ErrValidation)
	}
	return nil
}

func validateText(text string, max int) error {
	if utf8.RuneCountInString(text) > max {
		return fmt.Errorf("%w: text longer than %d", common.ErrValidation, max)
	}
	return nil
}

// truncate обрезает строку до max рун, добавляя «...».
func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// clip обрезает без многоточия, для полей базы.
func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
