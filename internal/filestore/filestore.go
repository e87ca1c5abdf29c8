// Package filestore отвечает за раскладку на диске: по каталогу на чат
// внутри корня хранилища, элементы <folderID>_<fileID><ext>, обложки
// <folderID>_cover<ext>.
package filestore

import (
	"FolderVaultBot/internal/common"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// ChatDir возвращает каталог чата, создавая его при необходимости.
func (s *Store) ChatDir(chatID int64) (string, error) {
	dir := filepath.Join(s.root, strconv.FormatInt(chatID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create chat dir %s: %v", common.ErrStorage, dir, err)
	}
	return dir, nil
}

// ItemBase: имя файла элемента папки без расширения.
func ItemBase(folderID, fileID uint) string {
	return fmt.Sprintf("%d_%d", folderID, fileID)
}

// CoverBase: имя файла обложки без расширения.
func CoverBase(folderID uint) string {
	return fmt.Sprintf("%d_cover", folderID)
}

func folderPrefix(folderID uint) string {
	return fmt.Sprintf("%d_", folderID)
}

// RemoveFolderArtifacts удаляет все файлы "<folderID>_*" в каталоге чата
// и возвращает их имена. После неудачного удаления продолжает и сообщает
// обо всех сбоях разом.
func (s *Store) RemoveFolderArtifacts(chatID int64, folderID uint) ([]string, error) {
	dir, err := s.ChatDir(chatID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrStorage, dir, err)
	}

	prefix := folderPrefix(folderID)
	var removed []string
	var failed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			failed = append(failed, fmt.Sprintf("%s: %v", e.Name(), err))
			continue
		}
		removed = append(removed, e.Name())
	}

	if len(failed) > 0 {
		return removed, fmt.Errorf("%w: remove artifacts: %s", common.ErrStorage, strings.Join(failed, "; "))
	}
	return removed, nil
}

// RemoveFiles удаляет файлы, лежащие прямо в каталоге чата. Пути вне
// каталога пропускаются и попадают в ошибку.
func (s *Store) RemoveFiles(chatID int64, paths []string) ([]string, error) {
	dir, err := s.ChatDir(chatID)
	if err != nil {
		return nil, err
	}

	var removed []string
	var failed []string
	for _, p := range paths {
		if p == "" || filepath.Dir(filepath.Clean(p)) != filepath.Clean(dir) {
			if p != "" {
				failed = append(failed, fmt.Sprintf("%s: outside chat dir", p))
			}
			continue
		}
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			failed = append(failed, fmt.Sprintf("%s: %v", filepath.Base(p), err))
			continue
		}
		removed = append(removed, filepath.Base(p))
	}

	if len(failed) > 0 {
		return removed, fmt.Errorf("%w: remove files: %s", common.ErrStorage, strings.Join(failed, "; "))
	}
	return removed, nil
}
