package database

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/internal/database/models"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// Repository даёт CRUD и поиск по папкам и их элементам.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NameExists проверяет, занято ли имя папки в чате.
func (r *Repository) NameExists(ctx context.Context, chatID int64, name string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Folder{}).
		Where("chat_id = ? AND folder_name = ?", chatID, name).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// CreateFolder сохраняет папку. Уникальность имени проверяется заранее,
// проверка и вставка не атомарны.
func (r *Repository) CreateFolder(ctx context.Context, folder *models.Folder) error {
	exists, err := r.NameExists(ctx, folder.ChatID, folder.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", common.ErrDuplicateName, folder.Name)
	}

	if err := r.db.WithContext(ctx).Create(folder).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", common.ErrDuplicateName, folder.Name)
		}
		return err
	}

	return nil
}

// ListByChat возвращает папки чата в порядке создания.
func (r *Repository) ListByChat(ctx context.Context, chatID int64) ([]models.Folder, error) {
	var folders []models.Folder
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("id ASC").Find(&folders)
	if result.Error != nil {
		return nil, result.Error
	}

	return folders, nil
}

func (r *Repository) FindByName(ctx context.Context, chatID int64, name string) (*models.Folder, error) {
	var folder models.Folder
	result := r.db.WithContext(ctx).Where("chat_id = ? AND folder_name = ?", chatID, name).First(&folder)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("folder %q: %w", name, common.ErrNotFound)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &folder, nil
}

// FindByID ищет папку с проверкой владельца: чужие папки не находятся.
func (r *Repository) FindByID(ctx context.Context, chatID int64, folderID uint) (*models.Folder, error) {
	var folder models.Folder
	result := r.db.WithContext(ctx).Where("chat_id = ? AND id = ?", chatID, folderID).First(&folder)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("folder %d: %w", folderID, common.ErrNotFound)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &folder, nil
}

// Search ищет подстроку без учёта регистра в имени, описании, тегах и
// текстовых элементах папок чата. Каждая папка попадает в результат один раз.
func (r *Repository) Search(ctx context.Context, chatID int64, query string) ([]models.Folder, error) {
	folders, err := r.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}

	var texts []models.FolderFile
	result := r.db.WithContext(ctx).
		Where("folder_id IN ? AND file_type = ?", ids, models.FileTypeText).
		Find(&texts)
	if result.Error != nil {
		return nil, result.Error
	}

	textsByFolder := make(map[uint][]string, len(folders))
	for _, t := range texts {
		textsByFolder[t.FolderID] = append(textsByFolder[t.FolderID], t.TextContent)
	}

	m := newMatcher(query)
	var found []models.Folder
	for _, f := range folders {
		if m.matchFolder(f, textsByFolder[f.ID]) {
			found = append(found, f)
		}
	}

	return found, nil
}

type matcher struct {
	fold  cases.Caser
	query string
}

func newMatcher(query string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, query: fold.String(query)}
}

func (m *matcher) contains(s string) bool {
	return s != "" && strings.Contains(m.fold.String(s), m.query)
}

func (m *matcher) matchFolder(f models.Folder, texts []string) bool {
	if m.contains(f.Name) || m.contains(f.Description) || m.contains(f.Tags) {
		return true
	}
	for _, t := range texts {
		if m.contains(t) {
			return true
		}
	}
	return false
}

// AddFile вставляет элемент папки и заполняет его ID.
func (r *Repository) AddFile(ctx context.Context, file *models.FolderFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *Repository) UpdateFilePath(ctx context.Context, fileID uint, path string) error {
	result := r.db.WithContext(ctx).Model(&models.FolderFile{}).
		Where("id = ?", fileID).
		Update("file_path", path)

	return result.Error
}

func (r *Repository) SetCoverPath(ctx context.Context, folderID uint, path string) error {
	result := r.db.WithContext(ctx).Model(&models.Folder{}).
		Where("id = ?", folderID).
		Update("cover_file_path", path)

	return result.Error
}

// ListFiles возвращает элементы папки в порядке добавления.
func (r *Repository) ListFiles(ctx context.Context, folderID uint) ([]models.FolderFile, error) {
	var files []models.FolderFile
	result := r.db.WithContext(ctx).Where("folder_id = ?", folderID).Order("id ASC").Find(&files)
	if result.Error != nil {
		return nil, result.Error
	}

	return files, nil
}

// DeleteFolder удаляет сначала элементы папки, затем саму папку.
// Файлы на диске удаляет вызывающий код.
func (r *Repository) DeleteFolder(ctx context.Context, folderID uint) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("folder_id = ?", folderID).Delete(&models.FolderFile{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", folderID).Delete(&models.Folder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("folder %d: %w", folderID, common.ErrNotFound)
	}

	return nil
}
