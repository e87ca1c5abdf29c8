package models

import (
	"time"
)

// Folder это именованная коллекция элементов, принадлежащая одному чату.
// Пустые Description/Tags/PasswordHash/CoverFilePath означают «не задано».
type Folder struct {
	ID            uint   `gorm:"primaryKey"`
	ChatID        int64  `gorm:"not null;index:idx_chat_id;uniqueIndex:idx_chat_folder_name,priority:1"`
	Name          string `gorm:"column:folder_name;size:255;not null;uniqueIndex:idx_chat_folder_name,priority:2"`
	Description   string `gorm:"type:text"`
	Tags          string `gorm:"size:255"`
	PasswordHash  string `gorm:"size:255"`
	CoverFilePath string `gorm:"size:500"`
	CreatedAt     time.Time

	Files []FolderFile `gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}

func (Folder) TableName() string {
	return "folders"
}

func (f *Folder) HasPassword() bool {
	return f.PasswordHash != ""
}
