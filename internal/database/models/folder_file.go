package models

type FileType string

const (
	FileTypeDocument  FileType = "document"
	FileTypePhoto     FileType = "photo"
	FileTypeVideo     FileType = "video"
	FileTypeAnimation FileType = "animation"
	FileTypeAudio     FileType = "audio"
	FileTypeVoice     FileType = "voice"
	FileTypeSticker   FileType = "sticker"
	FileTypeText      FileType = "text"
)

// PendingPath: путь-заглушка до завершения загрузки файла.
const PendingPath = "pending"

// IsVisual: фото и видео уходят пачками media group.
func (t FileType) IsVisual() bool {
	return t == FileTypePhoto || t == FileTypeVideo
}

// FolderFile описывает элемент папки, файл на диске или текст.
type FolderFile struct {
	ID          uint     `gorm:"primaryKey"`
	FolderID    uint     `gorm:"not null;index:idx_folder_id"`
	FilePath    string   `gorm:"size:500;not null"`
	FileType    FileType `gorm:"size:50;not null"`
	TextContent string   `gorm:"type:text"`
}

func (FolderFile) TableName() string {
	return "folder_files"
}
