package models

import (
	dbmodels "FolderVaultBot/internal/database/models"
)

// FileRef: ссылка на удалённый файл и то, что о нём заявил отправитель.
type FileRef struct {
	FileID   string
	Size     int64
	MimeType string
}

// Attachment описывает входящий элемент, текст или один из семи видов медиа.
// Для текста Ref пустой, для медиа пустой Text.
type Attachment struct {
	Type dbmodels.FileType
	Ref  FileRef
	Text string
}

func (a Attachment) IsText() bool {
	return a.Type == dbmodels.FileTypeText
}

// TextAttachment оборачивает текстовый элемент.
func TextAttachment(text string) Attachment {
	return Attachment{Type: dbmodels.FileTypeText, Text: text}
}
