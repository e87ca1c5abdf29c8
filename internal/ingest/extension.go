package ingest

import (
	dbmodels "FolderVaultBot/internal/database/models"
	"strings"
)

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
}

var typeExtensions = map[dbmodels.FileType]string{
	dbmodels.FileTypeAnimation: ".mp4",
	dbmodels.FileTypeVideo:     ".mp4",
	dbmodels.FileTypePhoto:     ".jpg",
	dbmodels.FileTypeAudio:     ".mp3",
	dbmodels.FileTypeVoice:     ".ogg",
	dbmodels.FileTypeSticker:   ".webp",
}

const fallbackExtension = ".bin"

// Extension выбирает расширение: известный MIME-тип важнее всего, затем
// тип элемента, затем общее двоичное расширение.
func Extension(mimeType string, fileType dbmodels.FileType) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := mimeExtensions[mt]; ok {
		return ext
	}
	if ext, ok := typeExtensions[fileType]; ok {
		return ext
	}
	return fallbackExtension
}
