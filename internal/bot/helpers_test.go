package bot

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/internal/config"
	"FolderVaultBot/internal/ingest"
	"FolderVaultBot/internal/logging"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFolderName(t *testing.T) {
	valid := []string{"Trip", "Отпуск 2024", "my_folder-1", "مجلد"}
	for _, name := range valid {
		assert.NoError(t, validateFolderName(name), name)
	}

	invalid := []string{"", "   ", "Trip!", "a/b", "../etc", "名前", strings.Repeat("a", MaxFolderNameLength+1)}
	for _, name := range invalid {
		assert.ErrorIs(t, validateFolderName(name), common.ErrValidation, name)
	}
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, validateText(strings.Repeat("ж", 4000), 4000))
	assert.ErrorIs(t, validateText(strings.Repeat("ж", 4001), 4000), common.ErrValidation)
}

func TestTruncateAndClip(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abc", 2))
	assert.Equal(t, "пр...", truncate("привет", 2))
	assert.Equal(t, "пр", clip("привет", 2))
	assert.Equal(t, "abc", clip("abc", 10))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `a\.b \(c\) \\ \_x\_`, escapeMarkdown(`a.b (c) \ _x_`))
}

func TestTruncateMarkdown(t *testing.T) {
	assert.Equal(t, "short", truncateMarkdown("short", 10))
	assert.Equal(t, `abc\.\.\.`, truncateMarkdown("abcdef", 3))

	// обрезка не должна оставить висящий обратный слэш
	assert.Equal(t, `ab\.\.\.`, truncateMarkdown(`ab\.cd`, 3))
	assert.Equal(t, `a\\\.\.\.`, truncateMarkdown(`a\\bcd`, 3))
}

func TestParseCallback(t *testing.T) {
	action, id, err := parseCallback("DETAILS_12")
	require.NoError(t, err)
	assert.Equal(t, CallbackDetails, action)
	assert.Equal(t, uint(12), id)

	action, id, err = parseCallback("DELETE_3")
	require.NoError(t, err)
	assert.Equal(t, CallbackDelete, action)
	assert.Equal(t, uint(3), id)

	for _, bad := range []string{"", "DETAILS_", "ADD_x", "SHARE_0", "RENAME_1", "DELETE_-1"} {
		_, _, err := parseCallback(bad)
		assert.ErrorIs(t, err, common.ErrValidation, bad)
	}
}

func TestUserMessage(t *testing.T) {
	b := newHarness(t).bot
	assert.Contains(t, b.userMessage(common.ErrDuplicateName), "уже существует")
	assert.Contains(t, b.userMessage(common.ErrDownloadProducedNothing), "файл не найден")
	assert.Contains(t, b.userMessage(common.ErrTransferFailed), "передать")
	assert.Contains(t, b.userMessage(errPanic), "непредвиденная")
	assert.Contains(t, b.userMessage(common.ErrTooLarge), "20 МБ")
}

func TestUserMessage_TooLargeFollowsConfiguredLimit(t *testing.T) {
	b := New(Deps{
		Ingest: ingest.New(nil, nil, nil, 5*config.MiB, logging.Discard()),
		Log:    logging.Discard(),
	})
	defer b.Close()

	assert.Contains(t, b.userMessage(fmt.Errorf("photo: %w", common.ErrTooLarge)), "5 МБ")
	assert.NotContains(t, b.userMessage(common.ErrTooLarge), "20")
}
