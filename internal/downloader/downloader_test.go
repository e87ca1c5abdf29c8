package downloader

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/internal/config"
	"FolderVaultBot/internal/logging"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner запоминает вызов и создаёт файлы вместо настоящей утилиты.
type fakeRunner struct {
	name    string
	args    []string
	calls   int
	produce func(output string)
	err     error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string) ([]byte, []byte, error) {
	f.calls++
	f.name = name
	f.args = args
	if f.produce != nil {
		f.produce(argAfter(args, "-o"))
	}
	return []byte("[download] 100%"), nil, f.err
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func newTestDownloader(run Runner) *Downloader {
	d := New(config.Downloader{
		YtDlpPath:   "bin/yt-dlp",
		FFmpegPath:  "bin/ffmpeg",
		SettleDelay: 5 * time.Second,
	}, run, logging.Discard())
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }
	d.sleep = func(context.Context, time.Duration) error { return nil }
	return d
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=abc",
		"http://youtube.com/shorts/xyz",
		"youtu.be/abc",
		"https://m.youtube.com/watch?v=1",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateURL(u), u)
	}

	invalid := []string{
		"",
		"https://vimeo.com/123",
		"https://youtube.com.evil.org/x",
		"https://www.youtube.com/",
		"https://youtube.com/watch?v=1; rm -rf /",
	}
	for _, u := range invalid {
		assert.ErrorIs(t, ValidateURL(u), common.ErrValidation, u)
	}
}

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("720p")
	require.NoError(t, err)
	assert.Equal(t, "bestvideo[height<=720]+bestaudio/best[height<=720]", f)

	again, _ := FormatFor("720p")
	assert.Equal(t, f, again)

	for _, q := range Qualities() {
		_, err := FormatFor(q)
		assert.NoError(t, err, q)
	}

	_, err = FormatFor("4k")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDownload_UnknownQualityNeverRuns(t *testing.T) {
	run := &fakeRunner{}
	d := newTestDownloader(run)

	_, err := d.Download(context.Background(), t.TempDir(), "https://youtu.be/abc", "999p")

	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, run.calls)
}

func TestDownload_Args(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{produce: func(out string) { writeFile(t, out, "video") }}
	d := newTestDownloader(run)

	res, err := d.Download(context.Background(), dir, "https://youtu.be/abc", "480p")
	require.NoError(t, err)

	assert.Equal(t, "bin/yt-dlp", run.name)
	assert.Equal(t, []string{
		"-f", "bestvideo[height<=480]+bestaudio/best[height<=480]",
		"-o", filepath.Join(dir, "YouTube_1700000000000.mp4"),
		"--ffmpeg-location", "bin/ffmpeg",
		"--no-part",
		"https://youtu.be/abc",
	}, run.args)

	assert.Equal(t, "YouTube_1700000000000", res.Base)
	assert.Equal(t, filepath.Join(dir, "YouTube_1700000000000.mp4"), res.Path)
	assert.EqualValues(t, 5, res.Size)
}

func TestDownload_FallsBackToWebm(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{produce: func(out string) {
		writeFile(t, out[:len(out)-len(".mp4")]+".webm", "webm")
	}}

	res, err := newTestDownloader(run).Download(context.Background(), dir, "youtu.be/x", "360p")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "YouTube_1700000000000.webm"), res.Path)
}

func TestDownload_DirectoryScanAndCleanup(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{produce: func(string) {
		writeFile(t, filepath.Join(dir, "YouTube_1700000000000.merged.mp4"), "final")
		writeFile(t, filepath.Join(dir, "YouTube_1700000000000.f137.mp4"), "fragment")
		writeFile(t, filepath.Join(dir, "YouTube_1700000000000.f251.webm.part"), "partial")
		writeFile(t, filepath.Join(dir, "7_1.jpg"), "other")
	}}

	res, err := newTestDownloader(run).Download(context.Background(), dir, "youtu.be/x", "1080p")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "YouTube_1700000000000.merged.mp4"), res.Path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"YouTube_1700000000000.merged.mp4", "7_1.jpg"}, names)
}

func TestDownload_ProducedNothing(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{produce: func(out string) {
		writeFile(t, out+".part", "partial")
	}}

	_, err := newTestDownloader(run).Download(context.Background(), dir, "youtu.be/x", "720p")

	require.ErrorIs(t, err, common.ErrDownloadProducedNothing)
	assert.ErrorIs(t, err, common.ErrExternalService)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "leftovers are removed on failure too")
}

func TestDownload_ProcessFailure(t *testing.T) {
	run := &fakeRunner{err: errors.New("exit status 1")}

	_, err := newTestDownloader(run).Download(context.Background(), t.TempDir(), "youtu.be/x", "720p")
	assert.ErrorIs(t, err, common.ErrExternalService)
}

func TestDownload_WaitsSettleDelay(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{produce: func(out string) { writeFile(t, out, "v") }}
	d := newTestDownloader(run)

	var waited time.Duration
	d.sleep = func(_ context.Context, delay time.Duration) error {
		waited = delay
		return nil
	}

	_, err := d.Download(context.Background(), dir, "youtu.be/x", "720p")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, waited)
}

func TestEnsureBinaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#!/bin/sh\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "ffmpeg")
	writeFile(t, existing, "bin")

	d := New(config.Downloader{
		YtDlpPath:  filepath.Join(dir, "tools", "yt-dlp"),
		YtDlpURL:   srv.URL + "/yt-dlp",
		FFmpegPath: existing,
	}, nil, logging.Discard())

	require.NoError(t, d.EnsureBinaries(context.Background(), srv.Client()))

	for _, p := range []string{d.cfg.YtDlpPath, existing} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.NotZero(t, info.Mode().Perm()&0o100, p)
	}
}

func TestEnsureBinaries_MissingWithoutURL(t *testing.T) {
	d := New(config.Downloader{
		YtDlpPath:  filepath.Join(t.TempDir(), "yt-dlp"),
		FFmpegPath: filepath.Join(t.TempDir(), "ffmpeg"),
	}, nil, logging.Discard())

	err := d.EnsureBinaries(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
