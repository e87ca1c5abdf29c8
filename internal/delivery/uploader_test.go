package delivery

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/internal/config"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTmpFilesUploader(t *testing.T) {
	var gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName, gotBody = header.Filename, string(data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"url":"https://tmpfiles.org/42/YouTube_1.mp4"}}`))
	}))
	defer srv.Close()

	path := writeVideo(t, 12)
	u := NewTmpFilesUploader(srv.URL, srv.Client(), time.Second)

	link, err := u.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://tmpfiles.org/42/YouTube_1.mp4", link)
	assert.Equal(t, "YouTube_1.mp4", gotName)
	assert.Equal(t, strings.Repeat("v", 12), gotBody)
}

func TestTmpFilesUploader_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"no url", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			_, _ = w.Write([]byte(`{"status":"error","data":{}}`))
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			_, _ = w.Write([]byte(`<html>`))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewTmpFilesUploader(srv.URL, srv.Client(), time.Second).
				Upload(context.Background(), writeVideo(t, 3))
			assert.ErrorIs(t, err, common.ErrTransferFailed)
		})
	}
}

func TestTmpFilesUploader_MissingFile(t *testing.T) {
	_, err := NewTmpFilesUploader("http://127.0.0.1:0", nil, time.Second).
		Upload(context.Background(), "/nonexistent/file.mp4")
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestS3Uploader_PresignedLink(t *testing.T) {
	u := NewS3Uploader(config.S3{
		Bucket:    "videos",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	}, 2*time.Hour, nil)
	u.now = func() time.Time { return time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC) }

	key := u.objectKey("/tmp/YouTube_1.mp4")
	assert.True(t, strings.HasPrefix(key, "videos/2025/03/07/"), key)
	assert.True(t, strings.HasSuffix(key, ".mp4"), key)

	link, err := u.presignGet(context.Background(), key)
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", parsed.Host)
	assert.Equal(t, "/videos/"+key, parsed.Path)
	assert.Equal(t, "7200", parsed.Query().Get("X-Amz-Expires"))
}
