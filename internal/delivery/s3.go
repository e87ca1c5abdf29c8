package delivery

import (
	"FolderVaultBot/internal/common"
	"FolderVaultBot/internal/config"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Uploader кладёт файл в S3-совместимое хранилище и отдаёт presigned
// GET-ссылку, которая истекает через ttl.
type S3Uploader struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

func NewS3Uploader(cfg config.S3, ttl time.Duration, httpClient *http.Client) *S3Uploader {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	if httpClient != nil {
		opts.HTTPClient = httpClient
	}

	client := s3.New(opts)
	return &S3Uploader{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ttl,
		now:     time.Now,
	}
}

// objectKey раскладывает объекты по датам, имя случайное.
func (u *S3Uploader) objectKey(path string) string {
	d := u.now()
	return fmt.Sprintf("videos/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), filepath.Ext(path))
}

func (u *S3Uploader) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", common.ErrStorage, path, err)
	}
	defer f.Close()

	key := u.objectKey(path)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%w: put object: %v", common.ErrTransferFailed, err)
	}

	return u.presignGet(ctx, key)
}

func (u *S3Uploader) presignGet(ctx context.Context, key string) (string, error) {
	req, err := u.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(u.ttl))
	if err != nil {
		return "", fmt.Errorf("%w: presign: %v", common.ErrTransferFailed, err)
	}
	return req.URL, nil
}
