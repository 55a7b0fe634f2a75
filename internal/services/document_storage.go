package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentStorage keeps user-uploaded statements and deeds in S3, one prefix
// per user.
type DocumentStorage struct {
	uploader *manager.Uploader
	bucket   string
}

func NewDocumentStorage(client *s3.Client, bucket string) *DocumentStorage {
	return &DocumentStorage{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}
}

// Save uploads one file and returns its object key. File names are sanitized
// and prefixed with a timestamp so repeated uploads never collide.
func (d *DocumentStorage) Save(ctx context.Context, userID string, filename string, body io.Reader) (string, error) {
	key := path.Join("documents", userID,
		fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(filename)))

	_, err := d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("upload document %s: %w", filename, err)
	}
	return key, nil
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range path.Base(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
