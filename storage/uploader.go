package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — объектное хранилище для архивов снимков турниров.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	GetPublicURL(key string) string
}
