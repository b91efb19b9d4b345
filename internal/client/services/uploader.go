package services

import (
	"context"
	"io"
	"strings"

	"github.com/franckludovic/travelbuddy/internal/client/client"
)

// ImageUploader is the backend's multipart upload endpoint.
type ImageUploader interface {
	UploadImage(ctx context.Context, fileName string, r io.Reader) (*client.UploadResult, error)
}

// GatewayUploader sends assets through the backend's /upload endpoint when no
// object store is configured. The backend chooses the final location; the
// file is named after the whole key, flattened, so place and note photos
// with the same id never share a name.
type GatewayUploader struct {
	gw ImageUploader
}

func NewGatewayUploader(gw ImageUploader) *GatewayUploader {
	return &GatewayUploader{gw: gw}
}

func (u *GatewayUploader) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	res, err := u.gw.UploadImage(ctx, UploadFileName(key), r)
	if err != nil {
		return "", err
	}
	return res.ImageURL, nil
}

// UploadFileName flattens an object key into a single file name:
// "notes/3/photos/4.jpg" becomes "notes_3_photos_4.jpg".
func UploadFileName(key string) string {
	return strings.ReplaceAll(strings.Trim(key, "/"), "/", "_")
}
