package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/edukita/edukita-backend/internal/storage"
	"github.com/edukita/edukita-backend/internal/types"
)

// UploadedFile carries one multipart upload from the handler layer into a
// content service.
type UploadedFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

const (
	assetPrefixImage   = "image"
	assetPrefixArticle = "article"
)

func newAssetKey(prefix, filename string) string {
	return fmt.Sprintf("%s/%s-%s", prefix, uuid.New().String(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	return strings.ToLower(name)
}

func uploadAsset(ctx context.Context, bucket storage.BucketService, prefix string, f *UploadedFile) (types.AssetRef, error) {
	key := newAssetKey(prefix, f.Name)
	if err := bucket.UploadFile(ctx, key, f.Reader, f.ContentType); err != nil {
		return types.AssetRef{}, fmt.Errorf("failed to upload %q: %w", f.Name, err)
	}
	return types.AssetRef{
		Path: key,
		URL:  bucket.GetPublicURL(key),
	}, nil
}

// replaceAsset removes the old object before uploading its replacement. A
// failed delete aborts the replacement and leaves the old asset untouched.
// If the upload fails after a successful delete the record is left pointing
// at a removed object; the caller surfaces that as an error without trying
// to repair it.
func replaceAsset(ctx context.Context, bucket storage.BucketService, old types.AssetRef, prefix string, f *UploadedFile) (types.AssetRef, error) {
	if old.Path != "" {
		if err := bucket.DeleteFile(ctx, old.Path); err != nil && !storage.IsNotFound(err) {
			return types.AssetRef{}, fmt.Errorf("failed to delete old asset %q: %w", old.Path, err)
		}
	}
	return uploadAsset(ctx, bucket, prefix, f)
}
