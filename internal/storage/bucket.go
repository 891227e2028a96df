package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/edukita/edukita-backend/internal/logger"
)

// BucketService is the object-store client. Keys are the authoritative handle
// for stored binaries; public URLs are derived from the key.
type BucketService interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error
	DeleteFile(ctx context.Context, key string) error
	// DeleteFiles removes every key, skipping objects that are already gone.
	// It stops at the first real failure.
	DeleteFiles(ctx context.Context, keys []string) error
	GetPublicURL(key string) string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *gcs.Client
	bucketName    string
	cdnDomain     string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")
	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET_NAME")
	}
	cdnDomain := os.Getenv("CDN_DOMAIN")
	saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	if saPath == "" {
		serviceLog.Warn("GOOGLE_APPLICATION_CREDENTIALS_JSON not set, storage client will rely on ADC")
	}
	ctx := context.Background()
	var stClient *gcs.Client
	var err error
	if saPath != "" {
		stClient, err = gcs.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(gcs.ScopeReadWrite))
	} else {
		stClient, err = gcs.NewClient(ctx, option.WithScopes(gcs.ScopeReadWrite))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    bucket,
		cdnDomain:     cdnDomain,
	}, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer for object %q: %w", key, err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	o := bs.storageClient.Bucket(bs.bucketName).Object(key)
	if err := o.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

func (bs *bucketService) DeleteFiles(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := bs.DeleteFile(ctx, key); err != nil {
			if IsNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func (bs *bucketService) GetPublicURL(key string) string {
	if bs.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", bs.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}

// IsNotFound reports whether err means the object is already gone. Deleting a
// missing object is treated as success by callers that only care the blob no
// longer exists.
func IsNotFound(err error) bool {
	return errors.Is(err, gcs.ErrObjectNotExist)
}
