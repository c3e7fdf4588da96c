// Package gcs stores product images in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// ProductImageRepositoryGCS implements product.ImageStore.
// Objects are written publicly readable through the bucket's IAM policy;
// the returned URL is the storage.googleapis.com form.
type ProductImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
}

func NewProductImageRepositoryGCS(client *storage.Client, bucket string) *ProductImageRepositoryGCS {
	return &ProductImageRepositoryGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
	}
}

func (r *ProductImageRepositoryGCS) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("ProductImageRepositoryGCS: nil storage client")
	}
	if r.Bucket == "" {
		return "", errors.New("ProductImageRepositoryGCS: bucket is empty")
	}
	obj, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	if !isAllowedImageType(contentType) {
		return "", fmt.Errorf("ProductImageRepositoryGCS: unsupported content type %q", contentType)
	}

	w := r.Client.Bucket(r.Bucket).Object(obj).NewWriter(ctx)
	w.ContentType = contentType
	// same path is overwritten on edit
	w.CacheControl = "no-cache, max-age=0"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("ProductImageRepositoryGCS: write %s: %w", obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("ProductImageRepositoryGCS: close %s: %w", obj, err)
	}
	return PublicURL(r.Bucket, obj), nil
}
