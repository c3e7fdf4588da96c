package gcs

import (
	"errors"
	"fmt"
	"strings"
)

// PublicURL builds a public GCS URL.
func PublicURL(bucket, objectPath string) string {
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", strings.TrimSpace(bucket), obj)
}

// cleanObjectPath sanitizes every segment of p and rejects empty results.
func cleanObjectPath(p string) (string, error) {
	parts := strings.Split(strings.TrimSpace(p), "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = sanitizePathSegment(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return "", errors.New("gcs: object path is empty")
	}
	return strings.Join(out, "/"), nil
}

// sanitizePathSegment normalizes a path segment for GCS object paths.
// - removes separators
// - trims dots/spaces
func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Trim(s, ". ")
	return s
}

func isAllowedImageType(mime string) bool {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}
