// Package imagehost talks to the S3-compatible bucket (Cloudflare R2) that
// stores post and profile images.
package imagehost

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindPost    Kind = "post"
	KindProfile Kind = "profile"
)

const PresignExpiry = time.Hour

// Size limits in bytes
var maxSize = map[Kind]int64{
	KindPost:    10 * 1024 * 1024,
	KindProfile: 5 * 1024 * 1024,
}

var allowedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic"}

type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

type Host interface {
	PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	PublicURL(key string) string
}

func ValidContentType(contentType string) bool {
	for _, t := range allowedTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

func ValidSize(kind Kind, size int64) bool {
	limit, ok := maxSize[kind]
	return ok && size > 0 && size <= limit
}

// NewKey builds uploads/{kind}/{userID}/{unix}_{uuid}{ext}.
func NewKey(kind Kind, userID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("uploads/%s/%s/%d_%s%s", kind, userID, time.Now().Unix(), uuid.NewString(), ext)
}

// OwnedBy reports whether key was issued to userID for kind.
func OwnedBy(key string, kind Kind, userID string) bool {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != "uploads" {
		return false
	}
	return parts[1] == string(kind) && parts[2] == userID && parts[3] != ""
}

// NoopHost is used when no bucket is configured. Every key exists and
// deletes succeed.
type NoopHost struct {
	BaseURL string
}

func (h NoopHost) PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error) {
	return &PresignedUpload{
		UploadURL: h.PublicURL(key),
		FileURL:   h.PublicURL(key),
		Key:       key,
		ExpiresIn: int(PresignExpiry.Seconds()),
	}, nil
}

func (h NoopHost) Exists(ctx context.Context, key string) (bool, error) { return true, nil }

func (h NoopHost) Delete(ctx context.Context, keys ...string) error { return nil }

func (h NoopHost) PublicURL(key string) string {
	return strings.TrimSuffix(h.BaseURL, "/") + "/" + key
}
