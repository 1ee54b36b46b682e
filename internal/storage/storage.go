package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix is the key namespace every media object lives under.
const Prefix = "media/"

var ErrObjectNotFound = errors.New("object not found")

// MediaHost is the remote object store capability the media lifecycle consumes.
type MediaHost interface {
	// Upload stores bytes under key
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*Object, error)

	// Delete removes key. A missing key yields ErrObjectNotFound or nil;
	// callers treat both as gone.
	Delete(ctx context.Context, key string) error

	// Stat returns metadata for key, or ErrObjectNotFound
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// SignUpload authorizes a direct client upload to key
	SignUpload(ctx context.Context, key, contentType string) (*SignedUpload, error)

	// List walks every object under prefix
	List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error

	// URL returns the public URL for key
	URL(key string) string
}

type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

type SignedUpload struct {
	Key       string            `json:"storageId"`
	UploadURL string            `json:"uploadUrl"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// NewKey generates a unique object key for an upload in folder.
func NewKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return Prefix + path.Join(CleanFolder(folder), uuid.New().String()+ext)
}

// CleanFolder reduces a client-supplied folder to a single safe path segment.
func CleanFolder(folder string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(folder)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "misc"
	}
	return b.String()
}

// OwnsKey reports whether key was issued by NewKey.
func OwnsKey(key string) bool {
	return strings.HasPrefix(key, Prefix) && !strings.Contains(key, "..")
}
