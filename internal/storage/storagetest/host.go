// Package storagetest provides an in-memory MediaHost for tests.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/templui/showcase/internal/storage"
)

// ErrUnavailable is the default injected remote failure.
var ErrUnavailable = errors.New("media host unavailable")

// Host keeps objects in memory. Failures can be injected per key or globally.
type Host struct {
	mu       sync.Mutex
	objects  map[string]stored
	failKeys map[string]error
	failAll  error
	now      func() time.Time

	Deleted []string // Keys passed to Delete, in call order
}

type stored struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

func New() *Host {
	return &Host{
		objects:  make(map[string]stored),
		failKeys: make(map[string]error),
		now:      time.Now,
	}
}

// Put seeds an object as if a client had uploaded it directly.
func (h *Host) Put(key string, data []byte, contentType string, modified time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.objects[key] = stored{data: data, contentType: contentType, lastModified: modified}
}

// FailDelete makes Delete(key) return err until cleared with a nil err.
func (h *Host) FailDelete(key string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failKeys, key)
		return
	}
	h.failKeys[key] = err
}

// FailAll makes every remote call return err until cleared with nil.
func (h *Host) FailAll(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failAll = err
}

func (h *Host) Has(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.objects[key]
	return ok
}

func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.objects)
}

func (h *Host) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*storage.Object, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failAll != nil {
		return nil, h.failAll
	}
	h.objects[key] = stored{data: data, contentType: contentType, lastModified: h.now()}
	return &storage.Object{Key: key, URL: h.URL(key), Size: int64(len(data)), ContentType: contentType}, nil
}

func (h *Host) Delete(ctx context.Context, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Deleted = append(h.Deleted, key)
	if h.failAll != nil {
		return h.failAll
	}
	if err, ok := h.failKeys[key]; ok {
		return err
	}
	if _, ok := h.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(h.objects, key)
	return nil
}

func (h *Host) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failAll != nil {
		return nil, h.failAll
	}
	obj, ok := h.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.lastModified,
	}, nil
}

func (h *Host) SignUpload(ctx context.Context, key, contentType string) (*storage.SignedUpload, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failAll != nil {
		return nil, h.failAll
	}
	return &storage.SignedUpload{
		Key:       key,
		UploadURL: "https://upload.test/" + key + "?signature=test",
		URL:       h.URL(key),
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: h.now().Add(15 * time.Minute),
	}, nil
}

func (h *Host) List(ctx context.Context, prefix string, fn func(storage.ObjectInfo) error) error {
	h.mu.Lock()
	if h.failAll != nil {
		h.mu.Unlock()
		return h.failAll
	}
	var infos []storage.ObjectInfo
	for key, obj := range h.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, storage.ObjectInfo{
				Key:          key,
				Size:         int64(len(obj.data)),
				ContentType:  obj.contentType,
				LastModified: obj.lastModified,
			})
		}
	}
	h.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	for _, info := range infos {
		if err := fn(info); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) URL(key string) string {
	return "https://media.test/" + key
}

// Bytes returns the stored content of key.
func (h *Host) Bytes(key string) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Clone(h.objects[key].data)
}
