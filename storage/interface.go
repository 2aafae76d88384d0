package storage

import (
	"fmt"
	"io"
	"time"
)

// Client is the blob-store contract the services depend on. Implementations
// must be safe for concurrent use; the bulk executor calls Delete from
// multiple goroutines.
type Client interface {
	Upload(key string, reader io.Reader, size int64, opts *UploadOptions) (*UploadResult, error)
	Download(key string) (io.ReadCloser, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	PresignedURL(key string, expiry time.Duration) (string, error)
	PublicURL(key string) string
	HealthCheck() error
}

// UploadOptions carries resource-type hinting for the blob store.
type UploadOptions struct {
	ContentType  string
	ResourceType string
}

// UploadResult describes the stored blob.
type UploadResult struct {
	Key  string
	URL  string
	Size int64
}

// Error wraps a provider failure with enough context to log usefully.
type Error struct {
	Provider string
	Op       string
	Key      string
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %s failed for %q: %s", e.Provider, e.Op, e.Key, e.Message)
}

func newError(provider, op, key string, err error) *Error {
	return &Error{Provider: provider, Op: op, Key: key, Message: err.Error()}
}
