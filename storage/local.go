package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalClient implements Client on the local file system, used in
// development and in tests.
type LocalClient struct {
	basePath string
	baseURL  string
}

// NewLocalClient creates a local storage client rooted at basePath.
func NewLocalClient(basePath, baseURL string) (*LocalClient, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %v", err)
	}

	return &LocalClient{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload saves data under the base path
func (lc *LocalClient) Upload(key string, reader io.Reader, size int64, opts *UploadOptions) (*UploadResult, error) {
	fullPath := filepath.Join(lc.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, newError("local", "upload", key, err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, newError("local", "upload", key, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(fullPath)
		return nil, newError("local", "upload", key, err)
	}

	return &UploadResult{
		Key:  key,
		URL:  lc.PublicURL(key),
		Size: written,
	}, nil
}

// Download opens a stored file
func (lc *LocalClient) Download(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(lc.basePath, filepath.FromSlash(key)))
	if err != nil {
		return nil, newError("local", "download", key, err)
	}
	return f, nil
}

// Delete removes a stored file
func (lc *LocalClient) Delete(key string) error {
	err := os.Remove(filepath.Join(lc.basePath, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return newError("local", "delete", key, err)
	}
	return nil
}

// Exists checks whether a stored file exists
func (lc *LocalClient) Exists(key string) (bool, error) {
	_, err := os.Stat(filepath.Join(lc.basePath, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, newError("local", "stat", key, err)
	}
	return true, nil
}

// PresignedURL for local storage is the plain serving URL; there is nothing
// to sign.
func (lc *LocalClient) PresignedURL(key string, expiry time.Duration) (string, error) {
	return lc.PublicURL(key), nil
}

// PublicURL returns the serving URL for a stored file
func (lc *LocalClient) PublicURL(key string) string {
	return fmt.Sprintf("%s/uploads/%s", lc.baseURL, key)
}

// HealthCheck verifies the base path is writable
func (lc *LocalClient) HealthCheck() error {
	probe := filepath.Join(lc.basePath, ".healthcheck")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return newError("local", "healthcheck", probe, err)
	}
	os.Remove(probe)
	return nil
}
