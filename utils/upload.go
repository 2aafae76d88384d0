package utils

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileInfo struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	Extension    string `json:"extension"`
	MimeType     string `json:"mime_type"`
	StorageKey   string `json:"storage_key"`
}

type UploadConfig struct {
	MaxFileSize  int64    `json:"max_file_size"`
	AllowedTypes []string `json:"allowed_types"`
}

// ProcessFileUpload validates an uploaded file and derives its stored
// identity: a uuid-based stored name and the per-user storage key.
func ProcessFileUpload(file *multipart.FileHeader, userID string, config *UploadConfig) (*FileInfo, error) {
	if file.Size > config.MaxFileSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed size %d", file.Size, config.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !isAllowedFileType(ext, config.AllowedTypes) {
		return nil, fmt.Errorf("file type %s is not allowed", ext)
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	storedName := uuid.NewString() + ext

	return &FileInfo{
		Name:         storedName,
		OriginalName: file.Filename,
		Size:         file.Size,
		Extension:    ext,
		MimeType:     mimeType,
		StorageKey:   fmt.Sprintf("users/%s/%s", userID, storedName),
	}, nil
}

func isAllowedFileType(ext string, allowedTypes []string) bool {
	if len(allowedTypes) == 0 {
		return true
	}
	for _, allowed := range allowedTypes {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}

// MimeResourceType maps a MIME type to the blob store's resource-type hint.
func MimeResourceType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	default:
		return "raw"
	}
}
