package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileCategories(t *testing.T) {
	assert.True(t, (&File{MimeType: "image/png"}).IsImage())
	assert.True(t, (&File{MimeType: "video/mp4"}).IsVideo())
	assert.True(t, (&File{MimeType: "application/pdf"}).IsDocument())
	assert.True(t, (&File{MimeType: "text/plain"}).IsDocument())

	f := &File{MimeType: "audio/mpeg"}
	assert.False(t, f.IsImage())
	assert.False(t, f.IsVideo())
	assert.False(t, f.IsDocument())
}

func TestNewFileViewThumbnails(t *testing.T) {
	view := NewFileView(File{MimeType: "image/jpeg", PublicURL: "https://cdn.example.com/a.jpg"})
	assert.True(t, view.IsImageFile)
	assert.Equal(t, "https://cdn.example.com/a.jpg", view.ThumbnailURL)

	view = NewFileView(File{MimeType: "video/mp4"})
	assert.Equal(t, "/public/thumbnails/video.png", view.ThumbnailURL)

	view = NewFileView(File{MimeType: "application/pdf"})
	assert.Equal(t, "/public/thumbnails/document.png", view.ThumbnailURL)

	view = NewFileView(File{MimeType: "audio/mpeg"})
	assert.Equal(t, "/public/thumbnails/generic.png", view.ThumbnailURL)
}
