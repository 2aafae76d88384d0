package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationMeta(t *testing.T) {
	meta := PaginationMeta(1, 20, 45)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.False(t, meta.HasPrev)

	meta = PaginationMeta(2, 20, 45)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = PaginationMeta(3, 20, 45)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestPaginationMetaEmpty(t *testing.T) {
	meta := PaginationMeta(1, 20, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}

func TestPaginationMetaExactFit(t *testing.T) {
	meta := PaginationMeta(2, 10, 20)
	assert.Equal(t, 2, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}
