package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 5, ParsePage("5"))
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 20, ParseLimit(""))
	assert.Equal(t, 20, ParseLimit("0"))
	assert.Equal(t, 20, ParseLimit("junk"))
	assert.Equal(t, 50, ParseLimit("50"))
	assert.Equal(t, 100, ParseLimit("500"))
}

func TestParseSizeParam(t *testing.T) {
	size, err := ParseSizeParam("")
	require.NoError(t, err)
	assert.Nil(t, size)

	size, err = ParseSizeParam("1024")
	require.NoError(t, err)
	require.NotNil(t, size)
	assert.Equal(t, int64(1024), *size)

	_, err = ParseSizeParam("-1")
	assert.Error(t, err)

	_, err = ParseSizeParam("big")
	assert.Error(t, err)
}

func TestParseDateParam(t *testing.T) {
	date, err := ParseDateParam("")
	require.NoError(t, err)
	assert.Nil(t, date)

	date, err = ParseDateParam("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, date)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *date)

	date, err = ParseDateParam("2024-03-15T10:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, date)
	assert.Equal(t, 10, date.Hour())

	_, err = ParseDateParam("15/03/2024")
	assert.Error(t, err)
}

func TestParseTagsParam(t *testing.T) {
	assert.Nil(t, ParseTagsParam(""))
	assert.Equal(t, []string{"work"}, ParseTagsParam("work"))
	assert.Equal(t, []string{"work", "urgent"}, ParseTagsParam("Work, URGENT"))
	assert.Equal(t, []string{"a", "b"}, ParseTagsParam("a,,b,"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "1.5 MB", FormatFileSize(1536*1024))
}

func TestNormalizeTagName(t *testing.T) {
	assert.Equal(t, "work", NormalizeTagName("  Work "))
	assert.Equal(t, "", NormalizeTagName("   "))
}
