package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExpandRenamePattern(t *testing.T) {
	got := ExpandRenamePattern("photo-{{index}}", 3, "IMG_0042.jpg")
	assert.Equal(t, "photo-3.jpg", got)

	got = ExpandRenamePattern("{{original}}", 1, "IMG_0042.jpg")
	assert.Equal(t, "IMG_0042.jpg", got)

	// {{name}} is the display name without its extension.
	got = ExpandRenamePattern("{{name}}_{{index}}", 1, "report.pdf")
	assert.Equal(t, "report_1.pdf", got)

	got = ExpandRenamePattern("{{name}}_{{index}}", 2, "notes.txt")
	assert.Equal(t, "notes_2.txt", got)
}

func TestExpandRenamePatternExtension(t *testing.T) {
	// The original extension is appended when the pattern drops it.
	got := ExpandRenamePattern("scan-{{index}}", 1, "contract.pdf")
	assert.Equal(t, "scan-1.pdf", got)

	// An explicit extension in the pattern wins.
	got = ExpandRenamePattern("scan-{{index}}.png", 1, "contract.pdf")
	assert.Equal(t, "scan-1.png", got)

	// Nothing is appended when the original had no extension either.
	got = ExpandRenamePattern("note-{{index}}", 2, "README")
	assert.Equal(t, "note-2", got)
}

func TestCopyName(t *testing.T) {
	assert.Equal(t, "Copy of report.pdf", CopyName("report.pdf", 1))
	assert.Equal(t, "Copy (2) of report.pdf", CopyName("report.pdf", 2))
	assert.Equal(t, "Copy (7) of report.pdf", CopyName("report.pdf", 7))
}

func TestParseFileIDs(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	ids, err := parseFileIDs([]string{a.Hex(), b.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, b}, ids)

	// Duplicates collapse, keeping the first position.
	ids, err = parseFileIDs([]string{a.Hex(), b.Hex(), a.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, b}, ids)

	// One malformed id rejects the whole batch.
	_, err = parseFileIDs([]string{a.Hex(), "nope"})
	assert.Error(t, err)
}
