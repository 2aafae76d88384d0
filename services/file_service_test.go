package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFileFilterDefaults(t *testing.T) {
	userID := primitive.NewObjectID()

	filter, err := BuildFileFilter(userID, &FileFilters{})
	require.NoError(t, err)

	assert.Equal(t, userID, filter["user_id"])
	assert.Equal(t, false, filter["is_deleted"])
	// A plain listing without a folder facet shows the root folder.
	assert.Nil(t, filter["folder_id"])
}

func TestBuildFileFilterFolderFacet(t *testing.T) {
	userID := primitive.NewObjectID()
	folderID := primitive.NewObjectID()

	filter, err := BuildFileFilter(userID, &FileFilters{FolderID: folderID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, folderID, filter["folder_id"])

	filter, err = BuildFileFilter(userID, &FileFilters{FolderID: "root"})
	require.NoError(t, err)
	assert.Contains(t, filter, "folder_id")
	assert.Nil(t, filter["folder_id"])

	_, err = BuildFileFilter(userID, &FileFilters{FolderID: "not-an-id"})
	assert.Error(t, err)
}

func TestBuildFileFilterWideSearchSpansFolders(t *testing.T) {
	userID := primitive.NewObjectID()

	filter, err := BuildFileFilter(userID, &FileFilters{WideSearch: true})
	require.NoError(t, err)
	assert.NotContains(t, filter, "folder_id")
}

func TestBuildFileFilterSearchModes(t *testing.T) {
	userID := primitive.NewObjectID()

	// Listing search matches the display name only.
	filter, err := BuildFileFilter(userID, &FileFilters{Search: "report"})
	require.NoError(t, err)
	assert.Contains(t, filter, "original_name")
	assert.NotContains(t, filter, "$and")

	// Wide search spans name, description and tags.
	filter, err = BuildFileFilter(userID, &FileFilters{Search: "report", WideSearch: true})
	require.NoError(t, err)
	assert.NotContains(t, filter, "original_name")
	ands, ok := filter["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, ands, 1)
	or, ok := ands[0]["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 4)
}

func TestBuildFileFilterSearchEscapesRegex(t *testing.T) {
	userID := primitive.NewObjectID()

	filter, err := BuildFileFilter(userID, &FileFilters{Search: "a.b+c"})
	require.NoError(t, err)

	pattern, ok := filter["original_name"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, `a\.b\+c`, pattern["$regex"])
	assert.Equal(t, "i", pattern["$options"])
}

func TestBuildFileFilterTypeFacet(t *testing.T) {
	userID := primitive.NewObjectID()

	filter, err := BuildFileFilter(userID, &FileFilters{FileType: "image"})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$regex": "^image/"}, filter["mime_type"])

	// Documents span two MIME prefixes.
	filter, err = BuildFileFilter(userID, &FileFilters{FileType: "document"})
	require.NoError(t, err)
	ands, ok := filter["$and"].([]bson.M)
	require.True(t, ok)
	or, ok := ands[0]["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, or, 2)

	_, err = BuildFileFilter(userID, &FileFilters{FileType: "spreadsheet"})
	assert.Error(t, err)
}

func TestBuildFileFilterSizeAndDateBounds(t *testing.T) {
	userID := primitive.NewObjectID()
	min := int64(100)
	max := int64(2000)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	filter, err := BuildFileFilter(userID, &FileFilters{
		MinSize:   &min,
		MaxSize:   &max,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)

	assert.Equal(t, bson.M{"$gte": min, "$lte": max}, filter["size"])
	assert.Equal(t, bson.M{"$gte": start, "$lte": end}, filter["created_at"])

	// A zero bound is still a bound.
	zero := int64(0)
	filter, err = BuildFileFilter(userID, &FileFilters{MinSize: &zero})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$gte": zero}, filter["size"])
}

func TestBuildFileFilterTagFacet(t *testing.T) {
	userID := primitive.NewObjectID()

	filter, err := BuildFileFilter(userID, &FileFilters{Tags: []string{"work", "urgent"}})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$in": []string{"work", "urgent"}}, filter["tags"])
}

func TestBuildSortSpec(t *testing.T) {
	spec, err := BuildSortSpec("", "")
	require.NoError(t, err)
	assert.Equal(t, "created_at", spec[0].Key)
	assert.Equal(t, -1, spec[0].Value)
	// Stable tiebreak on name.
	assert.Equal(t, "name", spec[1].Key)

	spec, err = BuildSortSpec("size", "asc")
	require.NoError(t, err)
	assert.Equal(t, "size", spec[0].Key)
	assert.Equal(t, 1, spec[0].Value)

	_, err = BuildSortSpec("password", "asc")
	assert.Error(t, err)

	_, err = BuildSortSpec("name", "sideways")
	assert.Error(t, err)
}

func TestBlobReferenceFilter(t *testing.T) {
	id := primitive.NewObjectID()

	filter := blobReferenceFilter("users/u1/ab12.jpg", id)

	assert.Equal(t, "users/u1/ab12.jpg", filter["storage_key"])
	// The row being deleted never counts as a reference to itself.
	assert.Equal(t, bson.M{"$ne": id}, filter["_id"])
	// Soft-deleted copies can be restored, so they still pin the blob.
	assert.NotContains(t, filter, "is_deleted")
}
