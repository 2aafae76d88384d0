package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBulkRequestTargetStates(t *testing.T) {
	// Key absent: no target.
	req, err := parseBulkRequest([]byte(`{"operation":"move","file_ids":["a"]}`))
	require.NoError(t, err)
	assert.False(t, req.HasTarget)
	assert.Nil(t, req.TargetFolder)

	// Explicit null: target present, meaning root.
	req, err = parseBulkRequest([]byte(`{"operation":"move","file_ids":["a"],"target_folder_id":null}`))
	require.NoError(t, err)
	assert.True(t, req.HasTarget)
	assert.Nil(t, req.TargetFolder)

	// Folder id.
	req, err = parseBulkRequest([]byte(`{"operation":"move","file_ids":["a"],"target_folder_id":"abc123"}`))
	require.NoError(t, err)
	assert.True(t, req.HasTarget)
	require.NotNil(t, req.TargetFolder)
	assert.Equal(t, "abc123", *req.TargetFolder)
}

func TestParseBulkRequestFields(t *testing.T) {
	req, err := parseBulkRequest([]byte(`{
		"operation": "rename",
		"file_ids": ["x", "y"],
		"rename_pattern": "doc-{{index}}",
		"permanent": true
	}`))
	require.NoError(t, err)

	assert.Equal(t, "rename", req.Operation)
	assert.Equal(t, []string{"x", "y"}, req.FileIDs)
	assert.Equal(t, "doc-{{index}}", req.RenamePattern)
	assert.True(t, req.Permanent)
}

func TestParseBulkRequestRejectsMalformed(t *testing.T) {
	_, err := parseBulkRequest([]byte(`{"operation":`))
	assert.Error(t, err)

	_, err = parseBulkRequest([]byte(`{"target_folder_id": 7}`))
	assert.Error(t, err)
}
