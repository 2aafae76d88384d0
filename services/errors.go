package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing records and records owned by someone else,
	// so existence is not leaked across users.
	ErrNotFound = errors.New("resource not found")

	// ErrNameConflict signals a naming collision within a folder or tag set.
	ErrNameConflict = errors.New("name already exists")
)

// FolderNotEmptyError reports why a folder delete without force was refused.
type FolderNotEmptyError struct {
	Files      int
	Subfolders int
}

func (e *FolderNotEmptyError) Error() string {
	return fmt.Sprintf("folder is not empty: %d files, %d subfolders", e.Files, e.Subfolders)
}
