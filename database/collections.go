package database

// Collection names as constants to prevent typos
const (
	UsersCollection         = "users"
	FilesCollection         = "files"
	FoldersCollection       = "folders"
	TagsCollection          = "tags"
	FileTagsCollection      = "file_tags"
	SearchHistoryCollection = "search_history"
)
