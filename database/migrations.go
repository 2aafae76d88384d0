package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the query paths rely on. The partial
// unique indexes on live file and folder names turn the collision pre-checks
// into a guarantee: a concurrent writer racing past the check loses with a
// duplicate-key error instead of producing a duplicate name.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	liveDocs := bson.M{"is_deleted": false}

	fileIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "folder_id", Value: 1}, {Key: "original_name", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(liveDocs),
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
	}
	if _, err := GetCollection(FilesCollection).Indexes().CreateMany(ctx, fileIndexes); err != nil {
		return fmt.Errorf("failed to create file indexes: %v", err)
	}

	folderIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(liveDocs),
		},
	}
	if _, err := GetCollection(FoldersCollection).Indexes().CreateMany(ctx, folderIndexes); err != nil {
		return fmt.Errorf("failed to create folder indexes: %v", err)
	}

	tagIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := GetCollection(TagsCollection).Indexes().CreateMany(ctx, tagIndexes); err != nil {
		return fmt.Errorf("failed to create tag indexes: %v", err)
	}

	fileTagIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "file_id", Value: 1}, {Key: "tag_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tag_id", Value: 1}},
		},
	}
	if _, err := GetCollection(FileTagsCollection).Indexes().CreateMany(ctx, fileTagIndexes); err != nil {
		return fmt.Errorf("failed to create file_tag indexes: %v", err)
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := GetCollection(UsersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}

	historyIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := GetCollection(SearchHistoryCollection).Indexes().CreateMany(ctx, historyIndexes); err != nil {
		return fmt.Errorf("failed to create search history indexes: %v", err)
	}

	return nil
}

// IsDuplicateKeyError reports whether an error came from a unique index.
func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
