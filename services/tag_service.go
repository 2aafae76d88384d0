package services

import (
	"context"
	"fmt"
	"time"

	"filevault/database"
	"filevault/models"
	"filevault/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TagService struct {
	tagCollection     *mongo.Collection
	fileTagCollection *mongo.Collection
	fileCollection    *mongo.Collection
	logger            *logrus.Logger
}

func NewTagService() *TagService {
	return &TagService{
		tagCollection:     database.GetCollection(database.TagsCollection),
		fileTagCollection: database.GetCollection(database.FileTagsCollection),
		fileCollection:    database.GetCollection(database.FilesCollection),
		logger:            logrus.StandardLogger(),
	}
}

// CreateTag creates a tag for the caller. Names are normalized to
// lowercase and unique per owner.
func (ts *TagService) CreateTag(userID primitive.ObjectID, req *models.TagCreateRequest) (*models.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	tag := &models.Tag{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Name:        utils.NormalizeTagName(req.Name),
		Color:       req.Color,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := ts.tagCollection.InsertOne(ctx, tag); err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to create tag: %v", err)
	}

	return tag, nil
}

// GetUserTags lists the caller's tags with live file counts.
func (ts *TagService) GetUserTags(userID primitive.ObjectID) ([]models.TagWithCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := ts.tagCollection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %v", err)
	}
	defer cursor.Close(ctx)

	var tags []models.Tag
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %v", err)
	}

	counted := make([]models.TagWithCount, 0, len(tags))
	for _, tag := range tags {
		count, err := ts.fileCollection.CountDocuments(ctx, bson.M{
			"user_id":    userID,
			"tags":       tag.Name,
			"is_deleted": false,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count tag files: %v", err)
		}
		counted = append(counted, models.TagWithCount{Tag: tag, FileCount: int(count)})
	}

	return counted, nil
}

func (ts *TagService) GetUserTag(userID, tagID primitive.ObjectID) (*models.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var tag models.Tag
	err := ts.tagCollection.FindOne(ctx, bson.M{"_id": tagID, "user_id": userID}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tag: %v", err)
	}
	return &tag, nil
}

// UpdateTag renames or restyles a tag. A rename rewrites the denormalized
// tag names carried on the owner's file documents.
func (ts *TagService) UpdateTag(userID, tagID primitive.ObjectID, req *models.TagUpdateRequest) (*models.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	tag, err := ts.GetUserTag(userID, tagID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Color != nil {
		update["color"] = *req.Color
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}

	var newName string
	if req.Name != nil {
		newName = utils.NormalizeTagName(*req.Name)
		if newName != tag.Name {
			update["name"] = newName
		} else {
			newName = ""
		}
	}

	_, err = ts.tagCollection.UpdateOne(ctx,
		bson.M{"_id": tagID, "user_id": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to update tag: %v", err)
	}

	if newName != "" {
		_, err = ts.fileCollection.UpdateMany(ctx,
			bson.M{"user_id": userID, "tags": tag.Name},
			bson.M{"$set": bson.M{"tags.$": newName, "updated_at": time.Now()}},
		)
		if err != nil {
			ts.logger.WithError(err).WithField("tag_id", tagID.Hex()).
				Warn("failed to rewrite tag name on files")
		}
	}

	return ts.GetUserTag(userID, tagID)
}

// DeleteTag removes a tag, its links and its denormalized name on files.
func (ts *TagService) DeleteTag(userID, tagID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	tag, err := ts.GetUserTag(userID, tagID)
	if err != nil {
		return err
	}

	if _, err := ts.tagCollection.DeleteOne(ctx, bson.M{"_id": tagID, "user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete tag: %v", err)
	}

	if _, err := ts.fileTagCollection.DeleteMany(ctx, bson.M{"tag_id": tagID}); err != nil {
		ts.logger.WithError(err).WithField("tag_id", tagID.Hex()).
			Warn("failed to remove tag links")
	}

	_, err = ts.fileCollection.UpdateMany(ctx,
		bson.M{"user_id": userID, "tags": tag.Name},
		bson.M{"$pull": bson.M{"tags": tag.Name}},
	)
	if err != nil {
		ts.logger.WithError(err).WithField("tag_id", tagID.Hex()).
			Warn("failed to remove tag name from files")
	}

	return nil
}

// ReplaceFileTags swaps a file's tag set in one transaction: existing
// links are dropped, new ones inserted, and the denormalized name list on
// the file document refreshed. Tags the caller does not have yet are
// created on the fly.
func (ts *TagService) ReplaceFileTags(userID, fileID primitive.ObjectID, names []string) ([]models.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var owned models.File
	err := ts.fileCollection.FindOne(ctx, bson.M{
		"_id": fileID, "user_id": userID, "is_deleted": false,
	}).Decode(&owned)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch file: %v", err)
	}

	tags, err := ts.ensureTags(ctx, userID, names)
	if err != nil {
		return nil, err
	}

	session, err := database.GetClient().StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := ts.fileTagCollection.DeleteMany(sc, bson.M{"file_id": fileID}); err != nil {
			return nil, err
		}

		if len(tags) > 0 {
			now := time.Now()
			docs := make([]interface{}, 0, len(tags))
			for _, tag := range tags {
				docs = append(docs, models.FileTag{
					ID:        primitive.NewObjectID(),
					FileID:    fileID,
					TagID:     tag.ID,
					UserID:    userID,
					CreatedAt: now,
				})
			}
			if _, err := ts.fileTagCollection.InsertMany(sc, docs); err != nil {
				return nil, err
			}
		}

		tagNames := make([]string, 0, len(tags))
		for _, tag := range tags {
			tagNames = append(tagNames, tag.Name)
		}
		_, err := ts.fileCollection.UpdateOne(sc,
			bson.M{"_id": fileID},
			bson.M{"$set": bson.M{"tags": tagNames, "updated_at": time.Now()}},
		)
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace file tags: %v", err)
	}

	return tags, nil
}

// ensureTags resolves names to tag records, creating the missing ones.
// Duplicate names collapse after normalization.
func (ts *TagService) ensureTags(ctx context.Context, userID primitive.ObjectID, names []string) ([]models.Tag, error) {
	normalized := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		n := utils.NormalizeTagName(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}

	tags := make([]models.Tag, 0, len(normalized))
	for _, name := range normalized {
		var tag models.Tag
		err := ts.tagCollection.FindOne(ctx, bson.M{"user_id": userID, "name": name}).Decode(&tag)
		if err == mongo.ErrNoDocuments {
			now := time.Now()
			tag = models.Tag{
				ID:        primitive.NewObjectID(),
				UserID:    userID,
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := ts.tagCollection.InsertOne(ctx, &tag); err != nil {
				if database.IsDuplicateKeyError(err) {
					if err := ts.tagCollection.FindOne(ctx, bson.M{"user_id": userID, "name": name}).Decode(&tag); err != nil {
						return nil, fmt.Errorf("failed to resolve tag %q: %v", name, err)
					}
				} else {
					return nil, fmt.Errorf("failed to create tag %q: %v", name, err)
				}
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to resolve tag %q: %v", name, err)
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
