package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"filevault/database"
	"filevault/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FolderService struct {
	folderCollection  *mongo.Collection
	fileCollection    *mongo.Collection
	fileTagCollection *mongo.Collection
	fileService       *FileService
	logger            *logrus.Logger
}

func NewFolderService(fileService *FileService) *FolderService {
	return &FolderService{
		folderCollection:  database.GetCollection(database.FoldersCollection),
		fileCollection:    database.GetCollection(database.FilesCollection),
		fileTagCollection: database.GetCollection(database.FileTagsCollection),
		fileService:       fileService,
		logger:            logrus.StandardLogger(),
	}
}

// CreateFolder creates a folder under the given parent (nil for root).
// Sibling names must be unique per owner.
func (fs *FolderService) CreateFolder(userID primitive.ObjectID, req *models.FolderCreateRequest) (*models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var parentID *primitive.ObjectID
	path := "/" + req.Name
	if req.ParentID != "" {
		objID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent folder id: %s", req.ParentID)
		}
		parent, err := fs.GetUserFolder(userID, objID)
		if err != nil {
			return nil, err
		}
		parentID = &objID
		path = parent.Path + "/" + req.Name
	}

	collision, err := fs.siblingNameCollision(ctx, userID, parentID, req.Name, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if collision {
		return nil, ErrNameConflict
	}

	now := time.Now()
	folder := &models.Folder{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ParentID:    parentID,
		Name:        req.Name,
		Description: req.Description,
		Path:        path,
		Color:       req.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := fs.folderCollection.InsertOne(ctx, folder); err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to create folder: %v", err)
	}

	if err := fs.adjustFolderCount(ctx, userID, 1); err != nil {
		fs.logger.WithError(err).WithField("user_id", userID.Hex()).
			Warn("failed to update user folder count")
	}

	return folder, nil
}

// GetUserFolder fetches a live folder owned by the caller. Folders
// belonging to other users are reported as not found.
func (fs *FolderService) GetUserFolder(userID, folderID primitive.ObjectID) (*models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var folder models.Folder
	err := fs.folderCollection.FindOne(ctx, bson.M{
		"_id":        folderID,
		"user_id":    userID,
		"is_deleted": false,
	}).Decode(&folder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch folder: %v", err)
	}

	return &folder, nil
}

// GetUserFolders lists the caller's folders under one parent ("" or
// "root" for top level).
func (fs *FolderService) GetUserFolders(userID primitive.ObjectID, parent string) ([]models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"user_id": userID, "is_deleted": false}
	switch parent {
	case "", "root":
		filter["parent_id"] = nil
	default:
		objID, err := primitive.ObjectIDFromHex(parent)
		if err != nil {
			return nil, fmt.Errorf("invalid folder id: %s", parent)
		}
		filter["parent_id"] = objID
	}

	cursor, err := fs.folderCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch folders: %v", err)
	}
	defer cursor.Close(ctx)

	folders := []models.Folder{}
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %v", err)
	}

	return folders, nil
}

// GetFolderTree returns the caller's full folder hierarchy.
func (fs *FolderService) GetFolderTree(userID primitive.ObjectID) ([]*models.FolderTree, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := fs.folderCollection.Find(ctx,
		bson.M{"user_id": userID, "is_deleted": false},
		options.Find().SetSort(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch folders: %v", err)
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %v", err)
	}

	return buildFolderTree(folders, nil), nil
}

func buildFolderTree(folders []models.Folder, parentID *primitive.ObjectID) []*models.FolderTree {
	tree := []*models.FolderTree{}
	for i := range folders {
		folder := &folders[i]
		samePlace := (folder.ParentID == nil && parentID == nil) ||
			(folder.ParentID != nil && parentID != nil && *folder.ParentID == *parentID)
		if !samePlace {
			continue
		}
		tree = append(tree, &models.FolderTree{
			Folder:   folder,
			Children: buildFolderTree(folders, &folder.ID),
		})
	}
	return tree
}

// GetFolderContents returns one folder together with its direct
// subfolders and files.
func (fs *FolderService) GetFolderContents(userID, folderID primitive.ObjectID, page, limit int) (*models.FolderContents, error) {
	folder, err := fs.GetUserFolder(userID, folderID)
	if err != nil {
		return nil, err
	}

	subfolders, err := fs.GetUserFolders(userID, folderID.Hex())
	if err != nil {
		return nil, err
	}

	files, total, err := fs.fileService.GetUserFiles(userID, page, limit, &FileFilters{
		FolderID:  folderID.Hex(),
		SortBy:    "name",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, err
	}

	totalSize, err := fs.folderFilesSize(userID, folderID)
	if err != nil {
		return nil, err
	}

	return &models.FolderContents{
		Folder:     folder,
		Subfolders: subfolders,
		Files:      files,
		FilesTotal: total,
		TotalSize:  totalSize,
	}, nil
}

// folderFilesSize sums the live file sizes directly under a folder.
func (fs *FolderService) folderFilesSize(userID, folderID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := fs.fileCollection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":    userID,
			"folder_id":  folderID,
			"is_deleted": false,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$size"},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum folder size: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to sum folder size: %v", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// UpdateFolder renames or recolors a folder. Renames re-check sibling
// uniqueness and rewrite the materialized path of the subtree.
func (fs *FolderService) UpdateFolder(userID, folderID primitive.ObjectID, req *models.FolderUpdateRequest) (*models.Folder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	folder, err := fs.GetUserFolder(userID, folderID)
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

	if req.Name != nil && *req.Name != folder.Name {
		collision, err := fs.siblingNameCollision(ctx, userID, folder.ParentID, *req.Name, folderID)
		if err != nil {
			return nil, err
		}
		if collision {
			return nil, ErrNameConflict
		}

		newPath := "/" + *req.Name
		if folder.ParentID != nil {
			parent, err := fs.GetUserFolder(userID, *folder.ParentID)
			if err != nil {
				return nil, err
			}
			newPath = parent.Path + "/" + *req.Name
		}

		update["name"] = *req.Name
		update["path"] = newPath

		if err := fs.rewriteSubtreePaths(ctx, userID, folder.Path, newPath); err != nil {
			return nil, err
		}
	}

	_, err = fs.folderCollection.UpdateOne(ctx,
		bson.M{"_id": folderID, "user_id": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to update folder: %v", err)
	}

	return fs.GetUserFolder(userID, folderID)
}

// rewriteSubtreePaths replaces the old path prefix on every descendant.
func (fs *FolderService) rewriteSubtreePaths(ctx context.Context, userID primitive.ObjectID, oldPath, newPath string) error {
	cursor, err := fs.folderCollection.Find(ctx, bson.M{
		"user_id":    userID,
		"is_deleted": false,
		"path":       bson.M{"$regex": "^" + regexp.QuoteMeta(oldPath) + "/"},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch descendant folders: %v", err)
	}
	defer cursor.Close(ctx)

	var descendants []models.Folder
	if err = cursor.All(ctx, &descendants); err != nil {
		return fmt.Errorf("failed to decode descendant folders: %v", err)
	}

	for i := range descendants {
		child := &descendants[i]
		rewritten := newPath + child.Path[len(oldPath):]
		_, err := fs.folderCollection.UpdateOne(ctx,
			bson.M{"_id": child.ID},
			bson.M{"$set": bson.M{"path": rewritten, "updated_at": time.Now()}},
		)
		if err != nil {
			return fmt.Errorf("failed to rewrite folder path: %v", err)
		}
	}
	return nil
}

// DeleteFolder removes a folder. Without force, a non-empty folder is
// rejected with the live file and subfolder counts. With force, the
// subtree is purged depth first, files and blobs included.
func (fs *FolderService) DeleteFolder(userID, folderID primitive.ObjectID, force bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	folder, err := fs.GetUserFolder(userID, folderID)
	if err != nil {
		return err
	}

	if !force {
		fileCount, err := fs.fileCollection.CountDocuments(ctx, bson.M{
			"user_id": userID, "folder_id": folderID, "is_deleted": false,
		})
		if err != nil {
			return fmt.Errorf("failed to count folder files: %v", err)
		}
		folderCount, err := fs.folderCollection.CountDocuments(ctx, bson.M{
			"user_id": userID, "parent_id": folderID, "is_deleted": false,
		})
		if err != nil {
			return fmt.Errorf("failed to count subfolders: %v", err)
		}
		if fileCount > 0 || folderCount > 0 {
			return &FolderNotEmptyError{Files: int(fileCount), Subfolders: int(folderCount)}
		}
	}

	if force {
		return fs.purgeFolder(ctx, userID, folder)
	}

	if _, err := fs.folderCollection.DeleteOne(ctx, bson.M{"_id": folderID, "user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete folder: %v", err)
	}

	if err := fs.adjustFolderCount(ctx, userID, -1); err != nil {
		fs.logger.WithError(err).WithField("user_id", userID.Hex()).
			Warn("failed to update user folder count")
	}

	return nil
}

// purgeFolder removes a folder's subtree depth first so no child ever
// outlives its parent.
func (fs *FolderService) purgeFolder(ctx context.Context, userID primitive.ObjectID, folder *models.Folder) error {
	subfolders, err := fs.GetUserFolders(userID, folder.ID.Hex())
	if err != nil {
		return err
	}
	for i := range subfolders {
		if err := fs.purgeFolder(ctx, userID, &subfolders[i]); err != nil {
			return err
		}
	}

	cursor, err := fs.fileCollection.Find(ctx, bson.M{
		"user_id": userID, "folder_id": folder.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch folder files: %v", err)
	}
	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("failed to decode folder files: %v", err)
	}

	for i := range files {
		file := &files[i]
		fs.fileService.deleteBlobIfUnreferenced(ctx, file.StorageKey, file.ID)
		if _, err := fs.fileCollection.DeleteOne(ctx, bson.M{"_id": file.ID}); err != nil {
			return fmt.Errorf("failed to delete file record: %v", err)
		}
		if _, err := fs.fileTagCollection.DeleteMany(ctx, bson.M{"file_id": file.ID}); err != nil {
			fs.logger.WithError(err).WithField("file_id", file.ID.Hex()).
				Warn("failed to remove tag links")
		}
		if !file.IsDeleted {
			if err := fs.fileService.adjustUserUsage(ctx, userID, -file.Size, -1); err != nil {
				fs.logger.WithError(err).WithField("user_id", userID.Hex()).
					Warn("failed to update user storage usage")
			}
		}
	}

	if _, err := fs.folderCollection.DeleteOne(ctx, bson.M{"_id": folder.ID}); err != nil {
		return fmt.Errorf("failed to delete folder: %v", err)
	}

	// Per-folder so the counter stays right across the whole subtree.
	if err := fs.adjustFolderCount(ctx, userID, -1); err != nil {
		fs.logger.WithError(err).WithField("user_id", userID.Hex()).
			Warn("failed to update user folder count")
	}
	return nil
}

func (fs *FolderService) siblingNameCollision(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, name string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"user_id":    userID,
		"name":       name,
		"is_deleted": false,
	}
	if parentID != nil {
		filter["parent_id"] = *parentID
	} else {
		filter["parent_id"] = nil
	}
	if excludeID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	count, err := fs.folderCollection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check folder name: %v", err)
	}
	return count > 0, nil
}

func (fs *FolderService) adjustFolderCount(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	userCollection := database.GetCollection(database.UsersCollection)
	_, err := userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"folders_count": delta}},
	)
	return err
}
