package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"regexp"
	"time"

	"filevault/config"
	"filevault/database"
	"filevault/models"
	"filevault/storage"
	"filevault/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FileService struct {
	fileCollection    *mongo.Collection
	folderCollection  *mongo.Collection
	userCollection    *mongo.Collection
	fileTagCollection *mongo.Collection
	blobs             storage.Client
	logger            *logrus.Logger
}

func NewFileService(blobs storage.Client) *FileService {
	return &FileService{
		fileCollection:    database.GetCollection(database.FilesCollection),
		folderCollection:  database.GetCollection(database.FoldersCollection),
		userCollection:    database.GetCollection(database.UsersCollection),
		fileTagCollection: database.GetCollection(database.FileTagsCollection),
		blobs:             blobs,
		logger:            logrus.StandardLogger(),
	}
}

// FileFilters is the faceted query input shared by the listing and search
// endpoints. Optional bounds use pointers so "unset" and "zero" stay apart.
type FileFilters struct {
	FolderID  string
	Search    string
	FileType  string
	Tags      []string
	MinSize   *int64
	MaxSize   *int64
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	SortOrder string
	// WideSearch widens the free-text match to stored name, description and
	// tag names, and makes an absent folder id mean "any folder" instead of
	// "root". Set by the search endpoint.
	WideSearch bool
}

// Fields the listing and search endpoints may sort by.
var allowedSortFields = map[string]bool{
	"name":          true,
	"original_name": true,
	"size":          true,
	"created_at":    true,
	"updated_at":    true,
}

// BuildFileFilter translates the facet inputs into a store predicate. All
// facet values must already be parsed; invalid enumerated values error out
// before any store access.
func BuildFileFilter(userID primitive.ObjectID, filters *FileFilters) (bson.M, error) {
	filter := bson.M{
		"user_id":    userID,
		"is_deleted": false,
	}
	var ands []bson.M

	// Folder facet. The plain listing narrows an absent folder id to root;
	// search treats it as "any folder".
	if filters.FolderID != "" {
		if filters.FolderID == "root" {
			filter["folder_id"] = nil
		} else {
			folderObjID, err := primitive.ObjectIDFromHex(filters.FolderID)
			if err != nil {
				return nil, fmt.Errorf("invalid folder id: %s", filters.FolderID)
			}
			filter["folder_id"] = folderObjID
		}
	} else if !filters.WideSearch {
		filter["folder_id"] = nil
	}

	if filters.Search != "" {
		quoted := regexp.QuoteMeta(filters.Search)
		pattern := bson.M{"$regex": quoted, "$options": "i"}
		if filters.WideSearch {
			ands = append(ands, bson.M{"$or": []bson.M{
				{"original_name": pattern},
				{"name": pattern},
				{"description": pattern},
				{"tags": bson.M{"$regex": quoted, "$options": "i"}},
			}})
		} else {
			filter["original_name"] = pattern
		}
	}

	switch filters.FileType {
	case "", "all":
	case "image":
		filter["mime_type"] = bson.M{"$regex": "^image/"}
	case "video":
		filter["mime_type"] = bson.M{"$regex": "^video/"}
	case "document":
		ands = append(ands, bson.M{"$or": []bson.M{
			{"mime_type": bson.M{"$regex": "^application/"}},
			{"mime_type": bson.M{"$regex": "^text/"}},
		}})
	default:
		return nil, fmt.Errorf("invalid file type: %s", filters.FileType)
	}

	// Tag facet: a file matches when it carries at least one of the names.
	if len(filters.Tags) > 0 {
		filter["tags"] = bson.M{"$in": filters.Tags}
	}

	if filters.MinSize != nil || filters.MaxSize != nil {
		sizeFilter := bson.M{}
		if filters.MinSize != nil {
			sizeFilter["$gte"] = *filters.MinSize
		}
		if filters.MaxSize != nil {
			sizeFilter["$lte"] = *filters.MaxSize
		}
		filter["size"] = sizeFilter
	}

	if filters.StartDate != nil || filters.EndDate != nil {
		dateFilter := bson.M{}
		if filters.StartDate != nil {
			dateFilter["$gte"] = *filters.StartDate
		}
		if filters.EndDate != nil {
			dateFilter["$lte"] = *filters.EndDate
		}
		filter["created_at"] = dateFilter
	}

	if len(ands) > 0 {
		filter["$and"] = ands
	}

	return filter, nil
}

// BuildSortSpec validates the sort facet against the allow-list and returns
// the ordering document.
func BuildSortSpec(sortBy, sortOrder string) (bson.D, error) {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !allowedSortFields[sortBy] {
		return nil, fmt.Errorf("invalid sort field: %s", sortBy)
	}

	order := -1
	switch sortOrder {
	case "", "desc":
	case "asc":
		order = 1
	default:
		return nil, fmt.Errorf("invalid sort order: %s", sortOrder)
	}

	return bson.D{{Key: sortBy, Value: order}, {Key: "name", Value: 1}}, nil
}

// GetUserFiles returns one page of the user's files matching the facets,
// together with the total match count for pagination.
func (fs *FileService) GetUserFiles(userID primitive.ObjectID, page, limit int, filters *FileFilters) ([]models.FileView, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter, err := BuildFileFilter(userID, filters)
	if err != nil {
		return nil, 0, err
	}

	sortSpec, err := BuildSortSpec(filters.SortBy, filters.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * limit

	cursor, err := fs.fileCollection.Find(ctx, filter,
		options.Find().
			SetSort(sortSpec).
			SetSkip(int64(skip)).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return nil, 0, err
	}

	total, err := fs.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views, err := fs.annotateFiles(ctx, userID, files)
	if err != nil {
		return nil, 0, err
	}

	return views, int(total), nil
}

// annotateFiles derives view records and joins folder/owner summaries with
// one folder lookup for the whole page.
func (fs *FileService) annotateFiles(ctx context.Context, userID primitive.ObjectID, files []models.File) ([]models.FileView, error) {
	folderIDs := make([]primitive.ObjectID, 0, len(files))
	seen := make(map[primitive.ObjectID]bool)
	for i := range files {
		if files[i].FolderID != nil && !seen[*files[i].FolderID] {
			seen[*files[i].FolderID] = true
			folderIDs = append(folderIDs, *files[i].FolderID)
		}
	}

	folderByID := make(map[primitive.ObjectID]*models.FolderSummary)
	if len(folderIDs) > 0 {
		cursor, err := fs.folderCollection.Find(ctx, bson.M{"_id": bson.M{"$in": folderIDs}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var folders []models.Folder
		if err = cursor.All(ctx, &folders); err != nil {
			return nil, err
		}
		for i := range folders {
			folderByID[folders[i].ID] = &models.FolderSummary{
				ID:   folders[i].ID,
				Name: folders[i].Name,
				Path: folders[i].Path,
			}
		}
	}

	var owner *models.UserSummary
	var user models.User
	if err := fs.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err == nil {
		owner = &models.UserSummary{ID: user.ID, Username: user.Username}
	}

	views := make([]models.FileView, 0, len(files))
	for i := range files {
		view := models.NewFileView(files[i])
		if files[i].FolderID != nil {
			view.Folder = folderByID[*files[i].FolderID]
		}
		view.Owner = owner
		views = append(views, view)
	}

	return views, nil
}

// GetUserFile returns a live file owned by the user.
func (fs *FileService) GetUserFile(userID, fileID primitive.ObjectID) (*models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var file models.File
	err := fs.fileCollection.FindOne(ctx, bson.M{
		"_id":        fileID,
		"user_id":    userID,
		"is_deleted": false,
	}).Decode(&file)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load file: %v", err)
	}

	return &file, nil
}

// UploadFile stores the blob, then the file record. The blob is removed
// again if the record insert fails.
func (fs *FileService) UploadFile(user *models.User, fileHeader *multipart.FileHeader, req *models.FileUploadRequest) (*models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	uploadConfig := &utils.UploadConfig{
		MaxFileSize:  config.AppConfig.MaxUploadSize,
		AllowedTypes: config.AppConfig.AllowedTypes,
	}

	fileInfo, err := utils.ProcessFileUpload(fileHeader, user.ID.Hex(), uploadConfig)
	if err != nil {
		return nil, err
	}

	var folderObjID *primitive.ObjectID
	if req.FolderID != "" {
		fid, err := primitive.ObjectIDFromHex(req.FolderID)
		if err != nil {
			return nil, fmt.Errorf("invalid folder id: %s", req.FolderID)
		}
		if err := fs.ValidateFolderOwnership(user.ID, fid); err != nil {
			return nil, err
		}
		folderObjID = &fid
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	result, err := fs.blobs.Upload(fileInfo.StorageKey, src, fileInfo.Size, &storage.UploadOptions{
		ContentType:  fileInfo.MimeType,
		ResourceType: utils.MimeResourceType(fileInfo.MimeType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to storage: %v", err)
	}

	displayName := req.Name
	if displayName == "" {
		displayName = fileInfo.OriginalName
	}

	file := &models.File{
		ID:           primitive.NewObjectID(),
		UserID:       user.ID,
		FolderID:     folderObjID,
		Name:         fileInfo.Name,
		OriginalName: displayName,
		Description:  req.Description,
		Size:         fileInfo.Size,
		MimeType:     fileInfo.MimeType,
		Extension:    fileInfo.Extension,
		StorageKey:   result.Key,
		PublicURL:    result.URL,
		Tags:         []string{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if _, err = fs.fileCollection.InsertOne(ctx, file); err != nil {
		if delErr := fs.blobs.Delete(result.Key); delErr != nil {
			fs.logger.WithError(delErr).WithField("key", result.Key).
				Warn("failed to clean up blob after insert failure")
		}
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to save file record: %v", err)
	}

	if err := fs.adjustUserUsage(ctx, user.ID, fileInfo.Size, 1); err != nil {
		fs.logger.WithError(err).WithField("user_id", user.ID.Hex()).
			Warn("failed to update user storage usage")
	}

	return file, nil
}

// UpdateFile changes name and/or description. Renames are pre-checked for a
// collision among live siblings.
func (fs *FileService) UpdateFile(userID, fileID primitive.ObjectID, req *models.FileUpdateRequest) (*models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	file, err := fs.GetUserFile(userID, fileID)
	if err != nil {
		return nil, err
	}

	updates := bson.M{"updated_at": time.Now()}

	if req.Name != nil && *req.Name != file.OriginalName {
		collision, err := fs.NameCollision(ctx, userID, file.FolderID, *req.Name, fileID)
		if err != nil {
			return nil, err
		}
		if collision {
			return nil, ErrNameConflict
		}
		updates["original_name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	_, err = fs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": fileID, "user_id": userID},
		bson.M{"$set": updates},
	)
	if err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to update file: %v", err)
	}

	return fs.GetUserFile(userID, fileID)
}

// DeleteFile removes a file. Permanent deletion asks the blob store first;
// a blob failure is logged and does not block the database delete, which is
// authoritative.
func (fs *FileService) DeleteFile(userID, fileID primitive.ObjectID, permanent bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	file, err := fs.GetUserFile(userID, fileID)
	if err != nil {
		return err
	}

	if permanent {
		fs.deleteBlobIfUnreferenced(ctx, file.StorageKey, file.ID)

		if _, err = fs.fileCollection.DeleteOne(ctx, bson.M{"_id": fileID}); err != nil {
			return fmt.Errorf("failed to delete file record: %v", err)
		}

		if _, err = fs.fileTagCollection.DeleteMany(ctx, bson.M{"file_id": fileID}); err != nil {
			fs.logger.WithError(err).WithField("file_id", fileID.Hex()).
				Warn("failed to remove tag links")
		}

		if err := fs.adjustUserUsage(ctx, userID, -file.Size, -1); err != nil {
			fs.logger.WithError(err).WithField("user_id", userID.Hex()).
				Warn("failed to update user storage usage")
		}
		return nil
	}

	now := time.Now()
	_, err = fs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": fileID, "user_id": userID},
		bson.M{"$set": bson.M{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark file as deleted: %v", err)
	}

	return nil
}

// blobReferenceFilter matches every other file row holding the same storage
// key. Soft-deleted rows count here: they can still be restored, so they pin
// the blob. Copies share the source blob until the last row referencing the
// key is permanently removed.
func blobReferenceFilter(key string, excludeID primitive.ObjectID) bson.M {
	return bson.M{
		"storage_key": key,
		"_id":         bson.M{"$ne": excludeID},
	}
}

// deleteBlobIfUnreferenced removes the blob unless another row still points
// at its key. When the reference count cannot be determined the blob is kept:
// an orphaned blob is recoverable, a destroyed shared one is not. Blob
// failures are logged and do not block the record delete, which is
// authoritative.
func (fs *FileService) deleteBlobIfUnreferenced(ctx context.Context, key string, excludeID primitive.ObjectID) {
	count, err := fs.fileCollection.CountDocuments(ctx, blobReferenceFilter(key, excludeID))
	if err != nil {
		fs.logger.WithError(err).WithField("key", key).
			Warn("failed to count blob references, keeping blob")
		return
	}
	if count > 0 {
		return
	}

	if err := fs.blobs.Delete(key); err != nil {
		fs.logger.WithError(err).WithField("key", key).
			Warn("blob deletion failed, removing record anyway")
	}
}

// RestoreFile clears the soft-delete marker.
func (fs *FileService) RestoreFile(userID, fileID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := fs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": fileID, "user_id": userID, "is_deleted": true},
		bson.M{
			"$set": bson.M{
				"is_deleted": false,
				"updated_at": time.Now(),
			},
			"$unset": bson.M{"deleted_at": ""},
		},
	)
	if err != nil {
		// A live sibling may have taken the name while this file sat in
		// the trash; the partial unique index reports that as a duplicate.
		if database.IsDuplicateKeyError(err) {
			return ErrNameConflict
		}
		return fmt.Errorf("failed to restore file: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// GetDownloadURL generates a presigned download URL for a file.
func (fs *FileService) GetDownloadURL(userID, fileID primitive.ObjectID) (string, error) {
	file, err := fs.GetUserFile(userID, fileID)
	if err != nil {
		return "", err
	}

	url, err := fs.blobs.PresignedURL(file.StorageKey, 1*time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %v", err)
	}

	return url, nil
}

// NameCollision reports whether another live file with the same display name
// exists in the folder.
func (fs *FileService) NameCollision(ctx context.Context, userID primitive.ObjectID, folderID *primitive.ObjectID, name string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"user_id":       userID,
		"original_name": name,
		"is_deleted":    false,
		"_id":           bson.M{"$ne": excludeID},
	}
	if folderID != nil {
		filter["folder_id"] = *folderID
	} else {
		filter["folder_id"] = nil
	}

	count, err := fs.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check name collision: %v", err)
	}
	return count > 0, nil
}

// ValidateFolderOwnership verifies a live folder belongs to the user.
func (fs *FileService) ValidateFolderOwnership(userID, folderID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := fs.folderCollection.FindOne(ctx, bson.M{
		"_id":        folderID,
		"user_id":    userID,
		"is_deleted": false,
	}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check folder: %v", err)
	}

	return nil
}

func (fs *FileService) adjustUserUsage(ctx context.Context, userID primitive.ObjectID, sizeDelta int64, countDelta int) error {
	_, err := fs.userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{
			"storage_used": sizeDelta,
			"files_count":  countDelta,
		}},
	)
	return err
}
