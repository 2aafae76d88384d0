package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"filevault/database"
	"filevault/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Whole-request rejections raised before any per-item work starts.
var (
	// ErrBatchOwnership is returned when any id in the batch does not
	// resolve to a live file owned by the caller. The batch is rejected as a
	// whole; nothing is processed.
	ErrBatchOwnership = errors.New("one or more files were not found or are not accessible")

	// ErrMoveTargetRequired is returned when a move request omits the
	// target folder field entirely. An explicit null target means root.
	ErrMoveTargetRequired = errors.New("move requires target_folder_id (null means root)")

	// ErrRenamePatternRequired is returned when a rename request has no
	// pattern.
	ErrRenamePatternRequired = errors.New("rename requires rename_pattern")
)

// blobDeleteWorkers bounds the concurrent blob-store calls in bulk
// permanent deletes.
const blobDeleteWorkers = 4

// copyNameAttempts caps collision retries when synthesizing a copy name.
const copyNameAttempts = 100

type BulkService struct {
	fileService       *FileService
	fileCollection    *mongo.Collection
	folderCollection  *mongo.Collection
	fileTagCollection *mongo.Collection
	logger            *logrus.Logger
}

func NewBulkService(fileService *FileService) *BulkService {
	return &BulkService{
		fileService:       fileService,
		fileCollection:    database.GetCollection(database.FilesCollection),
		folderCollection:  database.GetCollection(database.FoldersCollection),
		fileTagCollection: database.GetCollection(database.FileTagsCollection),
		logger:            logrus.StandardLogger(),
	}
}

// Execute applies one operation to a batch of files in two phases: a
// whole-request gate (structural validation plus ownership of every id),
// then a per-item loop that records failures instead of aborting.
func (bs *BulkService) Execute(userID primitive.ObjectID, req *models.BulkOperationRequest) (*models.BulkOperationResponse, error) {
	fileIDs, err := parseFileIDs(req.FileIDs)
	if err != nil {
		return nil, err
	}

	var target *primitive.ObjectID
	switch req.Operation {
	case models.BulkOpMove:
		if !req.HasTarget {
			return nil, ErrMoveTargetRequired
		}
		target, err = bs.resolveTargetFolder(userID, req.TargetFolder)
		if err != nil {
			return nil, err
		}
	case models.BulkOpCopy:
		if req.HasTarget {
			target, err = bs.resolveTargetFolder(userID, req.TargetFolder)
			if err != nil {
				return nil, err
			}
		}
	case models.BulkOpRename:
		if strings.TrimSpace(req.RenamePattern) == "" {
			return nil, ErrRenamePatternRequired
		}
	case models.BulkOpDelete:
	default:
		return nil, fmt.Errorf("invalid operation: %s", req.Operation)
	}

	files, err := bs.resolveOwnedFiles(userID, fileIDs)
	if err != nil {
		return nil, err
	}

	var results []models.BulkOperationResult
	switch req.Operation {
	case models.BulkOpDelete:
		results = bs.deleteFiles(userID, files, req.Permanent)
	case models.BulkOpMove:
		results = bs.moveFiles(userID, files, target)
	case models.BulkOpCopy:
		results = bs.copyFiles(userID, files, target, req.HasTarget)
	case models.BulkOpRename:
		results = bs.renameFiles(userID, files, req.RenamePattern)
	}

	response := &models.BulkOperationResponse{
		Operation: req.Operation,
		Results:   results,
		Total:     len(results),
	}
	for i := range results {
		if results[i].Success {
			response.Succeeded++
		} else {
			response.Failed++
		}
	}

	return response, nil
}

func parseFileIDs(ids []string) ([]primitive.ObjectID, error) {
	fileIDs := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid file id: %s", id)
		}
		if seen[objID] {
			continue
		}
		seen[objID] = true
		fileIDs = append(fileIDs, objID)
	}
	return fileIDs, nil
}

// resolveOwnedFiles is the batch-level gate: every id must resolve to a
// live file owned by the caller, or the whole request is rejected. The
// returned slice preserves the input order.
func (bs *BulkService) resolveOwnedFiles(userID primitive.ObjectID, fileIDs []primitive.ObjectID) ([]models.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := bs.fileCollection.Find(ctx, bson.M{
		"_id":        bson.M{"$in": fileIDs},
		"user_id":    userID,
		"is_deleted": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve files: %v", err)
	}
	defer cursor.Close(ctx)

	var found []models.File
	if err = cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to resolve files: %v", err)
	}

	if len(found) != len(fileIDs) {
		return nil, ErrBatchOwnership
	}

	byID := make(map[primitive.ObjectID]models.File, len(found))
	for i := range found {
		byID[found[i].ID] = found[i]
	}

	ordered := make([]models.File, 0, len(fileIDs))
	for _, id := range fileIDs {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

// resolveTargetFolder validates a non-root move/copy destination once,
// before the per-item loop. A nil id is the root.
func (bs *BulkService) resolveTargetFolder(userID primitive.ObjectID, folderID *string) (*primitive.ObjectID, error) {
	if folderID == nil {
		return nil, nil
	}

	objID, err := primitive.ObjectIDFromHex(*folderID)
	if err != nil {
		return nil, fmt.Errorf("invalid target folder id: %s", *folderID)
	}
	if err := bs.fileService.ValidateFolderOwnership(userID, objID); err != nil {
		return nil, err
	}
	return &objID, nil
}

// deleteFiles removes each file, continuing past per-item failures. Blob
// deletes for permanent removal run concurrently with a bounded worker
// count; the database remains authoritative, so a blob failure is logged
// and the record is removed regardless. A blob whose key other rows still
// reference is left in place.
func (bs *BulkService) deleteFiles(userID primitive.ObjectID, files []models.File, permanent bool) []models.BulkOperationResult {
	results := make([]models.BulkOperationResult, len(files))

	g := new(errgroup.Group)
	g.SetLimit(blobDeleteWorkers)

	for i := range files {
		i := i
		g.Go(func() error {
			file := &files[i]
			results[i] = models.BulkOperationResult{ID: file.ID, Success: true}

			if err := bs.deleteOne(userID, file, permanent); err != nil {
				results[i].Success = false
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	g.Wait()

	return results
}

func (bs *BulkService) deleteOne(userID primitive.ObjectID, file *models.File, permanent bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if permanent {
		bs.fileService.deleteBlobIfUnreferenced(ctx, file.StorageKey, file.ID)

		if _, err := bs.fileCollection.DeleteOne(ctx, bson.M{"_id": file.ID, "user_id": userID}); err != nil {
			return fmt.Errorf("failed to delete file record: %v", err)
		}

		if _, err := bs.fileTagCollection.DeleteMany(ctx, bson.M{"file_id": file.ID}); err != nil {
			bs.logger.WithError(err).WithField("file_id", file.ID.Hex()).
				Warn("failed to remove tag links")
		}

		if err := bs.fileService.adjustUserUsage(ctx, userID, -file.Size, -1); err != nil {
			bs.logger.WithError(err).WithField("user_id", userID.Hex()).
				Warn("failed to update user storage usage")
		}
		return nil
	}

	now := time.Now()
	_, err := bs.fileCollection.UpdateOne(ctx,
		bson.M{"_id": file.ID, "user_id": userID},
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

// moveFiles updates each file's folder reference after a per-item collision
// check in the target.
func (bs *BulkService) moveFiles(userID primitive.ObjectID, files []models.File, target *primitive.ObjectID) []models.BulkOperationResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := make([]models.BulkOperationResult, len(files))
	for i := range files {
		file := &files[i]
		results[i] = models.BulkOperationResult{ID: file.ID, Success: true}

		collision, err := bs.fileService.NameCollision(ctx, userID, target, file.OriginalName, file.ID)
		if err != nil {
			results[i].Success = false
			results[i].Error = err.Error()
			continue
		}
		if collision {
			results[i].Success = false
			results[i].Error = fmt.Sprintf("a file named %q already exists in the target folder", file.OriginalName)
			continue
		}

		update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
		if target != nil {
			update["$set"].(bson.M)["folder_id"] = *target
		} else {
			update["$unset"] = bson.M{"folder_id": ""}
		}

		if _, err := bs.fileCollection.UpdateOne(ctx, bson.M{"_id": file.ID, "user_id": userID}, update); err != nil {
			results[i].Success = false
			if database.IsDuplicateKeyError(err) {
				results[i].Error = fmt.Sprintf("a file named %q already exists in the target folder", file.OriginalName)
			} else {
				results[i].Error = fmt.Sprintf("failed to move file: %v", err)
			}
		}
	}

	return results
}

// copyFiles creates a new record per file pointing at the same blob. The
// display name is prefixed until it is free in the destination.
func (bs *BulkService) copyFiles(userID primitive.ObjectID, files []models.File, target *primitive.ObjectID, hasTarget bool) []models.BulkOperationResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := make([]models.BulkOperationResult, len(files))
	for i := range files {
		file := &files[i]
		results[i] = models.BulkOperationResult{ID: file.ID, Success: true}

		dest := file.FolderID
		if hasTarget {
			dest = target
		}

		newName, err := bs.availableCopyName(ctx, userID, dest, file.OriginalName)
		if err != nil {
			results[i].Success = false
			results[i].Error = err.Error()
			continue
		}

		copyID, err := bs.insertCopy(ctx, userID, file, dest, newName)
		if err != nil {
			results[i].Success = false
			results[i].Error = err.Error()
			continue
		}

		results[i].NewName = newName
		results[i].CopyID = &copyID
	}

	return results
}

func (bs *BulkService) availableCopyName(ctx context.Context, userID primitive.ObjectID, folderID *primitive.ObjectID, original string) (string, error) {
	for attempt := 1; attempt <= copyNameAttempts; attempt++ {
		candidate := CopyName(original, attempt)
		collision, err := bs.fileService.NameCollision(ctx, userID, folderID, candidate, primitive.NilObjectID)
		if err != nil {
			return "", err
		}
		if !collision {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free copy name for %q", original)
}

// insertCopy clones the record onto the same blob, along with its tag links.
func (bs *BulkService) insertCopy(ctx context.Context, userID primitive.ObjectID, file *models.File, dest *primitive.ObjectID, newName string) (primitive.ObjectID, error) {
	now := time.Now()
	copyFile := models.File{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		FolderID:     dest,
		Name:         file.Name,
		OriginalName: newName,
		Description:  file.Description,
		Size:         file.Size,
		MimeType:     file.MimeType,
		Extension:    file.Extension,
		StorageKey:   file.StorageKey,
		PublicURL:    file.PublicURL,
		Tags:         append([]string{}, file.Tags...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := bs.fileCollection.InsertOne(ctx, &copyFile); err != nil {
		if database.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("a file named %q already exists in the destination", newName)
		}
		return primitive.NilObjectID, fmt.Errorf("failed to create copy: %v", err)
	}

	cursor, err := bs.fileTagCollection.Find(ctx, bson.M{"file_id": file.ID})
	if err == nil {
		var links []models.FileTag
		if err = cursor.All(ctx, &links); err == nil && len(links) > 0 {
			docs := make([]interface{}, 0, len(links))
			for _, link := range links {
				docs = append(docs, models.FileTag{
					ID:        primitive.NewObjectID(),
					FileID:    copyFile.ID,
					TagID:     link.TagID,
					UserID:    userID,
					CreatedAt: now,
				})
			}
			if _, err := bs.fileTagCollection.InsertMany(ctx, docs); err != nil {
				bs.logger.WithError(err).WithField("file_id", copyFile.ID.Hex()).
					Warn("failed to copy tag links")
			}
		}
	}

	if err := bs.fileService.adjustUserUsage(ctx, userID, file.Size, 1); err != nil {
		bs.logger.WithError(err).WithField("user_id", userID.Hex()).
			Warn("failed to update user storage usage")
	}

	return copyFile.ID, nil
}

// renameFiles applies the pattern to each file with a per-item collision
// check in its own folder.
func (bs *BulkService) renameFiles(userID primitive.ObjectID, files []models.File, pattern string) []models.BulkOperationResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := make([]models.BulkOperationResult, len(files))
	for i := range files {
		file := &files[i]
		results[i] = models.BulkOperationResult{ID: file.ID, Success: true}

		newName := ExpandRenamePattern(pattern, i+1, file.OriginalName)

		collision, err := bs.fileService.NameCollision(ctx, userID, file.FolderID, newName, file.ID)
		if err != nil {
			results[i].Success = false
			results[i].Error = err.Error()
			continue
		}
		if collision {
			results[i].Success = false
			results[i].Error = fmt.Sprintf("a file named %q already exists in this folder", newName)
			continue
		}

		_, err = bs.fileCollection.UpdateOne(ctx,
			bson.M{"_id": file.ID, "user_id": userID},
			bson.M{"$set": bson.M{
				"original_name": newName,
				"updated_at":    time.Now(),
			}},
		)
		if err != nil {
			results[i].Success = false
			if database.IsDuplicateKeyError(err) {
				results[i].Error = fmt.Sprintf("a file named %q already exists in this folder", newName)
			} else {
				results[i].Error = fmt.Sprintf("failed to rename file: %v", err)
			}
			continue
		}

		results[i].NewName = newName
	}

	return results
}

// CopyName synthesizes the display name for the nth copy attempt:
// "Copy of x" first, then "Copy (2) of x" and counting.
func CopyName(original string, attempt int) string {
	if attempt <= 1 {
		return "Copy of " + original
	}
	return fmt.Sprintf("Copy (%d) of %s", attempt, original)
}

// ExpandRenamePattern substitutes the rename placeholders: {{index}} is
// the 1-based batch position, {{original}} the full display name, {{name}}
// the display name without its extension. When the expanded name has no
// extension and the original did, the original extension is appended.
func ExpandRenamePattern(pattern string, index int, originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)

	name := strings.ReplaceAll(pattern, "{{index}}", strconv.Itoa(index))
	name = strings.ReplaceAll(name, "{{original}}", originalName)
	name = strings.ReplaceAll(name, "{{name}}", base)

	if filepath.Ext(name) == "" && ext != "" {
		name += ext
	}

	return name
}
