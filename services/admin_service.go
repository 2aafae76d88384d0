package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filevault/database"
	"filevault/models"
	"filevault/storage"
	"filevault/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// activeUserWindow is how far back a login still counts as active.
const activeUserWindow = 30 * 24 * time.Hour

type AdminService struct {
	userCollection *mongo.Collection
	fileCollection *mongo.Collection
	blobs          storage.Client
	logger         *logrus.Logger
}

func NewAdminService(blobs storage.Client) *AdminService {
	return &AdminService{
		userCollection: database.GetCollection(database.UsersCollection),
		fileCollection: database.GetCollection(database.FilesCollection),
		blobs:          blobs,
		logger:         logrus.StandardLogger(),
	}
}

// GetSystemStats gathers the dashboard numbers with the independent
// queries running concurrently. Any single failure fails the snapshot;
// partial dashboards mislead more than they help.
func (as *AdminService) GetSystemStats() (*models.SystemStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Each goroutine writes a distinct field, so no locking is needed.
	stats := &models.SystemStats{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := as.userCollection.CountDocuments(gctx, bson.M{})
		if err != nil {
			return fmt.Errorf("failed to count users: %v", err)
		}
		stats.TotalUsers = n
		return nil
	})

	g.Go(func() error {
		n, err := as.userCollection.CountDocuments(gctx, bson.M{
			"last_login_at": bson.M{"$gte": now.Add(-activeUserWindow)},
		})
		if err != nil {
			return fmt.Errorf("failed to count active users: %v", err)
		}
		stats.ActiveUsers = n
		return nil
	})

	g.Go(func() error {
		n, err := as.userCollection.CountDocuments(gctx, bson.M{
			"created_at": bson.M{"$gte": now.AddDate(0, 0, -7)},
		})
		if err != nil {
			return fmt.Errorf("failed to count new users: %v", err)
		}
		stats.NewUsersWeek = n
		return nil
	})

	g.Go(func() error {
		n, err := as.fileCollection.CountDocuments(gctx, bson.M{"is_deleted": false})
		if err != nil {
			return fmt.Errorf("failed to count files: %v", err)
		}
		stats.TotalFiles = n
		return nil
	})

	g.Go(func() error {
		n, err := as.fileCollection.CountDocuments(gctx, bson.M{
			"is_deleted": false,
			"created_at": bson.M{"$gte": today},
		})
		if err != nil {
			return fmt.Errorf("failed to count today's uploads: %v", err)
		}
		stats.UploadsToday = n
		return nil
	})

	g.Go(func() error {
		total, err := as.sumStorage(gctx)
		if err != nil {
			return err
		}
		stats.TotalStorage = total
		return nil
	})

	g.Go(func() error {
		byType, err := as.filesByType(gctx)
		if err != nil {
			return err
		}
		stats.FilesByType = byType
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (as *AdminService) sumStorage(ctx context.Context) (int64, error) {
	cursor, err := as.fileCollection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_deleted": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$size"},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum storage: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to sum storage: %v", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// filesByType groups live files into the image/video/document/other
// buckets used across the listing facets.
func (as *AdminService) filesByType(ctx context.Context) (map[string]int64, error) {
	cursor, err := as.fileCollection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_deleted": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$arrayElemAt": bson.A{bson.M{"$split": bson.A{"$mime_type", "/"}}, 0}},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to group files by type: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Prefix string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to group files by type: %v", err)
	}

	byType := map[string]int64{"image": 0, "video": 0, "document": 0, "other": 0}
	for _, row := range rows {
		switch {
		case row.Prefix == "image":
			byType["image"] += row.Count
		case row.Prefix == "video":
			byType["video"] += row.Count
		case row.Prefix == "application" || row.Prefix == "text":
			byType["document"] += row.Count
		default:
			byType["other"] += row.Count
		}
	}
	return byType, nil
}

// GetUsers lists all accounts, newest first.
func (as *AdminService) GetUsers(page, limit int, search string) (*models.AdminUserListResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if s := strings.TrimSpace(search); s != "" {
		pattern := bson.M{"$regex": s, "$options": "i"}
		filter["$or"] = []bson.M{
			{"username": pattern},
			{"email": pattern},
		}
	}

	total, err := as.userCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %v", err)
	}

	skip := (page - 1) * limit
	cursor, err := as.userCollection.Find(ctx, filter,
		options.Find().
			SetSort(bson.M{"created_at": -1}).
			SetSkip(int64(skip)).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	return &models.AdminUserListResponse{Users: users, Total: total}, nil
}

func (as *AdminService) GetUser(userID primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := as.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}

// CreateUser provisions an account with an explicit role.
func (as *AdminService) CreateUser(req *models.AdminUserCreateRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  strings.ToLower(req.Username),
		Email:     strings.ToLower(req.Email),
		Password:  hashed,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := as.userCollection.InsertOne(ctx, user); err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNameConflict
		}
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	return user, nil
}

// UpdateUser changes role or activation. Deactivated users keep their
// data but fail authentication.
func (as *AdminService) UpdateUser(userID primitive.ObjectID, req *models.AdminUserUpdateRequest) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{"updated_at": time.Now()}
	if req.Role != nil {
		update["role"] = *req.Role
	}
	if req.IsActive != nil {
		update["is_active"] = *req.IsActive
	}

	result, err := as.userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	return as.GetUser(userID)
}

// DeleteUser removes an account and everything it owns. Blob deletes are
// best-effort; the database rows are authoritative.
func (as *AdminService) DeleteUser(userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if _, err := as.GetUser(userID); err != nil {
		return err
	}

	cursor, err := as.fileCollection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to fetch user files: %v", err)
	}
	var files []models.File
	if err = cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("failed to decode user files: %v", err)
	}

	for i := range files {
		if err := as.blobs.Delete(files[i].StorageKey); err != nil {
			as.logger.WithError(err).WithField("key", files[i].StorageKey).
				Warn("blob deletion failed during account removal")
		}
	}

	owned := bson.M{"user_id": userID}
	for _, name := range []string{
		database.FilesCollection,
		database.FoldersCollection,
		database.TagsCollection,
		database.FileTagsCollection,
		database.SearchHistoryCollection,
	} {
		if _, err := database.GetCollection(name).DeleteMany(ctx, owned); err != nil {
			return fmt.Errorf("failed to remove user data from %s: %v", name, err)
		}
	}

	if _, err := as.userCollection.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}

	as.logger.WithField("user_id", userID.Hex()).Info("user account removed")
	return nil
}
