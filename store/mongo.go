package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"seva-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the persistent backend. Issues live in a single
// collection keyed by a unique issueId index; single-document writes are
// atomic per MongoDB's own guarantees, and no cross-document
// transactions are used.
type MongoStore struct {
	issues  *mongo.Collection
	users   *mongo.Collection
	timeout time.Duration
}

// NewMongoStore wraps the given database. opTimeout bounds every
// individual operation; on expiry the operation fails rather than hangs.
func NewMongoStore(db *mongo.Database, opTimeout time.Duration) *MongoStore {
	return &MongoStore{
		issues:  db.Collection("issues"),
		users:   db.Collection("users"),
		timeout: opTimeout,
	}
}

// EnsureIndexes creates the unique issueId and email indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.issues.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "issueId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) Insert(ctx context.Context, issue *models.Issue) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if _, err := s.issues.InsertOne(ctx, issue); err != nil {
		return &models.StorageError{Op: "insert", Err: err}
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var issue models.Issue
	err := s.issues.FindOne(ctx, bson.M{"issueId": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrIssueNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "find", Err: err}
	}
	return &issue, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id string, status models.IssueStatus, updatedAt time.Time) (*models.Issue, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": updatedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	err := s.issues.FindOneAndUpdate(ctx, bson.M{"issueId": id}, update, opts).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrIssueNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "update status", Err: err}
	}
	return &issue, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]models.Issue, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.issues.Find(ctx, filterQuery(f), opts)
	if err != nil {
		return nil, &models.StorageError{Op: "list", Err: err}
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0)
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, &models.StorageError{Op: "list", Err: err}
	}
	return issues, nil
}

func (s *MongoStore) Count(ctx context.Context, f Filter) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	count, err := s.issues.CountDocuments(ctx, filterQuery(f))
	if err != nil {
		return 0, &models.StorageError{Op: "count", Err: err}
	}
	return count, nil
}

func (s *MongoStore) CountByCategory(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}},
	}
	cursor, err := s.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &models.StorageError{Op: "aggregate categories", Err: err}
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, &models.StorageError{Op: "aggregate categories", Err: err}
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func filterQuery(f Filter) bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Village != "" {
		query["village"] = bson.M{"$regex": regexp.QuoteMeta(f.Village), "$options": "i"}
	}
	return query
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cp := *user
	cp.Email = strings.ToLower(cp.Email)
	if _, err := s.users.InsertOne(ctx, cp); err != nil {
		return &models.StorageError{Op: "create user", Err: err}
	}
	return nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "find user", Err: err}
	}
	return &user, nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "find user", Err: err}
	}
	return &user, nil
}
