// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taibuivan/rexauth/internal/platform/constants"
	mongoclient "github.com/taibuivan/rexauth/internal/platform/mongo"
)

var _ UserRepository = (*MongoUserRepository)(nil)

// identityDocument is the stored shape of a [User] in MongoDB.
type identityDocument struct {
	ID           string         `bson:"_id"`
	Email        string         `bson:"email"`
	PasswordHash string         `bson:"password"`
	TokenVersion int64          `bson:"tokenVersion"`
	Extra        map[string]any `bson:"extra,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt"`
}

func (document *identityDocument) toUser() *User {
	extra := make(map[string]any, len(document.Extra))
	for key, value := range document.Extra {
		extra[key] = plainValue(value)
	}
	return &User{
		ID:           document.ID,
		Email:        document.Email,
		PasswordHash: document.PasswordHash,
		TokenVersion: document.TokenVersion,
		Extra:        extra,
		CreatedAt:    document.CreatedAt,
		UpdatedAt:    document.UpdatedAt,
	}
}

// plainValue turns driver container types back into the map/slice shapes JSON
// decoding produces, so projections look the same across drivers.
func plainValue(value any) any {
	switch typed := value.(type) {
	case bson.D:
		converted := make(map[string]any, len(typed))
		for _, element := range typed {
			converted[element.Key] = plainValue(element.Value)
		}
		return converted
	case bson.M:
		converted := make(map[string]any, len(typed))
		for key, element := range typed {
			converted[key] = plainValue(element)
		}
		return converted
	case map[string]any:
		converted := make(map[string]any, len(typed))
		for key, element := range typed {
			converted[key] = plainValue(element)
		}
		return converted
	case bson.A:
		converted := make([]any, len(typed))
		for i, element := range typed {
			converted[i] = plainValue(element)
		}
		return converted
	case []any:
		converted := make([]any, len(typed))
		for i, element := range typed {
			converted[i] = plainValue(element)
		}
		return converted
	default:
		return value
	}
}

// # User Repository

// MongoUserRepository implements the UserRepository interface on a MongoDB collection.
type MongoUserRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoUserRepository binds the identity collection of database.
func NewMongoUserRepository(client *mongo.Client, database string) *MongoUserRepository {
	return &MongoUserRepository{
		client:     client,
		collection: client.Database(database).Collection(constants.MongoUserCollection),
	}
}

// EnsureIndexes creates the unique email index. It is idempotent.
func (repository *MongoUserRepository) EnsureIndexes(context context.Context) error {
	_, err := repository.collection.Indexes().CreateOne(context, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("identity_email_key"),
	})
	if err != nil {
		return fmt.Errorf("mongo_user_repo_ensure_indexes_failed: %w", err)
	}
	return nil
}

/*
Create inserts a new identity document.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: ErrDuplicateEmail (unique index) or driver errors
*/
func (repository *MongoUserRepository) Create(context context.Context, user *User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.collection.InsertOne(context, identityDocument{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		TokenVersion: user.TokenVersion,
		Extra:        user.Extra,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("mongo_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves an identity by its unique email address.
func (repository *MongoUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, bson.M{"email": email})
}

// FindByID retrieves an identity by its ID.
func (repository *MongoUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, bson.M{"_id": id})
}

/*
IncrementTokenVersion bumps tokenVersion with FindOneAndUpdate filtered on the
expected version, so only one of two racing refreshes matches.

Parameters:
  - context: context.Context
  - id: string
  - expected: int64

Returns:
  - int64: New version
  - error: ErrVersionConflict, ErrUserNotFound or driver errors
*/
func (repository *MongoUserRepository) IncrementTokenVersion(context context.Context, id string, expected int64) (int64, error) {
	filter := bson.M{"_id": id, "tokenVersion": expected}
	update := bson.M{
		"$inc": bson.M{"tokenVersion": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	var document identityDocument
	err := repository.collection.FindOneAndUpdate(context, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&document)

	if err == nil {
		return document.TokenVersion, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("mongo_user_repo_increment_version_failed: %w", err)
	}

	if _, findErr := repository.FindByID(context, id); findErr != nil {
		return 0, findErr
	}
	return 0, ErrVersionConflict
}

// Ping verifies that the MongoDB primary is reachable.
func (repository *MongoUserRepository) Ping(context context.Context) error {
	return mongoclient.Ping(context, repository.client)
}

func (repository *MongoUserRepository) findOne(context context.Context, filter bson.M) (*User, error) {
	var document identityDocument
	err := repository.collection.FindOne(context, filter).Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("mongo_user_repo_find_failed: %w", err)
	}
	return document.toUser(), nil
}
