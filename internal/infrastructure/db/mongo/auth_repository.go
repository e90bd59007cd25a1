package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const (
	authCollection   = "users"
	apiKeyCollection = "api_keys"
)

type MongoAuthRepository struct {
	coll *mongo.Collection
	keys *mongo.Collection
}

var _ ports.AuthRepository = (*MongoAuthRepository)(nil)

func NewAuthRepository(db *mongo.Database) *MongoAuthRepository {
	return &MongoAuthRepository{
		coll: db.Collection(authCollection),
		keys: db.Collection(apiKeyCollection),
	}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *MongoAuthRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toDomain(), nil
}

func (r *MongoAuthRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Role:         mu.Role,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func (r *MongoAuthRepository) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	if _, err := r.keys.InsertOne(ctx, key); err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (r *MongoAuthRepository) FindAPIKeysByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	cur, err := r.keys.Find(ctx, bson.M{"prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("find api keys: %w", err)
	}
	defer cur.Close(ctx)

	var keys []*domain.APIKey
	if err := cur.All(ctx, &keys); err != nil {
		return nil, fmt.Errorf("decode api keys: %w", err)
	}
	return keys, nil
}

// TouchAPIKey stamps the last use and bumps the monthly request counter.
func (r *MongoAuthRepository) TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error {
	_, err := r.keys.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_used_at": usedAt.UTC()},
		"$inc": bson.M{"requests_this_month": 1},
	})
	return err
}

// EnsureIndexes creates the unique email index and the API key lookup index.
func (r *MongoAuthRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := r.keys.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "prefix", Value: 1}},
	})
	return err
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
