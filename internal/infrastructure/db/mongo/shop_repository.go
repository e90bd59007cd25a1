package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const collectionShops = "shops"

type ShopRepository struct {
	col *mongo.Collection
}

var _ ports.ShopRepository = (*ShopRepository)(nil)

func NewShopRepository(db *mongo.Database) *ShopRepository {
	return &ShopRepository{col: db.Collection(collectionShops)}
}

func (r *ShopRepository) FindBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var shop domain.Shop
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&shop); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShopNotFound
		}
		return nil, fmt.Errorf("find shop %s: %w", slug, err)
	}
	return &shop, nil
}

func (r *ShopRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
