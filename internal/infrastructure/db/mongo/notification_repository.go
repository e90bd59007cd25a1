package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const collectionNotifications = "notification_settings"

type NotificationRepository struct {
	col *mongo.Collection
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

// Upsert stores settings keyed by (user_id, shipment_id) and fills in the
// stored ID.
func (r *NotificationRepository) Upsert(ctx context.Context, s *domain.NotificationSettings) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": s.UserID, "shipment_id": s.ShipmentID}
	set := bson.M{
		"email":      s.Email,
		"sms":        s.SMS,
		"push":       s.Push,
		"updated_at": s.UpdatedAt.UTC(),
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	if s.PhoneNumber != nil {
		set["phone_number"] = *s.PhoneNumber
	} else {
		update["$unset"] = bson.M{"phone_number": ""}
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored domain.NotificationSettings
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("upsert notification settings: %w", err)
	}
	s.ID = stored.ID
	return nil
}

// FindByShipment returns every subscription of a shipment.
func (r *NotificationRepository) FindByShipment(ctx context.Context, shipmentID string) ([]domain.NotificationSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"shipment_id": shipmentID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.NotificationSettings
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "shipment_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
