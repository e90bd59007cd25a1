package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const collectionEvents = "tracking_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

var _ ports.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

// DeleteByShipment removes every stored event of a shipment.
func (r *EventRepository) DeleteByShipment(ctx context.Context, shipmentID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"shipment_id": shipmentID})
	return err
}

// InsertBatch stores events under shipmentID, assigning fresh IDs.
func (r *EventRepository) InsertBatch(ctx context.Context, shipmentID string, events []domain.TrackingEvent) error {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, len(events))
	for i, e := range events {
		e.ID = uuid.NewString()
		e.ShipmentID = shipmentID
		e.Timestamp = e.Timestamp.UTC()
		docs[i] = e
	}

	_, err := r.col.InsertMany(ctx, docs)
	return err
}

// ListByShipment returns the events of a shipment, newest first.
func (r *EventRepository) ListByShipment(ctx context.Context, shipmentID string) ([]domain.TrackingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"shipment_id": shipmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []domain.TrackingEvent{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// EnsureIndexes creates necessary indexes on the events collection.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shipment_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}
