package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const collectionShipments = "shipments"

type ShipmentRepository struct {
	col *mongo.Collection
}

var _ ports.ShipmentRepository = (*ShipmentRepository)(nil)

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{col: db.Collection(collectionShipments)}
}

// Create inserts a new shipment document and assigns its ID.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.RawEvents == nil {
		s.RawEvents = []domain.TrackingEvent{}
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

// FindByTrackingNumber retrieves a shipment by tracking number.
// When ownerID is non-empty, an additional filter by owner_id is applied.
func (r *ShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber, ownerID string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tracking_number": trackingNumber}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "last_updated", Value: -1}})
	return r.findOne(ctx, filter, opts)
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ShipmentRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.Shipment, error) {
	var s domain.Shipment
	err := r.col.FindOne(ctx, filter, opts...).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Update overwrites the fields a provider refresh may change.
func (r *ShipmentRepository) Update(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	events := s.RawEvents
	if events == nil {
		events = []domain.TrackingEvent{}
	}
	update := bson.M{"$set": bson.M{
		"carrier_code":   s.CarrierCode,
		"current_status": s.CurrentStatus,
		"raw_events":     events,
		"last_updated":   s.LastUpdated.UTC(),
	}}
	return r.updateByID(ctx, s.ID, update)
}

func (r *ShipmentRepository) UpdateSummary(ctx context.Context, id string, summary *string, eta *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.updateByID(ctx, id, setOrUnset(bson.M{
		"ai_summary":         summary,
		"estimated_delivery": eta,
	}))
}

func (r *ShipmentRepository) UpdateLabel(ctx context.Context, id string, label *string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.updateByID(ctx, id, setOrUnset(bson.M{"label": label}))
}

func (r *ShipmentRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

// List returns a page of shipments matching the filter, most recently
// refreshed first, together with the total number of matches.
func (r *ShipmentRepository) List(ctx context.Context, f ports.ListShipmentsFilter) ([]*domain.Shipment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := listFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "last_updated", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit)).
		SetProjection(bson.M{"raw_events": 0})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]*domain.Shipment, 0, f.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func listFilter(f ports.ListShipmentsFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		filter["current_status"] = f.Status
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"tracking_number": pattern},
			bson.M{"label": pattern},
		}
	}
	return filter
}

// ListStale returns non-terminal shipments last refreshed before the
// cutoff, oldest first.
func (r *ShipmentRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "last_updated", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"raw_events": 0})

	cur, err := r.col.Find(ctx, staleFilter(before), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []*domain.Shipment
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func staleFilter(before time.Time) bson.M {
	terminal := bson.A{}
	for _, st := range domain.TerminalStatuses() {
		terminal = append(terminal, st)
	}
	return bson.M{
		"current_status": bson.M{"$nin": terminal},
		"last_updated":   bson.M{"$lt": before.UTC()},
	}
}

// EnsureIndexes creates necessary indexes on the shipments collection.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_number", Value: 1}, {Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "last_updated", Value: -1}}},
		{Keys: bson.D{{Key: "current_status", Value: 1}, {Key: "last_updated", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
