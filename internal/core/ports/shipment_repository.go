package ports

import (
	"context"
	"time"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// ListShipmentsFilter carries all query parameters for listing shipments.
// OwnerID is always enforced by the service layer.
type ListShipmentsFilter struct {
	OwnerID string                // empty = all owners (admin)
	Status  domain.ShipmentStatus // optional
	Search  string                // optional: partial match on tracking_number or label
	Limit   int
	Offset  int
}

// ShipmentRepository persists shipments.
type ShipmentRepository interface {
	// FindByTrackingNumber retrieves a shipment by tracking number.
	// When ownerID is non-empty, the lookup is scoped to that owner.
	FindByTrackingNumber(ctx context.Context, trackingNumber, ownerID string) (*domain.Shipment, error)
	FindByID(ctx context.Context, id string) (*domain.Shipment, error)
	// Create inserts s and assigns s.ID.
	Create(ctx context.Context, s *domain.Shipment) error
	// Update overwrites the refreshable fields of the shipment with s.ID.
	Update(ctx context.Context, s *domain.Shipment) error
	UpdateSummary(ctx context.Context, id string, summary *string, eta *time.Time) error
	UpdateLabel(ctx context.Context, id string, label *string) error
	// List returns a page of shipments ordered by last_updated desc, and the total count.
	List(ctx context.Context, filter ListShipmentsFilter) ([]*domain.Shipment, int64, error)
	// ListStale returns non-terminal shipments last refreshed before the cutoff.
	ListStale(ctx context.Context, before time.Time, limit int) ([]*domain.Shipment, error)
}

// EventRepository persists the event collection of a shipment.
type EventRepository interface {
	DeleteByShipment(ctx context.Context, shipmentID string) error
	InsertBatch(ctx context.Context, shipmentID string, events []domain.TrackingEvent) error
	// ListByShipment returns the events of a shipment ordered by timestamp desc.
	ListByShipment(ctx context.Context, shipmentID string) ([]domain.TrackingEvent, error)
}

// TxRunner runs fn so that all repository calls made with the ctx passed to
// fn commit or roll back together, when the backend supports it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
