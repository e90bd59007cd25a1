package ports

import (
	"context"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// ListShipmentsInput carries all parameters for the list endpoint.
type ListShipmentsInput struct {
	Role    string
	OwnerID string
	Status  string
	Search  string
	Limit   int
	Offset  int
}

// ListShipmentsResult is returned by ListShipments.
type ListShipmentsResult struct {
	Items  []*domain.Shipment
	Total  int64
	Limit  int
	Offset int
}

// GetShipmentInput carries the parameters needed to retrieve a single shipment.
type GetShipmentInput struct {
	TrackingNumber string
	Role           string
	OwnerID        string
}

// ShipmentDetail is a shipment with its stored events.
type ShipmentDetail struct {
	Shipment *domain.Shipment
	Events   []domain.TrackingEvent
}

// ShipmentService defines read and labelling operations on stored shipments.
type ShipmentService interface {
	ListShipments(ctx context.Context, input ListShipmentsInput) (*ListShipmentsResult, error)
	GetShipment(ctx context.Context, input GetShipmentInput) (*ShipmentDetail, error)
	SetLabel(ctx context.Context, input GetShipmentInput, label string) (*domain.Shipment, error)
}
