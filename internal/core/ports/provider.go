package ports

import (
	"context"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// ProviderResponse is a provider snapshot already translated into the
// internal vocabulary. Events are ordered newest first.
type ProviderResponse struct {
	TrackingNumber string
	CarrierCode    string
	CurrentStatus  domain.ShipmentStatus
	Events         []domain.TrackingEvent
	Origin         *string
	Destination    *string
}

// TrackingProvider fetches tracking data from an external service.
type TrackingProvider interface {
	Name() string
	Track(ctx context.Context, trackingNumber, carrierCode string) (*ProviderResponse, error)
}
