package ports

import (
	"context"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// TrackInput is the DTO passed from the transport layer to TrackingService.
type TrackInput struct {
	TrackingNumber string
	// Carrier is an optional explicit carrier hint; detection is used when empty.
	Carrier string
	// OwnerID associates a new shipment with a user; empty for anonymous lookups.
	OwnerID string
	// ScopeToOwner restricts the existing-shipment lookup to OwnerID (public API).
	ScopeToOwner bool
	// ShipmentID pins the lookup to one stored row. Refreshes set it so that
	// rows sharing a tracking number are each updated in place.
	ShipmentID string
}

// TrackResult is the assembled response of a lookup.
type TrackResult struct {
	Shipment *domain.Shipment
	Events   []domain.TrackingEvent
	// Summary is nil when enrichment was skipped or failed.
	Summary *domain.Summary
	Created bool
}

// TrackingService runs the detect → fetch → reconcile → persist pipeline.
type TrackingService interface {
	Track(ctx context.Context, input TrackInput) (*TrackResult, error)
}

// RefreshRequest asks for a stored shipment to be re-fetched in the background.
type RefreshRequest struct {
	ShipmentID     string
	TrackingNumber string
	CarrierCode    string
	OwnerID        string
}
