package service

import (
	"time"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// PlanAction is the persistence instruction emitted by Reconcile.
type PlanAction string

const (
	PlanCreate PlanAction = "create"
	PlanUpdate PlanAction = "update"
)

// ReconcilePlan tells the caller how to persist a fresh provider snapshot.
type ReconcilePlan struct {
	Action PlanAction
	// Shipment is the full record to insert (create) or write back (update).
	Shipment *domain.Shipment
	// Events replaces the stored event collection wholesale.
	Events         []domain.TrackingEvent
	PreviousStatus domain.ShipmentStatus
	StatusChanged  bool
}

// Reconcile merges a provider snapshot with the previously stored shipment.
// It performs no I/O and never mutates its inputs.
func Reconcile(existing *domain.Shipment, resp *ports.ProviderResponse, ownerID string, now time.Time) ReconcilePlan {
	events := cloneEvents(resp.Events)

	if existing == nil {
		return ReconcilePlan{
			Action: PlanCreate,
			Shipment: &domain.Shipment{
				TrackingNumber: resp.TrackingNumber,
				CarrierCode:    resp.CarrierCode,
				CurrentStatus:  resp.CurrentStatus,
				OwnerID:        ownerID,
				Origin:         resp.Origin,
				Destination:    resp.Destination,
				RawEvents:      cloneEvents(events),
				CreatedAt:      now,
				LastUpdated:    now,
			},
			Events: events,
		}
	}

	updated := *existing
	updated.CarrierCode = resp.CarrierCode
	updated.CurrentStatus = resp.CurrentStatus
	updated.RawEvents = cloneEvents(events)
	updated.LastUpdated = now

	return ReconcilePlan{
		Action:         PlanUpdate,
		Shipment:       &updated,
		Events:         events,
		PreviousStatus: existing.CurrentStatus,
		StatusChanged:  existing.CurrentStatus != resp.CurrentStatus,
	}
}

func cloneEvents(in []domain.TrackingEvent) []domain.TrackingEvent {
	out := make([]domain.TrackingEvent, len(in))
	copy(out, in)
	return out
}
