package handler

import (
	"net/url"

	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

func toShipmentResponse(s *domain.Shipment, carriers *carrier.Table) shipmentResponse {
	return shipmentResponse{
		ID:                s.ID,
		TrackingNumber:    s.TrackingNumber,
		CarrierCode:       s.CarrierCode,
		CarrierName:       carriers.Name(s.CarrierCode),
		CurrentStatus:     string(s.CurrentStatus),
		Label:             s.Label,
		AISummary:         s.AISummary,
		EstimatedDelivery: s.EstimatedDelivery,
		Origin:            s.Origin,
		Destination:       s.Destination,
		CreatedAt:         s.CreatedAt,
		LastUpdated:       s.LastUpdated,
		Links: shipmentLinks{
			Self: "/v1/shipments/" + url.PathEscape(s.TrackingNumber),
		},
	}
}

func toEventResponses(events []domain.TrackingEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:               e.ID,
			Timestamp:        e.Timestamp,
			Location:         e.Location,
			StatusCode:       string(e.StatusCode),
			DescriptionRaw:   e.DescriptionRaw,
			DescriptionHuman: e.DescriptionHuman,
		})
	}
	return out
}

func toTrackResponse(r *ports.TrackResult, carriers *carrier.Table) trackResponse {
	return trackResponse{
		Shipment: toShipmentResponse(r.Shipment, carriers),
		Events:   toEventResponses(r.Events),
		Summary:  r.Summary,
		Created:  r.Created,
	}
}

func toDomainEvents(reqs []summarizeEventRequest) []domain.TrackingEvent {
	out := make([]domain.TrackingEvent, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, domain.TrackingEvent{
			Timestamp:        r.Timestamp,
			Location:         r.Location,
			StatusCode:       domain.ShipmentStatus(r.StatusCode),
			DescriptionRaw:   r.DescriptionRaw,
			DescriptionHuman: r.DescriptionHuman,
		})
	}
	return out
}
