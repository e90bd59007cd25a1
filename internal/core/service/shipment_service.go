package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	maxLabelLength   = 120
)

type ShipmentService struct {
	shipments ports.ShipmentRepository
	events    ports.EventRepository
	logger    zerolog.Logger
}

func NewShipmentService(shipments ports.ShipmentRepository, events ports.EventRepository, logger zerolog.Logger) *ShipmentService {
	return &ShipmentService{shipments: shipments, events: events, logger: logger}
}

// ownerScope returns the owner filter for the caller: admins see everything,
// everybody else only their own shipments.
func ownerScope(role, ownerID string) string {
	if role == domain.RoleAdmin {
		return ""
	}
	return ownerID
}

// ListShipments returns a page of the caller's shipments, most recently
// refreshed first.
func (s *ShipmentService) ListShipments(ctx context.Context, in ports.ListShipmentsInput) (*ports.ListShipmentsResult, error) {
	if in.Role != domain.RoleAdmin && in.OwnerID == "" {
		return nil, domain.ErrForbidden
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	status := domain.ShipmentStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if status != "" && !status.IsValid() {
		return &ports.ListShipmentsResult{Items: []*domain.Shipment{}, Limit: limit, Offset: offset}, nil
	}

	items, total, err := s.shipments.List(ctx, ports.ListShipmentsFilter{
		OwnerID: ownerScope(in.Role, in.OwnerID),
		Status:  status,
		Search:  strings.TrimSpace(in.Search),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", in.OwnerID).Msg("failed to list shipments")
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	if items == nil {
		items = []*domain.Shipment{}
	}

	return &ports.ListShipmentsResult{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// GetShipment returns a stored shipment and its events without contacting
// the provider.
func (s *ShipmentService) GetShipment(ctx context.Context, in ports.GetShipmentInput) (*ports.ShipmentDetail, error) {
	sh, err := s.find(ctx, in)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListByShipment(ctx, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("get shipment: events: %w", err)
	}
	if events == nil {
		events = []domain.TrackingEvent{}
	}
	return &ports.ShipmentDetail{Shipment: sh, Events: events}, nil
}

// SetLabel assigns a friendly name to a shipment. An empty label clears it.
func (s *ShipmentService) SetLabel(ctx context.Context, in ports.GetShipmentInput, label string) (*domain.Shipment, error) {
	sh, err := s.find(ctx, in)
	if err != nil {
		return nil, err
	}

	label = strings.TrimSpace(label)
	if len([]rune(label)) > maxLabelLength {
		label = string([]rune(label)[:maxLabelLength])
	}
	var value *string
	if label != "" {
		value = &label
	}

	if err := s.shipments.UpdateLabel(ctx, sh.ID, value); err != nil {
		return nil, fmt.Errorf("set label: %w", err)
	}
	sh.Label = value

	s.logger.Info().Str("tracking_number", sh.TrackingNumber).Str("shipment_id", sh.ID).Msg("label updated")
	return sh, nil
}

func (s *ShipmentService) find(ctx context.Context, in ports.GetShipmentInput) (*domain.Shipment, error) {
	if in.Role != domain.RoleAdmin && in.OwnerID == "" {
		return nil, domain.ErrForbidden
	}
	number := carrier.Normalize(in.TrackingNumber)
	if number == "" {
		return nil, domain.ErrInvalidTrackingNumber
	}
	return s.shipments.FindByTrackingNumber(ctx, number, ownerScope(in.Role, in.OwnerID))
}
