package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

type NotificationService struct {
	shipments ports.ShipmentRepository
	repo      ports.NotificationRepository
	logger    zerolog.Logger
}

func NewNotificationService(shipments ports.ShipmentRepository, repo ports.NotificationRepository, logger zerolog.Logger) *NotificationService {
	return &NotificationService{shipments: shipments, repo: repo, logger: logger}
}

// Subscribe stores the user's channel preferences for a shipment, replacing
// any previous settings for the same pair.
func (s *NotificationService) Subscribe(ctx context.Context, userID string, in ports.SubscribeInput) (*domain.NotificationSettings, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}
	if _, err := s.shipments.FindByID(ctx, in.ShipmentID); err != nil {
		return nil, err
	}

	settings := &domain.NotificationSettings{
		UserID:     userID,
		ShipmentID: in.ShipmentID,
		Email:      in.Email,
		SMS:        in.SMS,
		Push:       in.Push,
		UpdatedAt:  time.Now().UTC(),
	}
	if phone := strings.TrimSpace(in.PhoneNumber); phone != "" {
		settings.PhoneNumber = &phone
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s.logger.Info().
		Str("shipment_id", in.ShipmentID).
		Str("user_id", userID).
		Bool("email", in.Email).
		Bool("sms", in.SMS).
		Msg("notification settings saved")
	return settings, nil
}
