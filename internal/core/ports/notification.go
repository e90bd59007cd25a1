package ports

import (
	"context"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// NotificationRepository persists per-shipment notification preferences.
type NotificationRepository interface {
	Upsert(ctx context.Context, settings *domain.NotificationSettings) error
}

// SubscribeInput is the DTO for enabling notifications on a shipment.
type SubscribeInput struct {
	ShipmentID  string
	Email       bool
	SMS         bool
	Push        bool
	PhoneNumber string
}

// NotificationService manages notification subscriptions.
type NotificationService interface {
	Subscribe(ctx context.Context, userID string, input SubscribeInput) (*domain.NotificationSettings, error)
}
