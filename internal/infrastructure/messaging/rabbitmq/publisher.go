package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/trackflow/tracking-service/internal/api/metrics"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// RoutingKeyStatusChanged is the routing key of status-change events.
const RoutingKeyStatusChanged = "shipment.status_changed"

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type channelSource interface {
	publishChannel() (channel, error)
}

// SubscriptionSource lists who wants to hear about a shipment.
type SubscriptionSource interface {
	FindByShipment(ctx context.Context, shipmentID string) ([]domain.NotificationSettings, error)
}

// Publisher implements ports.StatusNotifier. Messages carry the change and
// the subscriptions of the shipment, so the notification consumer does not
// need database access.
type Publisher struct {
	source   channelSource
	exchange string
	subs     SubscriptionSource
	log      zerolog.Logger
	now      func() time.Time
}

var _ ports.StatusNotifier = (*Publisher)(nil)

func NewPublisher(client *Client, subs SubscriptionSource, log zerolog.Logger) *Publisher {
	return &Publisher{
		source:   client,
		exchange: client.cfg.Exchange,
		subs:     subs,
		log:      log,
		now:      time.Now,
	}
}

type subscriber struct {
	UserID      string  `json:"user_id"`
	Email       bool    `json:"email"`
	SMS         bool    `json:"sms"`
	Push        bool    `json:"push"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

type statusChangedMessage struct {
	EventID     string              `json:"event_id"`
	Type        string              `json:"type"`
	Change      domain.StatusChange `json:"change"`
	Subscribers []subscriber        `json:"subscribers"`
}

func (p *Publisher) PublishStatusChange(ctx context.Context, change domain.StatusChange) error {
	msg := statusChangedMessage{
		EventID:     uuid.NewString(),
		Type:        RoutingKeyStatusChanged,
		Change:      change,
		Subscribers: []subscriber{},
	}

	if p.subs != nil {
		settings, err := p.subs.FindByShipment(ctx, change.ShipmentID)
		if err != nil {
			// Publish anyway; consumers can still act on the owner.
			p.log.Warn().Err(err).Str("shipment_id", change.ShipmentID).Msg("failed to load subscriptions")
		}
		for _, s := range settings {
			if !s.Email && !s.SMS && !s.Push {
				continue
			}
			msg.Subscribers = append(msg.Subscribers, subscriber{
				UserID:      s.UserID,
				Email:       s.Email,
				SMS:         s.SMS,
				Push:        s.Push,
				PhoneNumber: s.PhoneNumber,
			})
		}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	err = p.publish(body, msg.EventID, change)
	if err != nil {
		metrics.StatusChangesPublishedTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.StatusChangesPublishedTotal.WithLabelValues("ok").Inc()

	p.log.Info().
		Str("tracking_number", change.TrackingNumber).
		Str("previous_status", string(change.PreviousStatus)).
		Str("new_status", string(change.NewStatus)).
		Int("subscribers", len(msg.Subscribers)).
		Msg("status change published")
	return nil
}

func (p *Publisher) publish(body []byte, eventID string, change domain.StatusChange) error {
	ch, err := p.source.publishChannel()
	if err != nil {
		return err
	}
	err = ch.Publish(
		p.exchange,
		RoutingKeyStatusChanged,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    eventID,
			Timestamp:    p.now(),
			Headers: amqp.Table{
				"tracking_number": change.TrackingNumber,
				"carrier_code":    change.CarrierCode,
				"new_status":      string(change.NewStatus),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyStatusChanged, err)
	}
	return nil
}
