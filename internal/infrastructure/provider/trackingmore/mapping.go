package trackingmore

import (
	"sort"
	"strings"
	"time"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

var statusMap = map[string]domain.ShipmentStatus{
	"pending":      domain.StatusPending,
	"notfound":     domain.StatusPending,
	"transit":      domain.StatusInTransit,
	"pickup":       domain.StatusInTransit,
	"delivered":    domain.StatusDelivered,
	"expired":      domain.StatusExpired,
	"undelivered":  domain.StatusFailedAttempt,
	"exception":    domain.StatusException,
	"inforeceived": domain.StatusInfoReceived,
}

// courierCodes lists internal carrier codes that TrackingMore spells
// differently. Anything else is sent unchanged.
var courierCodes = map[string]string{
	"ceska-posta": "ceskaposta",
}

var checkpointLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// MapStatus translates a TrackingMore delivery status. Unrecognised values
// map to unknown.
func MapStatus(s string) domain.ShipmentStatus {
	if status, ok := statusMap[strings.ToLower(strings.TrimSpace(s))]; ok {
		return status
	}
	return domain.StatusUnknown
}

// CourierCode translates an internal carrier code to TrackingMore's.
func CourierCode(code string) string {
	if mapped, ok := courierCodes[code]; ok {
		return mapped
	}
	return code
}

func normalize(t *tracking, number, carrierCode string, now time.Time) (*ports.ProviderResponse, error) {
	if t == nil {
		return nil, malformed("missing data")
	}
	if strings.TrimSpace(t.DeliveryStatus) == "" {
		return nil, malformed("missing delivery_status")
	}

	var raw []checkpoint
	if t.OriginInfo != nil {
		raw = append(raw, t.OriginInfo.TrackInfo...)
	}
	if t.DestinationInfo != nil {
		raw = append(raw, t.DestinationInfo.TrackInfo...)
	}

	events := make([]domain.TrackingEvent, 0, len(raw))
	for _, cp := range raw {
		events = append(events, toEvent(cp, now))
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	return &ports.ProviderResponse{
		TrackingNumber: number,
		CarrierCode:    carrierCode,
		CurrentStatus:  MapStatus(t.DeliveryStatus),
		Events:         events,
		Origin:         optional(t.OriginalCountry),
		Destination:    optional(t.DestinationCountry),
	}, nil
}

func toEvent(cp checkpoint, now time.Time) domain.TrackingEvent {
	status := domain.StatusInTransit
	if strings.TrimSpace(cp.CheckpointStatus) != "" {
		status = MapStatus(cp.CheckpointStatus)
	}
	return domain.TrackingEvent{
		Timestamp:      parseTimestamp(cp.Date, now),
		Location:       optional(cp.Details),
		StatusCode:     status,
		DescriptionRaw: cp.StatusDescription,
	}
}

// parseTimestamp falls back to now for missing or unreadable dates.
func parseTimestamp(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range checkpointLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return now
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
