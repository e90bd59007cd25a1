package domain

import "time"

// Shipment is the aggregate root. There is at most one shipment per tracking
// number within an owner scope; each refresh overwrites it in place.
type Shipment struct {
	ID                string          `json:"id" bson:"_id"`
	TrackingNumber    string          `json:"tracking_number" bson:"tracking_number"`
	CarrierCode       string          `json:"carrier_code" bson:"carrier_code"`
	CurrentStatus     ShipmentStatus  `json:"current_status" bson:"current_status"`
	OwnerID           string          `json:"owner_id,omitempty" bson:"owner_id,omitempty"`
	Label             *string         `json:"label" bson:"label,omitempty"`
	AISummary         *string         `json:"ai_summary" bson:"ai_summary,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery" bson:"estimated_delivery,omitempty"`
	Origin            *string         `json:"origin" bson:"origin,omitempty"`
	Destination       *string         `json:"destination" bson:"destination,omitempty"`
	RawEvents         []TrackingEvent `json:"raw_events" bson:"raw_events"`
	CreatedAt         time.Time       `json:"created_at" bson:"created_at"`
	LastUpdated       time.Time       `json:"last_updated" bson:"last_updated"`
}
