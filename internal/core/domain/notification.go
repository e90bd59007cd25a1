package domain

import "time"

// NotificationSettings stores which channels a user wants for a shipment.
type NotificationSettings struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	ShipmentID  string    `json:"shipment_id" bson:"shipment_id"`
	Email       bool      `json:"email" bson:"email"`
	SMS         bool      `json:"sms" bson:"sms"`
	Push        bool      `json:"push" bson:"push"`
	PhoneNumber *string   `json:"phone_number" bson:"phone_number,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// StatusChange is published when a refresh moves a shipment to a new status.
type StatusChange struct {
	ShipmentID     string         `json:"shipment_id"`
	TrackingNumber string         `json:"tracking_number"`
	CarrierCode    string         `json:"carrier_code"`
	Label          *string        `json:"label"`
	OwnerID        string         `json:"owner_id,omitempty"`
	PreviousStatus ShipmentStatus `json:"previous_status"`
	NewStatus      ShipmentStatus `json:"new_status"`
	Location       *string        `json:"location"`
	TrackingURL    string         `json:"tracking_url"`
	OccurredAt     time.Time      `json:"occurred_at"`
}
