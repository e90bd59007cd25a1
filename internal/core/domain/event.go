package domain

import "time"

// TrackingEvent is a single checkpoint of a shipment. Events coming from a
// provider have no ID or ShipmentID until they are persisted.
type TrackingEvent struct {
	ID               string         `json:"id,omitempty" bson:"_id,omitempty"`
	ShipmentID       string         `json:"shipment_id,omitempty" bson:"shipment_id,omitempty"`
	Timestamp        time.Time      `json:"timestamp" bson:"timestamp"`
	Location         *string        `json:"location" bson:"location,omitempty"`
	StatusCode       ShipmentStatus `json:"status_code" bson:"status_code"`
	DescriptionRaw   string         `json:"description_raw" bson:"description_raw"`
	DescriptionHuman *string        `json:"description_human" bson:"description_human,omitempty"`
}
