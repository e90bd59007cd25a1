package handler

import (
	"time"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type trackRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,max=64"`
	Carrier        string `json:"carrier"         validate:"omitempty,max=32"`
}

type listShipmentsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending info_received in_transit out_for_delivery delivered failed_attempt exception expired unknown"`
	Search string `query:"search" validate:"omitempty,max=100"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type updateLabelRequest struct {
	Label string `json:"label" validate:"max=200"`
}

type refreshRequest struct {
	TrackingNumbers []string `json:"tracking_numbers" validate:"required,min=1,max=100,dive,required"`
}

type summarizeEventRequest struct {
	Timestamp        time.Time `json:"timestamp"         validate:"required"`
	Location         *string   `json:"location"`
	StatusCode       string    `json:"status_code"       validate:"required"`
	DescriptionRaw   string    `json:"description_raw"`
	DescriptionHuman *string   `json:"description_human"`
}

type summarizeRequest struct {
	Events []summarizeEventRequest `json:"events" validate:"dive"`
}

type subscribeRequest struct {
	ShipmentID string `json:"shipment_id" validate:"required,uuid"`
	// Email defaults to true when omitted.
	Email       *bool  `json:"email"`
	SMS         bool   `json:"sms"`
	Push        bool   `json:"push"`
	PhoneNumber string `json:"phone_number" validate:"required_if=SMS true,omitempty,e164"`
}

// --- Response types ---
// These are intentionally separate from domain types so the JSON contract is
// not coupled to storage changes.

type shipmentLinks struct {
	Self string `json:"self"`
}

type eventResponse struct {
	ID               string    `json:"id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	Location         *string   `json:"location"`
	StatusCode       string    `json:"status_code"`
	DescriptionRaw   string    `json:"description_raw"`
	DescriptionHuman *string   `json:"description_human"`
}

type shipmentResponse struct {
	ID                string        `json:"id"`
	TrackingNumber    string        `json:"tracking_number"`
	CarrierCode       string        `json:"carrier_code"`
	CarrierName       string        `json:"carrier_name"`
	CurrentStatus     string        `json:"current_status"`
	Label             *string       `json:"label"`
	AISummary         *string       `json:"ai_summary"`
	EstimatedDelivery *time.Time    `json:"estimated_delivery"`
	Origin            *string       `json:"origin"`
	Destination       *string       `json:"destination"`
	CreatedAt         time.Time     `json:"created_at"`
	LastUpdated       time.Time     `json:"last_updated"`
	Links             shipmentLinks `json:"_links"`
}

type trackResponse struct {
	Shipment shipmentResponse `json:"shipment"`
	Events   []eventResponse  `json:"events"`
	Summary  *domain.Summary  `json:"ai_summary"`
	Created  bool             `json:"created"`
}

type shipmentDetailResponse struct {
	Shipment shipmentResponse `json:"shipment"`
	Events   []eventResponse  `json:"events"`
}

type listShipmentsResponse struct {
	Items  []shipmentResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type refreshResponse struct {
	Accepted int      `json:"accepted"`
	Skipped  []string `json:"skipped"`
}

type carrierResponse struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

type detectResponse struct {
	TrackingNumber string `json:"tracking_number"`
	Detected       bool   `json:"detected"`
	CarrierCode    string `json:"carrier_code,omitempty"`
	CarrierName    string `json:"carrier_name,omitempty"`
}

type shopResponse struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	LogoURL      *string `json:"logo_url"`
	PrimaryColor string  `json:"primary_color"`
	Domain       *string `json:"domain"`
}
