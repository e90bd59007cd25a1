package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

func TestShipmentHandler_List(t *testing.T) {
	var got ports.ListShipmentsInput
	svc := &stubShipmentService{listFn: func(ctx context.Context, in ports.ListShipmentsInput) (*ports.ListShipmentsResult, error) {
		got = in
		return &ports.ListShipmentsResult{
			Items:  []*domain.Shipment{sampleResult(false).Shipment},
			Total:  7,
			Limit:  1,
			Offset: 2,
		}, nil
	}}
	handler := NewShipmentHandler(svc, nil, &stubEnqueuer{})

	c, rec := newTestContext(http.MethodGet, "/v1/shipments?status=in_transit&search=CZ12&limit=1&offset=2", "")
	withUser(c, "user-1", domain.RoleUser)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := ports.ListShipmentsInput{Role: "user", OwnerID: "user-1", Status: "in_transit", Search: "CZ12", Limit: 1, Offset: 2}
	if got != want {
		t.Fatalf("unexpected input: %+v", got)
	}

	var resp listShipmentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 7 || len(resp.Items) != 1 || resp.Items[0].TrackingNumber != "CZ1234567890123" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestShipmentHandler_List_InvalidQuery(t *testing.T) {
	handler := NewShipmentHandler(&stubShipmentService{}, nil, &stubEnqueuer{})

	for _, q := range []string{"status=lost", "limit=500", "limit=abc"} {
		c, _ := newTestContext(http.MethodGet, "/v1/shipments?"+q, "")
		withUser(c, "user-1", domain.RoleUser)
		if code := httpCode(t, handler.List(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, code)
		}
	}
}

func TestShipmentHandler_Get(t *testing.T) {
	var got ports.GetShipmentInput
	svc := &stubShipmentService{getFn: func(ctx context.Context, in ports.GetShipmentInput) (*ports.ShipmentDetail, error) {
		got = in
		r := sampleResult(false)
		return &ports.ShipmentDetail{Shipment: r.Shipment, Events: r.Events}, nil
	}}
	handler := NewShipmentHandler(svc, nil, &stubEnqueuer{})

	c, rec := newTestContext(http.MethodGet, "/", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("CZ1234567890123")
	withUser(c, "user-1", domain.RoleUser)
	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.TrackingNumber != "CZ1234567890123" || got.OwnerID != "user-1" {
		t.Fatalf("unexpected input: %+v", got)
	}

	var resp shipmentDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].DescriptionRaw != "Departed" {
		t.Fatalf("unexpected events: %+v", resp.Events)
	}
}

func TestShipmentHandler_Get_NotFound(t *testing.T) {
	svc := &stubShipmentService{getFn: func(ctx context.Context, in ports.GetShipmentInput) (*ports.ShipmentDetail, error) {
		return nil, domain.ErrShipmentNotFound
	}}
	handler := NewShipmentHandler(svc, nil, &stubEnqueuer{})

	c, _ := newTestContext(http.MethodGet, "/", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("NOPE")
	withUser(c, "user-1", domain.RoleUser)
	if err := handler.Get(c); !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}

func TestShipmentHandler_UpdateLabel(t *testing.T) {
	var gotLabel string
	svc := &stubShipmentService{setLabelFn: func(ctx context.Context, in ports.GetShipmentInput, label string) (*domain.Shipment, error) {
		gotLabel = label
		s := sampleResult(false).Shipment
		s.Label = &label
		return s, nil
	}}
	handler := NewShipmentHandler(svc, nil, &stubEnqueuer{})

	c, rec := newTestContext(http.MethodPatch, "/", `{"label":"Boty"}`)
	c.SetParamNames("tracking_number")
	c.SetParamValues("CZ1234567890123")
	withUser(c, "user-1", domain.RoleUser)
	if err := handler.UpdateLabel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || gotLabel != "Boty" {
		t.Fatalf("unexpected result: %d %q", rec.Code, gotLabel)
	}
}

func TestShipmentHandler_Refresh(t *testing.T) {
	svc := &stubShipmentService{getFn: func(ctx context.Context, in ports.GetShipmentInput) (*ports.ShipmentDetail, error) {
		if in.TrackingNumber == "MISSING" {
			return nil, domain.ErrShipmentNotFound
		}
		return &ports.ShipmentDetail{Shipment: &domain.Shipment{
			ID:             "shp-1",
			TrackingNumber: in.TrackingNumber,
			CarrierCode:    "ppl",
			OwnerID:        in.OwnerID,
		}}, nil
	}}
	queue := &stubEnqueuer{}
	handler := NewShipmentHandler(svc, nil, queue)

	c, rec := newTestContext(http.MethodPost, "/v1/shipments/refresh", `{"tracking_numbers":["CZ1234567890123","MISSING"]}`)
	withUser(c, "user-1", domain.RoleUser)
	if err := handler.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp refreshResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Accepted != 1 || len(resp.Skipped) != 1 || resp.Skipped[0] != "MISSING" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(queue.reqs) != 1 || queue.reqs[0] != (ports.RefreshRequest{ShipmentID: "shp-1", TrackingNumber: "CZ1234567890123", CarrierCode: "ppl", OwnerID: "user-1"}) {
		t.Fatalf("unexpected queue: %+v", queue.reqs)
	}
}

func TestShipmentHandler_Refresh_QueueFull(t *testing.T) {
	svc := &stubShipmentService{getFn: func(ctx context.Context, in ports.GetShipmentInput) (*ports.ShipmentDetail, error) {
		return &ports.ShipmentDetail{Shipment: &domain.Shipment{TrackingNumber: in.TrackingNumber}}, nil
	}}
	handler := NewShipmentHandler(svc, nil, &stubEnqueuer{reject: true})

	c, rec := newTestContext(http.MethodPost, "/v1/shipments/refresh", `{"tracking_numbers":["A1"]}`)
	withUser(c, "user-1", domain.RoleUser)
	if err := handler.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp refreshResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Accepted != 0 || len(resp.Skipped) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestShipmentHandler_Refresh_EmptyList(t *testing.T) {
	handler := NewShipmentHandler(&stubShipmentService{}, nil, &stubEnqueuer{})

	c, _ := newTestContext(http.MethodPost, "/v1/shipments/refresh", `{"tracking_numbers":[]}`)
	withUser(c, "user-1", domain.RoleUser)
	if code := httpCode(t, handler.Refresh(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
