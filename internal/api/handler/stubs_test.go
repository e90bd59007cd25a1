package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// newTestContext builds an echo context with the validator installed.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withUser injects the claims the auth middleware would set.
func withUser(c echo.Context, userID, role string) echo.Context {
	c.Set("user_id", userID)
	c.Set("role", role)
	return c
}

// httpCode returns the status carried by an *echo.HTTPError, or 0.
func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

type stubTrackingService struct {
	trackFn func(ctx context.Context, in ports.TrackInput) (*ports.TrackResult, error)
}

func (s *stubTrackingService) Track(ctx context.Context, in ports.TrackInput) (*ports.TrackResult, error) {
	return s.trackFn(ctx, in)
}

type stubShipmentService struct {
	listFn     func(ctx context.Context, in ports.ListShipmentsInput) (*ports.ListShipmentsResult, error)
	getFn      func(ctx context.Context, in ports.GetShipmentInput) (*ports.ShipmentDetail, error)
	setLabelFn func(ctx context.Context, in ports.GetShipmentInput, label string) (*domain.Shipment, error)
}

func (s *stubShipmentService) ListShipments(ctx context.Context, in ports.ListShipmentsInput) (*ports.ListShipmentsResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubShipmentService) GetShipment(ctx context.Context, in ports.GetShipmentInput) (*ports.ShipmentDetail, error) {
	return s.getFn(ctx, in)
}

func (s *stubShipmentService) SetLabel(ctx context.Context, in ports.GetShipmentInput, label string) (*domain.Shipment, error) {
	return s.setLabelFn(ctx, in, label)
}

type stubEnqueuer struct {
	reqs   []ports.RefreshRequest
	reject bool
}

func (s *stubEnqueuer) Enqueue(req ports.RefreshRequest) bool {
	if s.reject {
		return false
	}
	s.reqs = append(s.reqs, req)
	return true
}

type stubSummarizer struct {
	summarizeFn func(ctx context.Context, events []domain.TrackingEvent) (*domain.Summary, error)
}

func (s *stubSummarizer) Summarize(ctx context.Context, events []domain.TrackingEvent) (*domain.Summary, error) {
	return s.summarizeFn(ctx, events)
}

type stubNotificationService struct {
	subscribeFn func(ctx context.Context, userID string, in ports.SubscribeInput) (*domain.NotificationSettings, error)
}

func (s *stubNotificationService) Subscribe(ctx context.Context, userID string, in ports.SubscribeInput) (*domain.NotificationSettings, error) {
	return s.subscribeFn(ctx, userID, in)
}

type stubShopRepo struct {
	shops    map[string]*domain.Shop
	lastSlug string
}

func (r *stubShopRepo) FindBySlug(_ context.Context, slug string) (*domain.Shop, error) {
	r.lastSlug = slug
	shop, ok := r.shops[slug]
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	return shop, nil
}
