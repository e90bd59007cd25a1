package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubShipmentRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Shipment
	seq       int
	lastScope string

	createErr  error
	updateErr  error
	summaryErr error

	updates       int
	summaryWrites int
}

func newStubShipmentRepo() *stubShipmentRepo {
	return &stubShipmentRepo{byID: make(map[string]*domain.Shipment)}
}

func (r *stubShipmentRepo) put(s *domain.Shipment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.byID[s.ID] = &clone
}

func (r *stubShipmentRepo) FindByTrackingNumber(_ context.Context, number, ownerID string) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastScope = ownerID
	for _, s := range r.byID {
		if s.TrackingNumber != number {
			continue
		}
		if ownerID != "" && s.OwnerID != ownerID {
			continue
		}
		clone := *s
		return &clone, nil
	}
	return nil, domain.ErrShipmentNotFound
}

func (r *stubShipmentRepo) FindByID(_ context.Context, id string) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubShipmentRepo) Create(_ context.Context, s *domain.Shipment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = fmt.Sprintf("shp-%d", r.seq)
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubShipmentRepo) Update(_ context.Context, s *domain.Shipment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrShipmentNotFound
	}
	r.updates++
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubShipmentRepo) UpdateSummary(_ context.Context, id string, summary *string, eta *time.Time) error {
	if r.summaryErr != nil {
		return r.summaryErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrShipmentNotFound
	}
	r.summaryWrites++
	s.AISummary = summary
	s.EstimatedDelivery = eta
	return nil
}

func (r *stubShipmentRepo) UpdateLabel(_ context.Context, id string, label *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrShipmentNotFound
	}
	s.Label = label
	return nil
}

func (r *stubShipmentRepo) List(_ context.Context, f ports.ListShipmentsFilter) ([]*domain.Shipment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Shipment
	for _, s := range r.byID {
		if f.OwnerID != "" && s.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && s.CurrentStatus != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(s.TrackingNumber, strings.ToUpper(f.Search)) {
			continue
		}
		clone := *s
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastUpdated.After(all[j].LastUpdated) })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], total, nil
}

func (r *stubShipmentRepo) ListStale(_ context.Context, before time.Time, limit int) ([]*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Shipment
	for _, s := range r.byID {
		if s.CurrentStatus.IsTerminal() || !s.LastUpdated.Before(before) {
			continue
		}
		clone := *s
		out = append(out, &clone)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubEventRepo struct {
	mu         sync.Mutex
	byShipment map[string][]domain.TrackingEvent
	insertErr  error
	deleteErr  error
	deletes    int
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{byShipment: make(map[string][]domain.TrackingEvent)}
}

func (r *stubEventRepo) DeleteByShipment(_ context.Context, shipmentID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.byShipment, shipmentID)
	return nil
}

func (r *stubEventRepo) InsertBatch(_ context.Context, shipmentID string, events []domain.TrackingEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range events {
		e.ID = fmt.Sprintf("%s-evt-%d", shipmentID, len(r.byShipment[shipmentID])+i)
		e.ShipmentID = shipmentID
		r.byShipment[shipmentID] = append(r.byShipment[shipmentID], e)
	}
	return nil
}

func (r *stubEventRepo) ListByShipment(_ context.Context, shipmentID string) ([]domain.TrackingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.TrackingEvent(nil), r.byShipment[shipmentID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubProvider struct {
	mu    sync.Mutex
	resp  *ports.ProviderResponse
	err   error
	calls []string // "number|carrier"

	// When release is set, Track signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Track(ctx context.Context, number, carrierCode string) (*ports.ProviderResponse, error) {
	if p.release != nil {
		p.entered <- struct{}{}
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, number+"|"+carrierCode)
	if p.err != nil {
		return nil, p.err
	}
	resp := *p.resp
	resp.TrackingNumber = number
	resp.CarrierCode = carrierCode
	return &resp, nil
}

type stubSummarizer struct {
	summary *domain.Summary
	err     error
	calls   int
}

func (s *stubSummarizer) Summarize(_ context.Context, _ []domain.TrackingEvent) (*domain.Summary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

type stubNotifier struct {
	changes []domain.StatusChange
	err     error
}

func (n *stubNotifier) PublishStatusChange(_ context.Context, c domain.StatusChange) error {
	n.changes = append(n.changes, c)
	return n.err
}

type stubLocker struct {
	err      error
	locked   []string
	released int
}

func (l *stubLocker) Lock(_ context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, key)
	return func() { l.released++ }, nil
}

type stubTx struct {
	runs int
}

func (t *stubTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.runs++
	return fn(ctx)
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }
