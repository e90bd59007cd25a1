package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/trackflow/tracking-service/internal/core/carrier"
	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

// lookupTimeout bounds one shared lookup run.
const lookupTimeout = 2 * time.Minute

// TrackingDeps groups the collaborators of TrackingService. Summarizer,
// Locker and Notifier are optional.
type TrackingDeps struct {
	Carriers   *carrier.Table
	Provider   ports.TrackingProvider
	Shipments  ports.ShipmentRepository
	Events     ports.EventRepository
	Tx         ports.TxRunner
	Summarizer ports.Summarizer
	Locker     ports.TrackingLocker
	Notifier   ports.StatusNotifier
	// BaseURL prefixes the tracking links sent with status notifications.
	BaseURL string
}

// TrackingService runs a tracking lookup end to end.
type TrackingService struct {
	deps  TrackingDeps
	group singleflight.Group
	now   func() time.Time
	log   zerolog.Logger
}

// NewTrackingService returns a TrackingService. A nil Carriers table falls
// back to the embedded default and a nil Tx runs writes without a transaction.
func NewTrackingService(deps TrackingDeps, log zerolog.Logger) *TrackingService {
	if deps.Carriers == nil {
		deps.Carriers = carrier.Default()
	}
	if deps.Tx == nil {
		deps.Tx = noTx{}
	}
	return &TrackingService{
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log,
	}
}

// Track looks up a tracking number with the provider and persists the result.
// Concurrent calls with identical input share one execution.
func (s *TrackingService) Track(ctx context.Context, in ports.TrackInput) (*ports.TrackResult, error) {
	number := carrier.Normalize(in.TrackingNumber)
	if number == "" {
		return nil, domain.ErrInvalidTrackingNumber
	}

	code := s.resolveCarrier(number, in.Carrier)
	ownerScope := ""
	if in.ScopeToOwner {
		ownerScope = in.OwnerID
	}

	// Unscoped lookups share one row per number, so the creating owner is
	// not part of the key: the first caller's owner is kept.
	key := strings.Join([]string{number, code, ownerScope, in.ShipmentID}, "|")
	ch := s.group.DoChan(key, func() (any, error) {
		// Detached from the starting caller; every caller waits on its own ctx.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return s.track(runCtx, number, code, in.OwnerID, ownerScope, in.ShipmentID)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("track %s: %w", number, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.log.Debug().Str("tracking_number", number).Msg("lookup coalesced")
		}
		return res.Val.(*ports.TrackResult), nil
	}
}

func (s *TrackingService) resolveCarrier(number, hint string) string {
	if hint = strings.ToLower(strings.TrimSpace(hint)); hint != "" {
		return hint
	}
	if code, ok := s.deps.Carriers.Detect(number); ok {
		return code
	}
	return carrier.Auto
}

func (s *TrackingService) track(ctx context.Context, number, code, ownerID, ownerScope, shipmentID string) (*ports.TrackResult, error) {
	log := s.log.With().Str("tracking_number", number).Str("carrier", code).Logger()

	if s.deps.Locker != nil {
		unlock, err := s.deps.Locker.Lock(ctx, number)
		if err != nil {
			log.Warn().Err(err).Msg("tracking lock unavailable, proceeding without it")
		} else {
			defer unlock()
		}
	}

	var pinned *domain.Shipment
	if shipmentID != "" {
		sh, err := s.deps.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			return nil, fmt.Errorf("track %s: load shipment %s: %w", number, shipmentID, err)
		}
		pinned = sh
	}

	resp, err := s.deps.Provider.Track(ctx, number, code)
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", number, err)
	}

	existing := pinned
	if existing == nil {
		existing, err = s.deps.Shipments.FindByTrackingNumber(ctx, number, ownerScope)
		if err != nil {
			if !errors.Is(err, domain.ErrShipmentNotFound) {
				return nil, fmt.Errorf("track %s: load shipment: %w", number, err)
			}
			existing = nil
		}
	}

	plan := Reconcile(existing, resp, ownerID, s.now())
	persisted := true

	switch plan.Action {
	case PlanCreate:
		if err := s.deps.Shipments.Create(ctx, plan.Shipment); err != nil {
			log.Error().Err(err).Msg("failed to create shipment")
			return nil, fmt.Errorf("track %s: create shipment: %w", number, err)
		}
		if len(plan.Events) > 0 {
			if err := s.deps.Events.InsertBatch(ctx, plan.Shipment.ID, plan.Events); err != nil {
				log.Warn().Err(err).Str("shipment_id", plan.Shipment.ID).Msg("failed to insert events")
				persisted = false
			}
		}
		log.Info().Str("shipment_id", plan.Shipment.ID).Str("owner_id", ownerID).Msg("shipment created")

	case PlanUpdate:
		err := s.deps.Tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.deps.Shipments.Update(txCtx, plan.Shipment); err != nil {
				return fmt.Errorf("update shipment: %w", err)
			}
			return s.replaceEvents(txCtx, plan.Shipment.ID, plan.Events)
		})
		if err != nil {
			log.Error().Err(err).Str("shipment_id", plan.Shipment.ID).Msg("shipment refresh not persisted")
			persisted = false
		} else {
			log.Info().
				Str("shipment_id", plan.Shipment.ID).
				Str("status", string(plan.Shipment.CurrentStatus)).
				Bool("status_changed", plan.StatusChanged).
				Msg("shipment refreshed")
		}
	}

	var summary *domain.Summary
	if len(plan.Events) > 0 && s.deps.Summarizer != nil {
		summary = s.enrich(ctx, plan, log)
	}

	if plan.StatusChanged && s.deps.Notifier != nil {
		s.notify(ctx, plan, log)
	}

	result := &ports.TrackResult{
		Shipment: plan.Shipment,
		Events:   plan.Events,
		Summary:  summary,
		Created:  plan.Action == PlanCreate,
	}
	if persisted {
		s.readBack(ctx, result, log)
	}
	return result, nil
}

func (s *TrackingService) replaceEvents(ctx context.Context, shipmentID string, events []domain.TrackingEvent) error {
	if err := s.deps.Events.DeleteByShipment(ctx, shipmentID); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}
	if err := s.deps.Events.InsertBatch(ctx, shipmentID, events); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}

// enrich never fails the lookup; on error the summary stays as stored.
func (s *TrackingService) enrich(ctx context.Context, plan ReconcilePlan, log zerolog.Logger) *domain.Summary {
	summary, err := s.deps.Summarizer.Summarize(ctx, plan.Events)
	if err != nil {
		log.Warn().Err(err).Msg("summary skipped")
		return nil
	}

	eta := summary.ParsedETA()
	plan.Shipment.AISummary = &summary.Summary
	plan.Shipment.EstimatedDelivery = eta
	if err := s.deps.Shipments.UpdateSummary(ctx, plan.Shipment.ID, &summary.Summary, eta); err != nil {
		log.Warn().Err(err).Str("shipment_id", plan.Shipment.ID).Msg("failed to store summary")
	}
	return summary
}

func (s *TrackingService) notify(ctx context.Context, plan ReconcilePlan, log zerolog.Logger) {
	sh := plan.Shipment
	change := domain.StatusChange{
		ShipmentID:     sh.ID,
		TrackingNumber: sh.TrackingNumber,
		CarrierCode:    sh.CarrierCode,
		Label:          sh.Label,
		OwnerID:        sh.OwnerID,
		PreviousStatus: plan.PreviousStatus,
		NewStatus:      sh.CurrentStatus,
		TrackingURL:    strings.TrimRight(s.deps.BaseURL, "/") + "/track/" + sh.TrackingNumber,
		OccurredAt:     sh.LastUpdated,
	}
	if len(plan.Events) > 0 {
		change.Location = plan.Events[0].Location
	}
	if err := s.deps.Notifier.PublishStatusChange(ctx, change); err != nil {
		log.Warn().Err(err).Msg("failed to publish status change")
	}
}

// readBack replaces the in-memory state with what storage returns. Read
// failures keep the in-memory state.
func (s *TrackingService) readBack(ctx context.Context, result *ports.TrackResult, log zerolog.Logger) {
	id := result.Shipment.ID
	if stored, err := s.deps.Shipments.FindByID(ctx, id); err == nil {
		result.Shipment = stored
	} else {
		log.Warn().Err(err).Str("shipment_id", id).Msg("failed to reload shipment")
	}
	if stored, err := s.deps.Events.ListByShipment(ctx, id); err == nil {
		result.Events = stored
	} else {
		log.Warn().Err(err).Str("shipment_id", id).Msg("failed to reload events")
	}
}

type noTx struct{}

func (noTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
