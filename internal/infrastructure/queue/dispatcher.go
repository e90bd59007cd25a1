// Package queue runs background refreshes of stored shipments.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/trackflow/tracking-service/internal/api/metrics"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes refresh requests to a fixed set of workers using
// consistent hashing on the tracking number, so refreshes of one number never
// run concurrently inside the process.
type Dispatcher struct {
	workers []chan ports.RefreshRequest
	service ports.TrackingService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used; queueSize <= 0 means channelBuffer.
func NewDispatcher(numWorkers, queueSize int, service ports.TrackingService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = channelBuffer
	}
	d := &Dispatcher{
		workers: make([]chan ports.RefreshRequest, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.RefreshRequest, queueSize)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a request to the worker responsible for its tracking number.
// It never blocks: when that worker's queue is full the request is dropped
// and false is returned. The next refresh cycle picks the shipment up again.
func (d *Dispatcher) Enqueue(req ports.RefreshRequest) bool {
	idx := d.shardIndex(req.TrackingNumber)
	select {
	case d.workers[idx] <- req:
		metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.RefreshesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("tracking_number", req.TrackingNumber).
			Int("worker_id", idx).
			Msg("refresh queue full, request dropped")
		return false
	}
}

// shardIndex maps a tracking number deterministically to a worker index.
func (d *Dispatcher) shardIndex(trackingNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.RefreshRequest) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-ch:
			metrics.RefreshQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.refresh(ctx, id, req)
		}
	}
}

func (d *Dispatcher) refresh(ctx context.Context, id int, req ports.RefreshRequest) {
	_, err := d.service.Track(ctx, ports.TrackInput{
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.CarrierCode,
		OwnerID:        req.OwnerID,
		ScopeToOwner:   req.OwnerID != "",
		ShipmentID:     req.ShipmentID,
	})
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("tracking_number", req.TrackingNumber).
			Int("worker_id", id).
			Msg("refresh failed")
		return
	}
	metrics.RefreshesTotal.WithLabelValues("ok").Inc()
}
