// Package worker implements the compute boundary: one-shot
// request/response processing of portfolio performance computations, with a
// bounded worker pool and panic isolation so a malformed request can never
// take the process down.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// Worker processes compute requests against a performance service.
type Worker struct {
	svc    interfaces.PerformanceService
	logger *common.Logger
	hub    *EventHub // optional; nil disables completion events
}

// NewWorker creates a worker. hub may be nil.
func NewWorker(svc interfaces.PerformanceService, logger *common.Logger, hub *EventHub) *Worker {
	return &Worker{svc: svc, logger: logger, hub: hub}
}

// Process handles exactly one request and always returns a response echoing
// the request's id and type. A request that fails validation, errors, or
// panics mid-computation produces a response with a nil payload; the caller
// distinguishes the cases from the logs, not the response.
func (w *Worker) Process(ctx context.Context, req *models.ComputeRequest) *models.ComputeResponse {
	start := time.Now()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	resp := &models.ComputeResponse{ID: req.ID, Type: req.Type}

	if err := validateRequest(req); err != nil {
		w.logger.Warn().
			Str("request_id", req.ID).
			Err(err).
			Msg("Rejected compute request")
		w.emit(req, false, start)
		return resp
	}

	// Day-align the range before computing so callers sending full
	// timestamps get the same series as callers sending dates.
	req.Payload.StartDate = models.Day(req.Payload.StartDate)
	req.Payload.EndDate = models.Day(req.Payload.EndDate)

	result, err := w.compute(ctx, req)
	if err != nil {
		w.logger.Error().
			Str("request_id", req.ID).
			Err(err).
			Msg("Compute request failed")
		w.emit(req, false, start)
		return resp
	}

	resp.Payload = result
	w.emit(req, true, start)
	return resp
}

// compute runs the service with panic recovery: a panic is converted into
// an error confined to this request.
func (w *Worker) compute(ctx context.Context, req *models.ComputeRequest) (result *models.PerformanceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Str("request_id", req.ID).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in compute request")
			result = nil
			err = fmt.Errorf("compute panicked: %v", r)
		}
	}()

	return w.svc.Compute(ctx, req.Payload)
}

func (w *Worker) emit(req *models.ComputeRequest, succeeded bool, start time.Time) {
	if w.hub == nil {
		return
	}
	portfolio := ""
	if req.Payload != nil {
		portfolio = req.Payload.PortfolioID
	}
	w.hub.Broadcast(models.ComputeEvent{
		RequestID:  req.ID,
		Portfolio:  portfolio,
		Succeeded:  succeeded,
		DurationMS: time.Since(start).Milliseconds(),
		Timestamp:  time.Now().UTC(),
	})
}

// validateRequest checks the request envelope before any computation runs.
func validateRequest(req *models.ComputeRequest) error {
	if req.Type != models.ComputeRequestType {
		return fmt.Errorf("unsupported request type %q", req.Type)
	}
	if req.Payload == nil {
		return fmt.Errorf("missing payload")
	}
	if len(req.Payload.Snapshots) == 0 {
		return fmt.Errorf("no portfolio snapshots in payload")
	}
	if req.Payload.BaseCurrency == "" {
		return fmt.Errorf("missing base currency")
	}
	if req.Payload.StartDate.IsZero() || req.Payload.EndDate.IsZero() {
		return fmt.Errorf("missing date range")
	}
	if req.Payload.EndDate.Before(req.Payload.StartDate) {
		return fmt.Errorf("end date precedes start date")
	}
	return nil
}

// submission pairs a queued request with its caller's reply channel.
type submission struct {
	ctx  context.Context
	req  *models.ComputeRequest
	resp chan *models.ComputeResponse
}

// Pool runs a fixed number of workers over a shared request queue.
type Pool struct {
	worker *Worker
	logger *common.Logger
	size   int

	queue  chan submission
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a pool of size workers. Size values below 1 are raised
// to 1.
func NewPool(worker *Worker, logger *common.Logger, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		worker: worker,
		logger: logger,
		size:   size,
		queue:  make(chan submission, size*2),
	}
}

// Start launches the worker goroutines. Safe to call once per pool.
func (p *Pool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.size; i++ {
		p.safeGo(fmt.Sprintf("compute-worker-%d", i), func() {
			p.runLoop(ctx)
		})
	}

	p.logger.Info().Int("workers", p.size).Msg("Compute worker pool started")
}

// Stop drains the pool: running computations finish, queued but unstarted
// submissions are answered with nil payloads. After the workers exit the
// queue may still hold submissions the cancelled loops never picked up, so
// they are answered here; their reply channels are buffered, so answering
// cannot block even when the caller already gave up.
func (p *Pool) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()

	for {
		select {
		case sub := <-p.queue:
			sub.resp <- &models.ComputeResponse{ID: sub.req.ID, Type: sub.req.Type}
		default:
			p.logger.Info().Msg("Compute worker pool stopped")
			return
		}
	}
}

// Do submits a request and blocks until its response or ctx cancellation.
// Cancellation before a worker picks the request up returns a nil-payload
// response.
func (p *Pool) Do(ctx context.Context, req *models.ComputeRequest) *models.ComputeResponse {
	sub := submission{ctx: ctx, req: req, resp: make(chan *models.ComputeResponse, 1)}

	select {
	case p.queue <- sub:
	case <-ctx.Done():
		return &models.ComputeResponse{ID: req.ID, Type: req.Type}
	}

	select {
	case resp := <-sub.resp:
		return resp
	case <-ctx.Done():
		return &models.ComputeResponse{ID: req.ID, Type: req.Type}
	}
}

func (p *Pool) runLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-p.queue:
			sub.resp <- p.worker.Process(sub.ctx, sub.req)
		}
	}
}

// safeGo runs fn on a tracked goroutine that logs instead of crashing on a
// panic. The goroutine is not restarted.
func (p *Pool) safeGo(name string, fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().
					Str("goroutine", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic in worker pool goroutine")
			}
		}()
		fn()
	}()
}
