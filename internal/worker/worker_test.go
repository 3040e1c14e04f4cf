package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

// stubService records the payloads it receives and returns a canned result
// or panics on demand. When started/release are set, Compute signals entry
// and then blocks until release is closed.
type stubService struct {
	lastPayload *models.ComputePayload
	result      *models.PerformanceResult
	err         error
	panicWith   any
	started     chan struct{}
	release     chan struct{}
}

func (s *stubService) Compute(_ context.Context, payload *models.ComputePayload) (*models.PerformanceResult, error) {
	s.lastPayload = payload
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.result, s.err
}

func (s *stubService) ReduceActivities(_ []models.Activity) []models.Snapshot { return nil }

func (s *stubService) RenderChart(_ *models.PerformanceResult) ([]byte, error) { return nil, nil }

func validRequest() *models.ComputeRequest {
	return &models.ComputeRequest{
		ID:   "req-1",
		Type: models.ComputeRequestType,
		Payload: &models.ComputePayload{
			Snapshots: map[string][]models.Snapshot{
				"p1": {{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), NumShares: map[string]float64{}}},
			},
			StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			BaseCurrency: "USD",
		},
	}
}

func TestWorkerProcess_Success(t *testing.T) {
	svc := &stubService{result: &models.PerformanceResult{ValueSeries: models.NewTimeSeries()}}
	w := NewWorker(svc, common.NewSilentLogger(), nil)

	resp := w.Process(context.Background(), validRequest())

	require.NotNil(t, resp)
	assert.Equal(t, "req-1", resp.ID)
	assert.Equal(t, models.ComputeRequestType, resp.Type)
	assert.NotNil(t, resp.Payload)
}

func TestWorkerProcess_AssignsRequestID(t *testing.T) {
	svc := &stubService{result: &models.PerformanceResult{}}
	w := NewWorker(svc, common.NewSilentLogger(), nil)

	req := validRequest()
	req.ID = ""
	resp := w.Process(context.Background(), req)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, req.ID, resp.ID)
}

func TestWorkerProcess_NormalizesDateRange(t *testing.T) {
	svc := &stubService{result: &models.PerformanceResult{}}
	w := NewWorker(svc, common.NewSilentLogger(), nil)

	req := validRequest()
	req.Payload.StartDate = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	req.Payload.EndDate = time.Date(2024, 1, 31, 16, 0, 0, 0, time.UTC)
	w.Process(context.Background(), req)

	require.NotNil(t, svc.lastPayload)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), svc.lastPayload.StartDate)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), svc.lastPayload.EndDate)
}

func TestWorkerProcess_InvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ComputeRequest)
	}{
		{"wrong type", func(r *models.ComputeRequest) { r.Type = "compute-signals" }},
		{"nil payload", func(r *models.ComputeRequest) { r.Payload = nil }},
		{"no snapshots", func(r *models.ComputeRequest) { r.Payload.Snapshots = nil }},
		{"no base currency", func(r *models.ComputeRequest) { r.Payload.BaseCurrency = "" }},
		{"zero start date", func(r *models.ComputeRequest) { r.Payload.StartDate = time.Time{} }},
		{"zero end date", func(r *models.ComputeRequest) { r.Payload.EndDate = time.Time{} }},
		{"inverted range", func(r *models.ComputeRequest) {
			r.Payload.StartDate, r.Payload.EndDate = r.Payload.EndDate, r.Payload.StartDate
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{result: &models.PerformanceResult{}}
			w := NewWorker(svc, common.NewSilentLogger(), nil)

			req := validRequest()
			tt.mutate(req)
			resp := w.Process(context.Background(), req)

			require.NotNil(t, resp)
			assert.Equal(t, req.ID, resp.ID)
			assert.Nil(t, resp.Payload)
			// The service was never reached.
			assert.Nil(t, svc.lastPayload)
		})
	}
}

func TestWorkerProcess_ServiceError(t *testing.T) {
	svc := &stubService{err: fmt.Errorf("store unavailable")}
	w := NewWorker(svc, common.NewSilentLogger(), nil)

	resp := w.Process(context.Background(), validRequest())

	require.NotNil(t, resp)
	assert.Nil(t, resp.Payload)
}

func TestWorkerProcess_PanicIsolated(t *testing.T) {
	svc := &stubService{panicWith: "index out of range"}
	w := NewWorker(svc, common.NewSilentLogger(), nil)

	var resp *models.ComputeResponse
	require.NotPanics(t, func() {
		resp = w.Process(context.Background(), validRequest())
	})

	require.NotNil(t, resp)
	assert.Equal(t, "req-1", resp.ID)
	assert.Nil(t, resp.Payload)
}

func TestPool_ProcessesSubmissions(t *testing.T) {
	svc := &stubService{result: &models.PerformanceResult{}}
	w := NewWorker(svc, common.NewSilentLogger(), nil)
	pool := NewPool(w, common.NewSilentLogger(), 2)
	pool.Start()
	defer pool.Stop()

	resp := pool.Do(context.Background(), validRequest())

	require.NotNil(t, resp)
	assert.Equal(t, "req-1", resp.ID)
	assert.NotNil(t, resp.Payload)
}

func TestPool_DoHonorsContextCancellation(t *testing.T) {
	svc := &stubService{result: &models.PerformanceResult{}}
	w := NewWorker(svc, common.NewSilentLogger(), nil)
	pool := NewPool(w, common.NewSilentLogger(), 1)
	// Pool deliberately not started: no worker will pick the request up.

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := pool.Do(ctx, validRequest())
	require.NotNil(t, resp)
	assert.Nil(t, resp.Payload)
}

// Submissions still sitting in the queue when the pool shuts down must be
// answered rather than abandoned: a caller in Do with a non-cancellable
// context would otherwise block forever.
func TestPool_StopAnswersQueuedSubmissions(t *testing.T) {
	svc := &stubService{
		result:  &models.PerformanceResult{},
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	w := NewWorker(svc, common.NewSilentLogger(), nil)
	pool := NewPool(w, common.NewSilentLogger(), 1)
	pool.Start()

	// Occupy the sole worker with a computation that blocks until released.
	first := make(chan *models.ComputeResponse, 1)
	go func() { first <- pool.Do(context.Background(), validRequest()) }()
	<-svc.started

	// Queue two more submissions behind it.
	queued := make(chan *models.ComputeResponse, 2)
	for i := 0; i < 2; i++ {
		req := validRequest()
		req.ID = fmt.Sprintf("queued-%d", i)
		go func() { queued <- pool.Do(context.Background(), req) }()
	}
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	close(svc.release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	// Every queued submission gets a response, whether the worker happened
	// to pick it up before exiting or Stop answered it with a nil payload.
	for i := 0; i < 2; i++ {
		select {
		case resp := <-queued:
			require.NotNil(t, resp)
		case <-time.After(2 * time.Second):
			t.Fatal("queued submission left unanswered after Stop")
		}
	}

	resp := <-first
	require.NotNil(t, resp)
	assert.NotNil(t, resp.Payload)
}

func TestPool_MinimumOneWorker(t *testing.T) {
	svc := &stubService{result: &models.PerformanceResult{}}
	w := NewWorker(svc, common.NewSilentLogger(), nil)
	pool := NewPool(w, common.NewSilentLogger(), 0)
	pool.Start()
	defer pool.Stop()

	resp := pool.Do(context.Background(), validRequest())
	assert.NotNil(t, resp.Payload)
}
