package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
)

// resultBuffer lets a few completed polls queue up while the consumer is
// busy applying an earlier one.
const resultBuffer = 4

// Result holds the outcome of one poll tick.
type Result struct {
	// Seq is the tick's sequence number, starting at 1.
	Seq uint64

	// URL is the status document URL that was requested.
	URL string

	// Status is the decoded document. Zero when Err is set.
	Status mcstatus.Status

	// Err is set on network, HTTP or decoding failure.
	Err error

	// Latency is the time taken by the HTTP request.
	Latency time.Duration

	// CheckedAt is when the request completed.
	CheckedAt time.Time

	// StatusCode is the HTTP status code, zero if no response arrived.
	StatusCode int
}

// Scheduler polls a single status URL at a fixed interval.
//
// The first poll is issued on Start, the next ones on every tick of the
// interval. Issuing a tick cancels the request of the previous one.
// Completed polls, including failed or cancelled ones, are emitted on
// [Scheduler.Results] in completion order; consumers compare [Result.Seq]
// with [Scheduler.Issued] to discard stale ones.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	url      string
	interval time.Duration
	timeout  time.Duration
	client   *Client
	clock    clockwork.Clock
	results  chan Result
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
	issued    uint64
	inflight  context.CancelFunc
}

// NewScheduler creates a new polling [Scheduler].
//
// Parameters:
//   - url: status document URL
//   - interval: time between poll ticks
//   - timeout: per-request timeout, zero for none
//   - clock: time source for the ticker and result timestamps
//   - logger: logger for poll diagnostics
func NewScheduler(url string, interval, timeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		url:      url,
		interval: interval,
		timeout:  timeout,
		client:   NewClient(),
		clock:    clock,
		results:  make(chan Result, resultBuffer),
		logger:   logger,
	}
}

// Results returns a receive-only channel that emits [Result] values.
//
// The channel is closed when the scheduler stops.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Issued returns the sequence number of the most recently issued tick, or
// zero before the first one.
func (s *Scheduler) Issued() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Start begins the polling loop in a background goroutine.
//
// Start is non-blocking and idempotent. If Stop was called before Start,
// Start is a no-op. If ctx is nil, context.Background() is used.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	pollCtx := s.ctx // capture under lock to avoid race

	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		// create the ticker before the first poll so an immediate tick and
		// the first interval are measured from the same instant
		ticker := s.clock.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick(pollCtx)

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.Chan():
				s.tick(pollCtx)
			}
		}
	}()
}

// Stop halts the scheduler and waits for the loop and every in-flight poll
// to finish, then closes the results channel.
//
// Stop is idempotent. Calling Stop before Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	if s.client != nil {
		s.client.Close()
	}

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// tick issues a new poll and cancels the previous one if still running.
func (s *Scheduler) tick(ctx context.Context) {
	reqCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.inflight != nil {
		s.inflight()
	}
	s.inflight = cancel
	s.issued++
	seq := s.issued
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		result := s.poll(reqCtx, seq)

		select {
		case s.results <- result:
		case <-ctx.Done():
		}
	}()
}

// poll fetches and decodes the status document once.
func (s *Scheduler) poll(ctx context.Context, seq uint64) Result {
	resp := s.client.Fetch(ctx, s.url, s.timeout)

	result := Result{
		Seq:        seq,
		URL:        s.url,
		Latency:    resp.Latency,
		CheckedAt:  s.clock.Now(),
		StatusCode: resp.StatusCode,
		Err:        resp.Error,
	}
	if result.Err != nil {
		return result
	}

	status, err := s.safeDecode(resp.Body)
	if err != nil {
		result.Err = err
		return result
	}
	result.Status = status
	return result
}

// safeDecode decodes the document with panic recovery. A panic is logged
// with a correlation ID and reported as an error carrying the same ID.
func (s *Scheduler) safeDecode(body []byte) (status mcstatus.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("status decode panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			status = mcstatus.Status{}
			err = fmt.Errorf("status decode panic (correlation_id: %s)", correlationID)
		}
	}()
	return mcstatus.Decode(body)
}
