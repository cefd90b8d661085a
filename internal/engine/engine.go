package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ljmurray/squircle/internal/geom"
	"github.com/ljmurray/squircle/internal/protocol"
)

// DefaultTimeout is the dispatch budget for a single request when the
// configuration does not override it.
const DefaultTimeout = 10 * time.Second

// Sentinel errors returned inside Result.Err.
var (
	// ErrTimeout means the worker did not answer within the dispatch budget.
	ErrTimeout = errors.New("dispatch timed out")

	// ErrWorkerFailed means the worker process failed while requests were in
	// flight; every pending request is rejected with it.
	ErrWorkerFailed = errors.New("worker failed")

	// ErrWorkerUnavailable means the worker could not be created. Calls are
	// served by the synchronous fallback instead of surfacing it.
	ErrWorkerUnavailable = errors.New("worker unavailable")
)

// Execution strategies reported in Result.Strategy.
const (
	StrategyWorker   = "worker"
	StrategyFallback = "fallback"
)

// Result is the outcome of one generation request.
type Result struct {
	PathData string
	Strategy string
	Err      error
}

// Transport sends dispatch requests to an execution context. Send runs on
// the requesting goroutine, so implementations must not stall on a slow
// peer: bound the write (the frames are a few hundred bytes) or fail fast
// and let the engine fall back.
type Transport interface {
	Send(req protocol.Request) error
	Close() error
}

// TransportFactory creates a transport wired to the given callbacks.
// onResponse receives every response frame; onFailure reports a
// context-level failure at most once. The engine calls the factory lazily,
// on the first request that needs a worker.
type TransportFactory func(onResponse func(protocol.Response), onFailure func(error)) (Transport, error)

// Config holds engine construction parameters.
type Config struct {
	// Timeout bounds each dispatched request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Factory creates the worker transport. A nil factory disables the
	// worker entirely; every call is served by the synchronous fallback.
	Factory TransportFactory
}

// Engine correlates asynchronous generation requests with worker responses
// and degrades to direct computation when the worker is unusable.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	seq       atomic.Uint64
	completed atomic.Uint64
	fallbacks atomic.Uint64
	timeouts  atomic.Uint64

	mu        sync.Mutex
	transport Transport
	spawnErr  error // latched construction failure; cleared only by Terminate
	pending   map[string]*pendingEntry
}

// pendingEntry tracks one in-flight request. Exactly one of the resolution
// paths (matching response, timeout, or worker failure) removes it from
// the table and delivers into ch.
type pendingEntry struct {
	mode  string
	start time.Time
	ch    chan Result
	timer *time.Timer
}

// New creates an engine. The worker is not spawned until the first
// asynchronous request needs it.
func New(cfg Config, logger *slog.Logger) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		pending: make(map[string]*pendingEntry),
	}
}

// GeneratePathAsync requests a symmetric outline. The returned channel
// delivers exactly one Result, unless Terminate abandons the request first.
func (e *Engine) GeneratePathAsync(width, height, exponent float64) <-chan Result {
	req := protocol.Request{
		Type:     protocol.TypeSymmetric,
		Width:    width,
		Height:   height,
		Exponent: exponent,
	}
	return e.dispatch(req, modeSymmetric, func() string {
		return geom.Generate(geom.Params{Width: width, Height: height, Exponent: exponent})
	})
}

// GeneratePerCornerPathAsync requests an outline with independent per-corner
// exponents. Delivery semantics match GeneratePathAsync.
func (e *Engine) GeneratePerCornerPathAsync(width, height float64, corners geom.CornerExponents) <-chan Result {
	c := corners
	req := protocol.Request{
		Type:    protocol.TypeAsymmetric,
		Width:   width,
		Height:  height,
		Corners: &c,
	}
	return e.dispatch(req, modeAsymmetric, func() string {
		return geom.GeneratePerCorner(width, height, corners)
	})
}

// GeneratePathSync computes a symmetric outline directly on the caller's
// goroutine, bypassing the worker.
func (e *Engine) GeneratePathSync(width, height, exponent float64) string {
	return geom.Generate(geom.Params{Width: width, Height: height, Exponent: exponent})
}

// GeneratePerCornerPathSync computes a per-corner outline directly on the
// caller's goroutine, bypassing the worker.
func (e *Engine) GeneratePerCornerPathSync(width, height float64, corners geom.CornerExponents) string {
	return geom.GeneratePerCorner(width, height, corners)
}

// GeneratePath awaits the asynchronous result, honoring ctx cancellation.
func (e *Engine) GeneratePath(ctx context.Context, width, height, exponent float64) (Result, error) {
	return await(ctx, e.GeneratePathAsync(width, height, exponent))
}

// GeneratePerCornerPath awaits the asynchronous result, honoring ctx cancellation.
func (e *Engine) GeneratePerCornerPath(ctx context.Context, width, height float64, corners geom.CornerExponents) (Result, error) {
	return await(ctx, e.GeneratePerCornerPathAsync(width, height, corners))
}

func await(ctx context.Context, ch <-chan Result) (Result, error) {
	select {
	case res := <-ch:
		return res, res.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// dispatch routes one request: through the worker when one is available,
// through direct computation otherwise. direct must be the synchronous
// equivalent of req.
func (e *Engine) dispatch(req protocol.Request, mode string, direct func() string) <-chan Result {
	ch := make(chan Result, 1)

	t, err := e.acquireTransport()
	if err != nil {
		e.fallback(ch, mode, direct)
		return ch
	}

	id := e.nextID()
	req.ID = id

	e.mu.Lock()
	entry := &pendingEntry{
		mode:  mode,
		start: time.Now(),
		ch:    ch,
		timer: time.AfterFunc(e.cfg.Timeout, func() { e.expire(id) }),
	}
	e.pending[id] = entry
	pendingRequests.Inc()
	e.mu.Unlock()

	if err := t.Send(req); err != nil {
		// Per-call fallback: only this request degrades. The worker may
		// still serve others, or fail on its own and reject them all.
		// Fall back only while this call still owns the entry; if take
		// returns nil the request already concluded through another path
		// (worker failure or timeout) and its result is in the channel.
		if e.take(id) == nil {
			e.logger.Warn("dispatch send failed after request concluded", "id", id, "error", err)
			return ch
		}
		pendingRequests.Dec()
		e.logger.Warn("dispatch send failed, using fallback", "id", id, "error", err)
		e.fallback(ch, mode, direct)
	}

	return ch
}

// acquireTransport returns the live transport, creating it on first use.
// A construction failure is latched: every later call short-circuits to the
// fallback until Terminate resets the engine.
func (e *Engine) acquireTransport() (Transport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transport != nil {
		return e.transport, nil
	}
	if e.spawnErr != nil {
		return nil, e.spawnErr
	}
	if e.cfg.Factory == nil {
		return nil, ErrWorkerUnavailable
	}

	t, err := e.cfg.Factory(e.handleResponse, e.handleFailure)
	if err != nil {
		e.spawnErr = fmt.Errorf("%w: %v", ErrWorkerUnavailable, err)
		e.logger.Error("worker creation failed, all requests will use fallback", "error", err)
		return nil, e.spawnErr
	}

	e.transport = t
	return t, nil
}

// handleResponse resolves the pending entry matching the response ID. A
// response with no entry, because its request already timed out or was abandoned,
// is logged and dropped.
func (e *Engine) handleResponse(resp protocol.Response) {
	entry := e.take(resp.ID)
	if entry == nil {
		e.logger.Warn("response for unknown request id", "id", resp.ID)
		return
	}
	pendingRequests.Dec()

	if resp.Error != "" {
		requestsTotal.WithLabelValues(entry.mode, outcomeError).Inc()
		entry.ch <- Result{Strategy: StrategyWorker, Err: fmt.Errorf("generate: %s", resp.Error)}
		return
	}

	e.completed.Add(1)
	requestsTotal.WithLabelValues(entry.mode, outcomeOK).Inc()
	dispatchDuration.WithLabelValues(entry.mode).Observe(time.Since(entry.start).Seconds())
	entry.ch <- Result{PathData: resp.PathData, Strategy: StrategyWorker}
}

// expire rejects a single request whose timeout fired before its response
// arrived. Other in-flight requests are untouched.
func (e *Engine) expire(id string) {
	entry := e.take(id)
	if entry == nil {
		return
	}
	pendingRequests.Dec()

	e.timeouts.Add(1)
	requestsTotal.WithLabelValues(entry.mode, outcomeTimeout).Inc()
	e.logger.Warn("request timed out", "id", id, "timeout", e.cfg.Timeout)
	entry.ch <- Result{Strategy: StrategyWorker, Err: fmt.Errorf("request %s: %w", id, ErrTimeout)}
}

// handleFailure implements the fail-the-batch policy: a broken worker
// cannot be trusted for any in-flight request, so every pending entry is
// rejected and the table cleared. The dead transport is discarded; the next
// request lazily spawns a fresh worker.
func (e *Engine) handleFailure(err error) {
	e.mu.Lock()
	t := e.transport
	e.transport = nil
	orphaned := e.pending
	e.pending = make(map[string]*pendingEntry)
	e.mu.Unlock()

	if t != nil {
		t.Close()
	}

	e.logger.Error("worker failure, rejecting all pending requests",
		"pending", len(orphaned), "error", err)

	for id, entry := range orphaned {
		entry.timer.Stop()
		pendingRequests.Dec()
		requestsTotal.WithLabelValues(entry.mode, outcomeWorkerFailure).Inc()
		entry.ch <- Result{Strategy: StrategyWorker, Err: fmt.Errorf("request %s: %w: %v", id, ErrWorkerFailed, err)}
	}
}

// Terminate tears the engine down: the worker is killed, pending requests
// are abandoned (their channels never deliver), and the construction-failure
// latch is cleared. The engine stays usable; the next request recreates
// the worker lazily.
func (e *Engine) Terminate() {
	e.mu.Lock()
	t := e.transport
	e.transport = nil
	e.spawnErr = nil
	orphaned := e.pending
	e.pending = make(map[string]*pendingEntry)
	e.mu.Unlock()

	for _, entry := range orphaned {
		entry.timer.Stop()
		pendingRequests.Dec()
	}
	if t != nil {
		t.Close()
	}
	if len(orphaned) > 0 {
		e.logger.Info("terminated with requests in flight", "abandoned", len(orphaned))
	}
}

// fallback serves one request by direct computation on the caller's goroutine.
func (e *Engine) fallback(ch chan Result, mode string, direct func() string) {
	start := time.Now()
	path := direct()

	e.fallbacks.Add(1)
	fallbackTotal.Inc()
	requestsTotal.WithLabelValues(mode, outcomeOK).Inc()
	dispatchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	ch <- Result{PathData: path, Strategy: StrategyFallback}
}

// take removes and returns the pending entry for id, stopping its timer.
// Returns nil if the entry was already resolved.
func (e *Engine) take(id string) *pendingEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.pending[id]
	if !ok {
		return nil
	}
	delete(e.pending, id)
	entry.timer.Stop()
	return entry
}

// nextID mints a correlation ID from a ULID (timestamp plus entropy) and a
// monotonic counter, so IDs cannot collide even across process restarts.
func (e *Engine) nextID() string {
	return fmt.Sprintf("%s-%d", ulid.Make().String(), e.seq.Add(1))
}
