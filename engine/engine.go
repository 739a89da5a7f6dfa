package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/fanout"
	"github.com/xraph/fanout/ext"
	"github.com/xraph/fanout/gate"
	"github.com/xraph/fanout/id"
	"github.com/xraph/fanout/job"
	mw "github.com/xraph/fanout/middleware"
	"github.com/xraph/fanout/processor"
)

// Engine runs jobs from a registry to completion against a supplied
// processor. Each Run call fans the job's items out to its own bounded
// worker pool in a background goroutine; different jobs run fully
// independently. The registry is the only channel of communication back
// to observers.
type Engine struct {
	registry    *job.Registry
	extensions  *ext.Registry
	gate        *gate.Gate
	chain       mw.Middleware
	logger      *slog.Logger
	concurrency int

	// shutdownTimeout bounds Close when the caller's context carries no
	// deadline of its own. Zero means wait indefinitely.
	shutdownTimeout time.Duration

	// Deferred option state, resolved in New.
	userMws     []mw.Middleware
	pendingExts []ext.Extension
	gateConfigs []gate.Config

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	mu     sync.Mutex
	closed bool
	runs   sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency sets the maximum number of items processed
// concurrently within a single run. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// WithConfig applies the engine-relevant settings from a fanout.Config:
// Concurrency bounds each run's worker pool and ShutdownTimeout bounds
// Close when the caller's context has no deadline. Retention settings
// are consumed by retention.NewSweeperFromConfig instead.
func WithConfig(cfg fanout.Config) Option {
	return func(e *Engine) {
		if cfg.Concurrency >= 1 {
			e.concurrency = cfg.Concurrency
		}
		e.shutdownTimeout = cfg.ShutdownTimeout
	}
}

// WithLogger sets the structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMiddleware adds middleware to the engine's per-item chain,
// inside the default stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(e *Engine) { e.userMws = append(e.userMws, m) }
}

// WithExtension registers a lifecycle extension with the engine.
func WithExtension(x ext.Extension) Option {
	return func(e *Engine) { e.pendingExts = append(e.pendingExts, x) }
}

// WithGateConfig enables the admission gate with the given per-operation
// (or engine-wide, for an empty Operation) limits.
func WithGateConfig(configs ...gate.Config) Option {
	return func(e *Engine) { e.gateConfigs = append(e.gateConfigs, configs...) }
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// If not set, the global otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) { e.meterProvider = mp }
}

// New creates an Engine over the given registry. The registry must
// outlive the engine; it is typically constructed once at process
// start and shared with whatever layer serves status reads.
func New(registry *job.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:    registry,
		logger:      slog.Default(),
		concurrency: fanout.DefaultConfig().Concurrency,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.extensions = ext.NewRegistry(e.logger)
	for _, x := range e.pendingExts {
		e.extensions.Register(x)
	}
	e.pendingExts = nil

	if len(e.gateConfigs) > 0 {
		e.gate = gate.New(e.gateConfigs...)
		e.gateConfigs = nil
	}

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if e.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(e.tracerProvider.Tracer("github.com/xraph/fanout"))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if e.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(e.meterProvider.Meter("github.com/xraph/fanout"))
	} else {
		metricsMw = mw.Metrics()
	}

	// Default middleware stack: recover → tracing → metrics → logging → scope.
	defaultMws := []mw.Middleware{
		mw.Recover(e.logger),
		tracingMw,
		metricsMw,
		mw.Logging(e.logger),
		mw.Scope(),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(e.userMws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, e.userMws...)
	e.chain = mw.Chain(allMws...)

	return e
}

// Registry returns the engine's job registry.
func (e *Engine) Registry() *job.Registry { return e.registry }

// Extensions returns the engine's extension registry.
func (e *Engine) Extensions() *ext.Registry { return e.extensions }

// CreateJob allocates a new pending job for the given owner, operation
// tag, and item list and returns its snapshot. The item list may be
// empty but not nil.
func (e *Engine) CreateJob(ctx context.Context, ownerID, operation string, items []string) (*job.Job, error) {
	if items == nil {
		return nil, fanout.ErrNilItems
	}

	j := e.registry.Create(ownerID, operation, items)
	e.extensions.EmitJobCreated(ctx, j)

	e.logger.Info("job created",
		slog.String("job_id", j.ID.String()),
		slog.String("owner_id", j.OwnerID),
		slog.String("operation", j.Operation),
		slog.Int("total", j.Total),
	)

	return j, nil
}

// Job returns a consistent snapshot of the job, or false for unknown or
// already-swept IDs. It never returns an error: polling an expired or
// mistyped ID is expected, not exceptional.
func (e *Engine) Job(jobID id.JobID) (*job.Job, bool) {
	return e.registry.Get(jobID)
}

// Run starts executing the job against the given processor and returns
// without waiting for completion. It fails fast with
// fanout.ErrJobNotFound for unknown IDs and fanout.ErrInvalidState if
// the job is not pending; after that, all outcomes are reported through
// the job record only.
func (e *Engine) Run(ctx context.Context, jobID id.JobID, proc processor.Processor) error {
	if proc == nil {
		return fanout.ErrNilProcessor
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fanout.ErrEngineClosed
	}
	e.runs.Add(1)
	e.mu.Unlock()

	j, err := e.registry.Start(jobID)
	if err != nil {
		e.runs.Done()
		return err
	}

	e.extensions.EmitJobStarted(ctx, j)
	e.logger.Info("job started",
		slog.String("job_id", j.ID.String()),
		slog.String("operation", j.Operation),
		slog.Int("total", j.Total),
		slog.Int("concurrency", e.concurrency),
	)

	// The run outlives the caller's request: detach from its
	// cancellation but keep its values (trace context, scope).
	go e.execute(context.WithoutCancel(ctx), j, proc)

	return nil
}

// execute fans the job's items out to a bounded pool and finalizes the
// record. Runs in its own goroutine; never propagates errors upward.
func (e *Engine) execute(ctx context.Context, j *job.Job, proc processor.Processor) {
	defer e.runs.Done()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("orchestration panic: %v", r)
			if failed, ok := e.registry.Fail(j.ID, msg); ok {
				e.extensions.EmitJobFailed(ctx, failed, errors.New(msg))
				e.logger.Error("job failed",
					slog.String("job_id", j.ID.String()),
					slog.String("error", msg),
				)
			}
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	for _, itemID := range j.Items {
		// Stop handing out items once the job leaves the running state
		// (cancelled or swept). Items already in a worker keep going
		// and still record their results.
		if st, ok := e.registry.StateOf(j.ID); !ok || st != job.StateRunning {
			break
		}

		g.Go(func() error {
			e.processItem(ctx, j, itemID, proc)
			return nil
		})
	}

	// Workers never return errors; per-item failures live in the
	// result map.
	_ = g.Wait()

	if done, ok := e.registry.Complete(j.ID); ok {
		elapsed := time.Since(start)
		e.extensions.EmitJobCompleted(ctx, done, elapsed)
		e.logger.Info("job completed",
			slog.String("job_id", done.ID.String()),
			slog.String("operation", done.Operation),
			slog.Int("progress", done.Progress),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// processItem executes one item through the admission gate and the
// middleware chain, then records its result atomically.
func (e *Engine) processItem(ctx context.Context, j *job.Job, itemID string, proc processor.Processor) {
	if e.gate != nil {
		if err := e.gate.Acquire(ctx, j.Operation); err != nil {
			e.recordItem(ctx, j, itemID, 0, job.ItemResult{
				Success: false,
				Error:   fmt.Sprintf("admission: %v", err),
			})
			return
		}
		defer e.gate.Release(j.Operation)
	}

	start := time.Now()
	value, err := e.chain(ctx, j, itemID, func(ctx context.Context) (any, error) {
		return proc.Process(ctx, j.OwnerID, itemID)
	})
	elapsed := time.Since(start)

	e.recordItem(ctx, j, itemID, elapsed, deriveResult(value, err))
}

func (e *Engine) recordItem(ctx context.Context, j *job.Job, itemID string, elapsed time.Duration, res job.ItemResult) {
	if !e.registry.RecordResult(j.ID, itemID, res) {
		// The job was swept (or completed out from under us); the
		// record is gone, so there is nowhere to put this result.
		e.logger.Debug("item result dropped",
			slog.String("job_id", j.ID.String()),
			slog.String("item_id", itemID),
		)
		return
	}

	if res.Success {
		e.extensions.EmitItemCompleted(ctx, j, itemID, elapsed)
	} else {
		e.extensions.EmitItemFailed(ctx, j, itemID, errors.New(res.Error))
	}
}

// deriveResult maps a processor return into the recorded item result.
// An explicit success flag on the return value (processor.Outcome)
// wins; otherwise any normal return is a success.
func deriveResult(value any, err error) job.ItemResult {
	if err != nil {
		return job.ItemResult{Success: false, Error: err.Error()}
	}

	switch r := value.(type) {
	case processor.Result:
		return fromResult(r)
	case *processor.Result:
		if r == nil {
			return job.ItemResult{Success: true}
		}
		return fromResult(*r)
	}

	if o, ok := value.(processor.Outcome); ok && !o.Succeeded() {
		return job.ItemResult{Success: false, Error: "processor reported failure"}
	}

	return job.ItemResult{Success: true, Value: value}
}

// fromResult unwraps the explicit success convention: the value travels
// on success, the message on failure.
func fromResult(r processor.Result) job.ItemResult {
	if r.Success {
		return job.ItemResult{Success: true, Value: r.Value}
	}
	msg := r.Error
	if msg == "" {
		msg = "processor reported failure"
	}
	return job.ItemResult{Success: false, Error: msg}
}

// Cancel marks a pending or running job as failed with the standard
// cancellation message. Returns false if the job does not exist or is
// already terminal. Items already in a worker at the moment of
// cancellation keep running and may still record results; callers that
// need hard interruption must bound their processors themselves.
func (e *Engine) Cancel(ctx context.Context, jobID id.JobID) bool {
	j, ok := e.registry.Cancel(jobID)
	if !ok {
		return false
	}

	e.extensions.EmitJobCanceled(ctx, j)
	e.logger.Info("job canceled",
		slog.String("job_id", j.ID.String()),
		slog.String("operation", j.Operation),
		slog.Int("progress", j.Progress),
	)

	return true
}

// Cleanup removes finished jobs older than maxAge and returns the
// number removed. Pending and running jobs are never removed.
func (e *Engine) Cleanup(ctx context.Context, maxAge time.Duration) int {
	removed := e.registry.Sweep(maxAge)
	for _, j := range removed {
		e.extensions.EmitJobSwept(ctx, j)
	}

	if len(removed) > 0 {
		e.logger.Info("retention sweep",
			slog.Int("removed", len(removed)),
			slog.Duration("max_age", maxAge),
		)
	}

	return len(removed)
}

// Close stops accepting new runs and waits for in-flight runs to
// finish, bounded by ctx. Extensions receive the Shutdown hook either
// way. Job records survive Close; only the process owns their lifetime.
func (e *Engine) Close(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok && e.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.shutdownTimeout)
		defer cancel()
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.runs.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		e.logger.Info("engine stopped gracefully")
	case <-ctx.Done():
		e.logger.Warn("engine shutdown timed out with runs in flight")
		err = ctx.Err()
	}

	e.extensions.EmitShutdown(ctx)
	return err
}
