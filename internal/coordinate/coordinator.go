// Package coordinate drives refresh cycles and publishes snapshots.
package coordinate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/poliswatch/internal/aggregate"
	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/metrics"
)

// State is the coordinator's lifecycle position.
type State string

const (
	// StateIdle means no refresh is executing.
	StateIdle State = "idle"
	// StateFetching means a refresh cycle is in flight.
	StateFetching State = "fetching"
)

// Status is a point-in-time picture of the coordinator.
type Status struct {
	State       State      `json:"state"`
	Available   bool       `json:"available"`
	Interval    string     `json:"interval"`
	Cycles      uint64     `json:"cycles"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Runner executes one refresh cycle.
type Runner interface {
	Run(ctx context.Context, opts aggregate.Options) (*domain.Snapshot, error)
}

// Listener receives each newly published snapshot.
type Listener func(snap *domain.Snapshot)

// refreshCall is one in-flight refresh shared by coalesced requesters.
type refreshCall struct {
	done chan struct{}
	snap *domain.Snapshot
	err  error
}

// Coordinator schedules refresh cycles, coalesces on-demand requests
// into the in-flight one, and atomically publishes snapshots. A failed
// cycle keeps the prior snapshot and never stops the schedule.
type Coordinator struct {
	runner  Runner
	log     logger.Interface
	metrics *metrics.Metrics

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	opts        aggregate.Options
	interval    time.Duration
	entryID     cron.EntryID
	state       State
	available   bool
	lastErr     error
	lastSuccess time.Time
	cycles      uint64
	snapshot    *domain.Snapshot
	inflight    *refreshCall
	listeners   []Listener
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger attaches a logger.
func WithLogger(log logger.Interface) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New creates a coordinator over runner with the given aggregation
// options and tick interval.
func New(runner Runner, opts aggregate.Options, interval time.Duration, copts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		runner:   runner,
		log:      logger.NewNoOp(),
		metrics:  metrics.NewNoop(),
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		ctx:      ctx,
		cancel:   cancel,
		opts:     opts,
		interval: interval,
		state:    StateIdle,
	}

	for _, opt := range copts {
		opt(c)
	}

	return c
}

// Start begins scheduling ticks and runs one immediate refresh. A
// failed initial refresh surfaces through Status, not as an error, and
// scheduling continues regardless.
func (c *Coordinator) Start(ctx context.Context) error {
	c.log.Info("starting refresh coordinator", "interval", c.interval.String())

	c.mu.Lock()
	c.entryID = c.cron.Schedule(cron.Every(c.interval), cron.FuncJob(c.tick))
	c.mu.Unlock()

	c.cron.Start()

	if _, err := c.Refresh(ctx); err != nil {
		c.log.Warn("initial refresh failed", "error", err.Error())
	}

	return nil
}

// Stop halts scheduling and waits for any running tick to drain.
func (c *Coordinator) Stop() {
	c.log.Info("stopping refresh coordinator")

	c.cancel()

	stopCtx := c.cron.Stop()
	<-stopCtx.Done()

	c.log.Info("refresh coordinator stopped")
}

// Refresh runs a refresh cycle, or joins the one already in flight and
// returns that cycle's result. The cycle itself executes under the
// coordinator's lifecycle context; ctx only bounds the caller's wait.
func (c *Coordinator) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()

	if call := c.inflight; call != nil {
		c.mu.Unlock()

		select {
		case <-call.done:
			return call.snap, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.state = StateFetching
	opts := c.opts
	c.mu.Unlock()

	snap, err := c.execute(opts)

	c.mu.Lock()
	call.snap, call.err = snap, err
	c.inflight = nil
	c.mu.Unlock()

	close(call.done)

	return snap, err
}

// Snapshot returns the most recently published snapshot, which is nil
// before the first successful refresh.
func (c *Coordinator) Snapshot() *domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot
}

// Status reports the coordinator's current state.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{
		State:     c.state,
		Available: c.available,
		Interval:  c.interval.String(),
		Cycles:    c.cycles,
	}

	if !c.lastSuccess.IsZero() {
		ts := c.lastSuccess
		st.LastSuccess = &ts
	}

	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}

	return st
}

// Options returns the aggregation options and interval in effect.
func (c *Coordinator) Options() (aggregate.Options, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.opts, c.interval
}

// Subscribe registers fn for successful refreshes. Delivery is
// asynchronous; a slow listener never delays publication.
func (c *Coordinator) Subscribe(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, fn)
}

// Update replaces the aggregation options and reschedules the tick
// interval. The next cycle picks up the new options; a cycle already
// in flight finishes under the old ones.
func (c *Coordinator) Update(opts aggregate.Options, interval time.Duration) {
	c.mu.Lock()
	c.opts = opts
	reschedule := interval > 0 && interval != c.interval

	if reschedule {
		c.interval = interval
	}

	entryID := c.entryID
	c.mu.Unlock()

	if !reschedule {
		return
	}

	c.cron.Remove(entryID)
	newID := c.cron.Schedule(cron.Every(interval), cron.FuncJob(c.tick))

	c.mu.Lock()
	c.entryID = newID
	c.mu.Unlock()

	c.log.Info("refresh interval updated", "interval", interval.String())
}

// tick is the scheduled entry point.
func (c *Coordinator) tick() {
	if _, err := c.Refresh(c.ctx); err != nil {
		c.log.Warn("scheduled refresh failed", "error", err.Error())
	}
}

// execute runs one cycle and publishes its outcome.
func (c *Coordinator) execute(opts aggregate.Options) (*domain.Snapshot, error) {
	cycle := uuid.NewString()
	started := time.Now()

	c.log.Info("refresh started", "cycle", cycle, "areas", len(opts.Areas))

	// The per-request timeouts inside the runner bound the cycle; the
	// coordinator context only ends it on shutdown.
	snap, err := c.runner.Run(c.ctx, opts)
	elapsed := time.Since(started)

	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.cycles++
		c.available = false
		c.lastErr = err
		c.mu.Unlock()

		c.metrics.RecordRefresh(metrics.ResultFailed, elapsed.Seconds())
		c.log.Error("refresh failed, keeping previous snapshot",
			"cycle", cycle,
			"elapsed", elapsed.String(),
			"error", err.Error(),
		)

		return nil, err
	}

	snap.Cycle = cycle

	c.mu.Lock()
	c.state = StateIdle
	c.cycles++
	c.snapshot = snap
	c.available = true
	c.lastErr = nil
	c.lastSuccess = snap.GeneratedAt

	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	c.metrics.RecordRefresh(metrics.ResultSucceeded, elapsed.Seconds())
	c.metrics.RecordRefreshTime(snap.GeneratedAt.Unix())
	c.log.Info("refresh succeeded",
		"cycle", cycle,
		"elapsed", elapsed.String(),
	)

	for _, fn := range listeners {
		go fn(snap)
	}

	return snap, nil
}
