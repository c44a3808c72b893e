package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasktree/internal/clock"
	"tasktree/internal/service"
)

// DefaultInterval is the tick interval used when Start gets a
// non-positive one.
const DefaultInterval = time.Second

// FlushFunc delivers a batch to the backing store. The coordinator only
// waits for it to return; retries are the function's business.
type FlushFunc func(ctx context.Context, batch []Descriptor) error

// State is the coordinator's lifecycle state.
type State int

const (
	// StateIdle means no ticker is running.
	StateIdle State = iota

	// StateArmed means ticks are running and no flush is in flight.
	StateArmed

	// StateFlushing means ticks are running and a flush is in flight.
	StateFlushing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// Coordinator queues descriptors and flushes them on each tick.
//
// On a tick, if no flush is in flight and the queue is non-empty, the
// whole queue is taken as one batch and handed to the flush function in
// its own goroutine. Descriptors enqueued meanwhile wait for a later tick,
// so a flush never observes a growing batch and at most one flush runs at
// a time. A failed flush does not re-enqueue its batch.
type Coordinator struct {
	flush        FlushFunc
	clock        clock.Clock
	logger       *slog.Logger
	flushTimeout time.Duration

	mu       sync.Mutex
	queue    []Descriptor
	flushing bool
	inflight chan struct{} // closed when the current flush returns
	stop     chan struct{} // non-nil while armed

	// onTick runs after every processed tick. Tests use it to
	// synchronise with the loop goroutine.
	onTick func()
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock that drives ticks.
func WithClock(c clock.Clock) Option {
	return func(co *Coordinator) {
		co.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(co *Coordinator) {
		co.logger = l
	}
}

// WithFlushTimeout bounds each flush call. Zero means no bound.
func WithFlushTimeout(d time.Duration) Option {
	return func(co *Coordinator) {
		co.flushTimeout = d
	}
}

// NewCoordinator creates an idle coordinator around flush.
func NewCoordinator(flush FlushFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		flush:  flush,
		clock:  clock.Real(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enqueue appends d to the queue. Invalid descriptors, including those
// with no payloads, are dropped and Enqueue returns false.
func (c *Coordinator) Enqueue(d Descriptor) bool {
	if err := d.Validate(); err != nil {
		c.logger.Debug("descriptor dropped", "action", d.Action, "error", err)
		return false
	}
	d.Payloads = append([]service.Task(nil), d.Payloads...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, d)
	return true
}

// Len returns the number of queued descriptors.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// State returns the lifecycle state. A flush that outlives Stop does not
// keep the coordinator out of StateIdle.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.stop == nil:
		return StateIdle
	case c.flushing:
		return StateFlushing
	default:
		return StateArmed
	}
}

// Start begins ticking every interval (DefaultInterval if interval <= 0).
func (c *Coordinator) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return ErrAlreadyStarted
	}
	stop := make(chan struct{})
	c.stop = stop
	ticker := c.clock.NewTicker(interval)
	go c.loop(ticker, stop)

	c.logger.Debug("dispatch coordinator started", "interval", interval)
	return nil
}

// Stop cancels future ticks. Queued descriptors are kept for a later
// Start or Drain. A flush already in flight is not cancelled; use Wait to
// wait for it.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
	c.logger.Debug("dispatch coordinator stopped", "queued", len(c.queue))
}

// Wait blocks until no flush is in flight or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	ch := c.inflight
	c.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain waits for any in-flight flush, then flushes whatever is queued
// in the caller's goroutine and returns the flush error. It is meant for
// shutdown, usually after Stop.
func (c *Coordinator) Drain(ctx context.Context) error {
	for {
		if err := c.Wait(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		if c.flushing {
			// A tick won the race for the next flush.
			c.mu.Unlock()
			continue
		}
		batch, done := c.takeLocked()
		c.mu.Unlock()
		if batch == nil {
			return nil
		}
		return c.run(ctx, batch, done)
	}
}

func (c *Coordinator) loop(ticker *clock.Ticker, stop chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.tick(stop)
		}
	}
}

func (c *Coordinator) tick(stop chan struct{}) {
	c.mu.Lock()
	var (
		batch []Descriptor
		done  chan struct{}
	)
	// A tick racing with Stop belongs to a loop that is already cancelled.
	current := c.stop == stop
	if current && !c.flushing {
		batch, done = c.takeLocked()
	}
	hook := c.onTick
	c.mu.Unlock()

	if batch != nil {
		go func() {
			_ = c.run(context.Background(), batch, done)
		}()
	}
	if current && hook != nil {
		hook()
	}
}

// takeLocked snapshots and clears the queue and marks a flush in flight.
// Returns a nil batch when the queue is empty. c.mu must be held.
func (c *Coordinator) takeLocked() ([]Descriptor, chan struct{}) {
	if len(c.queue) == 0 {
		return nil, nil
	}
	batch := c.queue
	c.queue = nil
	c.flushing = true
	c.inflight = make(chan struct{})
	return batch, c.inflight
}

// run invokes the flush function and always clears the flushing flag.
func (c *Coordinator) run(ctx context.Context, batch []Descriptor, done chan struct{}) (err error) {
	id := uuid.NewString()
	start := c.clock.Now()
	log := c.logger.With("batch", id, "descriptors", len(batch))
	log.Debug("flush started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFlushPanic, r)
		}
		if err != nil {
			log.Warn("flush failed", "error", err)
		} else {
			log.Debug("flush finished", "elapsed", c.clock.Now().Sub(start))
		}
		c.mu.Lock()
		c.flushing = false
		c.inflight = nil
		c.mu.Unlock()
		close(done)
	}()

	// The flush cannot be cancelled once started.
	ctx = context.WithoutCancel(ctx)
	if c.flushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.flushTimeout)
		defer cancel()
	}
	return c.flush(ctx, batch)
}
