package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Loop is one fixed-period poll loop.
type Loop struct {
	// Name identifies the loop in logs.
	Name string

	// Interval is the wall-clock period between ticks.
	Interval time.Duration

	// Tick performs one fetch-diff-render cycle. It receives the scheduler's
	// context, which is cancelled on Stop.
	Tick func(ctx context.Context)
}

// Scheduler runs a set of [Loop] values until stopped.
//
// Every loop ticks once immediately on start and then on each period of its
// own ticker. Each tick runs in its own goroutine, so there is no
// backpressure: a tick that outlives its period overlaps the next one and
// whichever finishes last wins.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	loops  []Loop
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	// loopWG tracks ticker goroutines, tickWG in-flight ticks.
	loopWG sync.WaitGroup
	tickWG sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewScheduler creates a new [Scheduler].
//
// Returns an error if there are no loops or a loop has no tick function or
// a non-positive interval.
func NewScheduler(loops []Loop, logger *slog.Logger) (*Scheduler, error) {
	if len(loops) == 0 {
		return nil, errors.New("at least one loop is required")
	}
	for _, l := range loops {
		if l.Tick == nil {
			return nil, fmt.Errorf("loop %q: tick function is required", l.Name)
		}
		if l.Interval <= 0 {
			return nil, fmt.Errorf("loop %q: interval must be positive", l.Name)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		loops:  append([]Loop(nil), loops...),
		logger: logger,
	}, nil
}

// Start begins all loops in background goroutines.
//
// Start is non-blocking. If ctx is nil, context.Background() is used.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
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
	runCtx := s.ctx // capture under lock to avoid race
	s.loopWG.Add(len(s.loops))
	s.mu.Unlock()

	for _, l := range s.loops {
		go s.run(runCtx, l)
	}
}

// Stop cancels all loops and waits until every ticker goroutine and every
// in-flight tick has returned.
//
// Stop is idempotent and safe to call before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	// tickers first: once they are gone no new tick can be added
	s.loopWG.Wait()
	s.tickWG.Wait()
}

func (s *Scheduler) run(ctx context.Context, l Loop) {
	defer s.loopWG.Done()

	s.fire(ctx, l)

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx, l)
		}
	}
}

// fire launches one tick without waiting for it.
func (s *Scheduler) fire(ctx context.Context, l Loop) {
	if ctx.Err() != nil {
		return
	}
	s.tickWG.Add(1)
	go func() {
		defer s.tickWG.Done()
		s.safeTick(ctx, l)
	}()
}

// safeTick runs a tick with panic recovery. A panic is logged with its stack
// under a correlation id and does not stop the loop.
func (s *Scheduler) safeTick(ctx context.Context, l Loop) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tick panic",
				"loop", l.Name,
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	l.Tick(ctx)
}
