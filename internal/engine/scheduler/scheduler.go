package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/genesisforge/internal/engine/terrain"
	"github.com/Faultbox/genesisforge/internal/logger"
)

// Config holds scheduler settings.
type Config struct {
	Workers     int       // 0 = GOMAXPROCS
	PendingWarn int       // warn once the pending table grows past this; 0 disables
	Generator   Generator // nil = Synthesize
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Workers   int
	Pending   int
	Queued    int
	Submitted uint64
	Completed uint64
	Cancelled uint64
	Dropped   uint64 // stale, duplicate or post-cancel results
}

// Scheduler dispatches generation requests to a worker pool. The pending
// table is the only state shared between submitters and workers.
type Scheduler struct {
	cfg Config
	gen Generator
	log *zap.Logger

	mu        sync.Mutex
	nextID    uint64
	pending   map[uint64]*Future
	overLimit bool
	started   bool
	closed    bool

	queue  *queue
	wake   chan struct{}
	cancel context.CancelFunc
	group  *errgroup.Group

	submitted atomic.Uint64
	completed atomic.Uint64
	cancelled atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a scheduler. Requests submitted before Start wait in the queue.
func New(cfg Config) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	gen := cfg.Generator
	if gen == nil {
		gen = Synthesize
	}
	return &Scheduler{
		cfg:     cfg,
		gen:     gen,
		log:     logger.Named("scheduler"),
		pending: make(map[uint64]*Future),
		queue:   newQueue(),
		wake:    make(chan struct{}, 1),
	}
}

// Start launches the workers. They stop when ctx ends or Close is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		s.group.Go(func() error {
			return s.work(ctx)
		})
	}
	s.signal()

	s.log.Info("scheduler started", zap.Int("workers", s.cfg.Workers))
}

// Submit validates req, assigns it the next correlation id and queues it.
// It never waits for a worker.
func (s *Scheduler) Submit(req Request) (*Future, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	req.ID = s.nextID
	s.nextID++
	f := NewFuture(req.ID)
	s.pending[req.ID] = f
	s.checkPendingLocked()
	s.mu.Unlock()

	s.submitted.Add(1)
	s.queue.push(req)
	s.signal()
	return f, nil
}

// Cancel forgets a pending request. A result arriving later is dropped.
// It reports whether the id was still pending.
func (s *Scheduler) Cancel(id uint64) bool {
	s.mu.Lock()
	_, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
		s.checkPendingLocked()
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.queue.remove(id)
	s.cancelled.Add(1)
	return true
}

// Close stops the workers. Outstanding requests are discarded and their
// futures are never fulfilled.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, group := s.cancel, s.group
	s.mu.Unlock()

	var err error
	if cancel != nil {
		cancel()
		err = group.Wait()
	}

	s.mu.Lock()
	discarded := len(s.pending)
	s.pending = make(map[uint64]*Future)
	s.mu.Unlock()
	s.queue.drain()

	if discarded > 0 {
		s.log.Warn("discarding outstanding generation requests", zap.Int("count", discarded))
	}
	s.log.Info("scheduler stopped",
		zap.Uint64("submitted", s.submitted.Load()),
		zap.Uint64("completed", s.completed.Load()),
	)
	return err
}

// Pending returns the number of requests awaiting a result.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stats returns a snapshot of the scheduler counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Workers:   s.cfg.Workers,
		Pending:   s.Pending(),
		Queued:    s.queue.len(),
		Submitted: s.submitted.Load(),
		Completed: s.completed.Load(),
		Cancelled: s.cancelled.Load(),
		Dropped:   s.dropped.Load(),
	}
}

func (s *Scheduler) work(ctx context.Context) error {
	for {
		req, ok := s.queue.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-s.wake:
				continue
			}
		}
		if s.queue.len() > 0 {
			s.signal()
		}

		mesh, err := s.gen(ctx, req)
		if ctx.Err() != nil {
			// torn down mid-flight; the request is discarded with the rest
			return nil
		}
		s.deliver(req.ID, mesh, err)
	}
}

// deliver is the receipt handler: it fulfills the matching pending entry
// exactly once and drops anything else.
func (s *Scheduler) deliver(id uint64, mesh *terrain.Mesh, err error) bool {
	s.mu.Lock()
	f, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
		s.checkPendingLocked()
	}
	s.mu.Unlock()

	if !ok || !f.Fulfill(mesh, err) {
		s.dropped.Add(1)
		mesh.Release()
		s.log.Debug("dropping stale generation result", zap.Uint64("id", id))
		return false
	}

	if err != nil {
		s.log.Error("patch generation failed", zap.Uint64("id", id), zap.Error(err))
	}
	s.completed.Add(1)
	return true
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// checkPendingLocked emits the resource-leak warning when the pending table
// crosses the threshold, re-arming once it falls to half.
func (s *Scheduler) checkPendingLocked() {
	limit := s.cfg.PendingWarn
	if limit <= 0 {
		return
	}
	n := len(s.pending)
	switch {
	case n > limit && !s.overLimit:
		s.overLimit = true
		s.log.Warn("pending generation requests exceed threshold",
			zap.Int("pending", n),
			zap.Int("threshold", limit),
		)
	case n <= limit/2 && s.overLimit:
		s.overLimit = false
	}
}
