package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"matchbet-server/internal/observability"
)

var (
	ErrPoolNotStarted   = errors.New("worker pool not started")
	ErrPoolShuttingDown = errors.New("worker pool is shutting down")
)

// ProcessingResult is handed to OnResult after every event.
type ProcessingResult struct {
	Event    EventMessage
	Lane     int
	Duration time.Duration
	Error    error
}

type ResultCallback func(result ProcessingResult)

// WorkerPoolConfig configures the in-process event pool.
type WorkerPoolConfig struct {
	// NumWorkers is the number of lanes. Each lane has one worker.
	NumWorkers int

	// QueueSize is the buffer of each lane. Submit blocks while the lane
	// for the event's user is full.
	QueueSize int

	DrainTimeout time.Duration

	// OnResult is optional.
	OnResult ResultCallback
}

func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		NumWorkers:   4,
		QueueSize:    100,
		DrainTimeout: 30 * time.Second,
	}
}

type pool struct {
	config    WorkerPoolConfig
	processor EventProcessor
	logger    *observability.Logger

	lanes []chan EventMessage
	wg    sync.WaitGroup

	mu       sync.RWMutex
	started  bool
	draining bool
	stopped  bool
	cancelFn context.CancelFunc
}

// NewWorkerPool creates a pool that applies processor to submitted events,
// one lane per worker, partitioned by user.
func NewWorkerPool(
	config WorkerPoolConfig,
	processor EventProcessor,
	logger *observability.Logger,
) WorkerPool {
	defaults := DefaultWorkerPoolConfig()
	if config.NumWorkers <= 0 {
		config.NumWorkers = defaults.NumWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = defaults.DrainTimeout
	}

	lanes := make([]chan EventMessage, config.NumWorkers)
	for i := range lanes {
		lanes[i] = make(chan EventMessage, config.QueueSize)
	}

	return &pool{
		config:    config,
		processor: processor,
		logger:    logger,
		lanes:     lanes,
	}
}

func (p *pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}
	if p.stopped {
		return ErrPoolShuttingDown
	}

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancelFn = cancel
	p.started = true

	for i := range p.lanes {
		p.wg.Add(1)
		go p.run(workerCtx, i)
	}

	p.logger.Info(ctx, fmt.Sprintf("started %d %s lanes", len(p.lanes), p.processor.Name()))
	return nil
}

// Submit queues event on its user's lane.
func (p *pool) Submit(ctx context.Context, event EventMessage) error {
	// The read lock is held while sending so Drain cannot close the lane
	// underneath a blocked Submit.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.draining || p.stopped {
		return ErrPoolShuttingDown
	}

	select {
	case p.lanes[laneFor(event.UserID, len(p.lanes))] <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain stops accepting events and waits until every queued event has been
// processed or DrainTimeout passes.
func (p *pool) Drain(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrPoolNotStarted
	}
	if p.draining || p.stopped {
		p.mu.Unlock()
		return ErrPoolShuttingDown
	}
	p.draining = true
	pending := 0
	for _, lane := range p.lanes {
		pending += len(lane)
		close(lane)
	}
	p.mu.Unlock()

	p.logger.Info(ctx, fmt.Sprintf("draining %s lanes with %d queued events", p.processor.Name(), pending))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	drainCtx, cancel := context.WithTimeout(ctx, p.config.DrainTimeout)
	defer cancel()

	select {
	case <-done:
		p.logger.Info(ctx, fmt.Sprintf("drained %s lanes", p.processor.Name()))
		return nil
	case <-drainCtx.Done():
		p.logger.Warn(ctx, fmt.Sprintf("drain timeout exceeded for %s lanes, forcing shutdown", p.processor.Name()))
		p.Stop()
		return fmt.Errorf("drain timeout exceeded")
	}
}

// Stop cancels the workers. Queued events are dropped.
func (p *pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true

	if p.cancelFn != nil {
		p.cancelFn()
	}
	if !p.draining {
		for _, lane := range p.lanes {
			close(lane)
		}
	}
}

func (p *pool) run(ctx context.Context, lane int) {
	defer p.wg.Done()

	laneCtx := observability.WithFields(ctx,
		observability.Field{Key: "lane", Value: lane},
		observability.Field{Key: "processor", Value: p.processor.Name()},
	)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.lanes[lane]:
			if !ok {
				return
			}
			p.handle(laneCtx, lane, event)
		}
	}
}

func (p *pool) handle(ctx context.Context, lane int, event EventMessage) {
	ctx = eventContext(ctx, event)

	start := time.Now()
	err := p.processor.Process(ctx, event)
	if err != nil {
		p.logger.Error(ctx, "failed to process event", err)
	} else {
		p.logger.Debug(ctx, "processed event")
	}

	if p.config.OnResult != nil {
		p.config.OnResult(ProcessingResult{
			Event:    event,
			Lane:     lane,
			Duration: time.Since(start),
			Error:    err,
		})
	}
}
