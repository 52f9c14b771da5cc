package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"matchbet-server/internal/observability"

	kafkago "github.com/segmentio/kafka-go"
)

// ConsumerConfig configures the Kafka progress event consumer.
type ConsumerConfig struct {
	Brokers       []string
	ConsumerGroup string
	Topic         string

	// NumWorkers is the number of user lanes, one worker each.
	NumWorkers int

	// QueueSize is the buffer of each lane.
	QueueSize int

	// MaxAttempts bounds how often a failing event is retried before the
	// worker logs it and moves on.
	MaxAttempts  int
	RetryBackoff time.Duration

	DrainTimeout time.Duration
}

func DefaultConsumerConfig(brokers []string, consumerGroup, topic string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:       brokers,
		ConsumerGroup: consumerGroup,
		Topic:         topic,
		NumWorkers:    10,
		QueueSize:     100,
		MaxAttempts:   3,
		RetryBackoff:  200 * time.Millisecond,
		DrainTimeout:  30 * time.Second,
	}
}

// fetched pairs a decoded event with the message it came from, for the
// offset commit.
type fetched struct {
	event EventMessage
	msg   kafkago.Message
}

type consumer struct {
	config    ConsumerConfig
	reader    *kafkago.Reader
	committer offsetCommitter
	offsets   *offsetTracker
	processor EventProcessor
	logger    *observability.Logger

	lanes []chan fetched

	cancelFetch context.CancelFunc
	doneCh      chan struct{}
	stopping    atomic.Bool
	stopOnce    sync.Once
}

// NewConsumer creates a consumer that applies processor to every event on
// the topic. Events are partitioned into lanes by user id.
func NewConsumer(
	config ConsumerConfig,
	processor EventProcessor,
	logger *observability.Logger,
) EventConsumer {
	defaults := DefaultConsumerConfig(nil, "", "")
	if config.NumWorkers <= 0 {
		config.NumWorkers = defaults.NumWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = defaults.RetryBackoff
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = defaults.DrainTimeout
	}

	c := &consumer{
		config:    config,
		processor: processor,
		logger:    logger,
		offsets:   newOffsetTracker(),
		lanes:     make([]chan fetched, config.NumWorkers),
		doneCh:    make(chan struct{}),
	}
	for i := range c.lanes {
		c.lanes[i] = make(chan fetched, config.QueueSize)
	}

	c.reader = kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.ConsumerGroup,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		StartOffset:    kafkago.FirstOffset,
		CommitInterval: 0,
	})
	c.committer = c.reader

	return c
}

// Start consumes until Stop is called, then drains the lanes.
func (c *consumer) Start(ctx context.Context) error {
	defer close(c.doneCh)

	// Fetching stops on Stop only, never on the caller's context, so that
	// fetched events are always handed to a lane.
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFetch = cancel
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "consumer_group", Value: c.config.ConsumerGroup},
		observability.Field{Key: "topic", Value: c.config.Topic},
		observability.Field{Key: "processor", Value: c.processor.Name()},
	)

	c.logger.Info(ctx, fmt.Sprintf("consuming %s with %d lanes", c.config.Topic, len(c.lanes)))

	var wg sync.WaitGroup
	for i := range c.lanes {
		wg.Add(1)
		go c.worker(&wg, i, ctx)
	}

	c.fetchLoop(ctx)

	for _, lane := range c.lanes {
		close(lane)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info(ctx, "all lanes drained")
	case <-time.After(c.config.DrainTimeout):
		c.logger.Warn(ctx, fmt.Sprintf("drain timeout exceeded, %d uncommitted events will be redelivered", c.offsets.pending()))
	}

	if err := c.reader.Close(); err != nil {
		c.logger.Error(ctx, "failed to close kafka reader", err)
	}
	return nil
}

func (c *consumer) fetchLoop(ctx context.Context) {
	for !c.stopping.Load() {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if c.stopping.Load() || ctx.Err() != nil {
				return
			}
			c.logger.Error(ctx, "failed to fetch message from kafka", err)
			time.Sleep(time.Second)
			continue
		}

		c.offsets.track(msg)

		var event EventMessage
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Undecodable messages are dropped.
			c.logger.Error(ctx, fmt.Sprintf("skipping undecodable message at offset %d", msg.Offset), err)
			c.commit(ctx, msg)
			continue
		}
		if event.UserID == "" {
			event.UserID = string(msg.Key)
		}

		select {
		case c.lanes[laneFor(event.UserID, len(c.lanes))] <- fetched{event: event, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

func (c *consumer) worker(wg *sync.WaitGroup, lane int, ctx context.Context) {
	defer wg.Done()

	ctx = observability.WithFields(ctx, observability.Field{Key: "lane", Value: lane})

	for f := range c.lanes[lane] {
		eventCtx := eventContext(ctx, f.event)

		if err := c.process(eventCtx, f.event); err != nil {
			c.logger.Error(eventCtx, "giving up on event after retries", err)
		}
		c.commit(eventCtx, f.msg)
	}
}

// commit marks msg finished and commits the furthest offset of its
// partition whose predecessors have all finished.
func (c *consumer) commit(ctx context.Context, msg kafkago.Message) {
	ready, ok := c.offsets.finish(msg)
	if !ok || c.committer == nil {
		return
	}
	// The commit outlives Stop so finished work is not redelivered.
	if err := c.committer.CommitMessages(context.WithoutCancel(ctx), ready); err != nil {
		c.logger.Error(ctx, fmt.Sprintf("failed to commit offset %d on partition %d", ready.Offset, ready.Partition), err)
	}
}

// process applies the processor with linear backoff between attempts.
func (c *consumer) process(ctx context.Context, event EventMessage) error {
	attempts := max(c.config.MaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.processor.Process(ctx, event); err == nil {
			return nil
		}
		if attempt < attempts {
			c.logger.Warn(ctx, fmt.Sprintf("attempt %d of %d failed: %v", attempt, attempts, err))
			time.Sleep(c.config.RetryBackoff * time.Duration(attempt))
		}
	}
	return err
}

// Stop unblocks the fetch loop and waits for Start to return.
func (c *consumer) Stop() {
	c.stopOnce.Do(func() {
		c.stopping.Store(true)
		if c.cancelFetch != nil {
			c.cancelFetch()
		}
		<-c.doneCh
	})
}
