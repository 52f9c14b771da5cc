package workers

import (
	"context"

	kafka "matchbet-server/internal/clients/kafka"
)

// EventMessage is an alias for the Kafka event message type so processors
// can be written without importing the client package.
type EventMessage = kafka.EventMessage

// EventProcessor handles progress events. Implementations must be
// idempotent: Kafka redelivers events whose offsets were not committed.
type EventProcessor interface {
	// Process handles a single event. A non-nil error leaves the offset
	// uncommitted so the event is redelivered.
	Process(ctx context.Context, event EventMessage) error

	// Name returns the processor name for logging and metrics.
	Name() string
}

// EventConsumer reads events from Kafka and fans them out to workers.
type EventConsumer interface {
	// Start blocks until Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the consumer, draining in-flight events.
	Stop()
}

// WorkerPool runs an EventProcessor over events submitted in-process. The
// API server uses one as the event sink when Kafka is not configured.
type WorkerPool interface {
	// Start initializes the worker pool with N workers.
	Start(ctx context.Context) error

	// Submit queues an event, blocking while the queue is full.
	Submit(ctx context.Context, event EventMessage) error

	// Drain stops accepting new events and waits for in-flight events to complete.
	Drain(ctx context.Context) error

	// Stop immediately stops all workers.
	Stop()
}
