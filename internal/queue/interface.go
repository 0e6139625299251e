package queue

import (
	"context"
)

// MessageInterface abstracts a delivered coaching job so worker tests can
// substitute fakes for live AMQP deliveries.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue carries coaching jobs from the API to the worker.
type JobQueue interface {
	// Enqueue publishes a job. It returns once the broker confirms the
	// publish, so an accepted HTTP request implies a durable job.
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue pulls a single message, or nil when the queue is empty.
	// The caller acknowledges the message.
	// DEPRECATED: the worker uses Consume; this remains for one-off tooling.
	Dequeue(ctx context.Context) (*Message, error)

	// Consume streams messages as they arrive. prefetchCount bounds the
	// unacknowledged messages held per consumer. Both channels close when
	// the context is cancelled or the connection drops.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close tears down the broker connection.
	Close() error

	// HealthCheck verifies the broker connection is usable.
	HealthCheck(ctx context.Context) error
}
