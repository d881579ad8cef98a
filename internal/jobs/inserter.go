package jobs

import (
	"context"
)

// JobInserter is an interface for inserting embedding jobs into the queue.
// Services enqueue through it without knowing about River directly.
type JobInserter interface {
	// InsertEmbeddingJob enqueues an embedding job at the given priority.
	// Enqueueing is idempotent: when a job with the same args is already
	// pending or running, the call is a no-op.
	InsertEmbeddingJob(ctx context.Context, args EmbeddingJobArgs, priority Priority) error
}
