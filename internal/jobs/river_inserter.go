package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// riverPriorities maps priority classes to River's 1..4 scale (1 runs first).
var riverPriorities = map[Priority]int{
	PriorityHigh:   1,
	PriorityNormal: 2,
	PriorityLow:    3,
}

// RiverJobInserter implements JobInserter using the River client.
type RiverJobInserter struct {
	client *river.Client[pgx.Tx]
}

// NewRiverJobInserter creates a new River-based job inserter.
func NewRiverJobInserter(client *river.Client[pgx.Tx]) *RiverJobInserter {
	return &RiverJobInserter{client: client}
}

// InsertEmbeddingJob enqueues an embedding job with uniqueness constraints.
func (r *RiverJobInserter) InsertEmbeddingJob(ctx context.Context, args EmbeddingJobArgs, priority Priority) error {
	_, err := r.client.Insert(ctx, args, InsertOptsFor(priority))

	return err
}

// InsertOptsFor builds the insert options for an embedding job: priority
// mapping plus args-based deduplication across every non-terminal state.
func InsertOptsFor(priority Priority) *river.InsertOpts {
	riverPriority, ok := riverPriorities[priority]
	if !ok {
		riverPriority = riverPriorities[PriorityNormal]
	}

	return &river.InsertOpts{
		Priority: riverPriority,
		UniqueOpts: river.UniqueOpts{
			// At most one job per args (per course id, or one all-courses sweep).
			ByArgs: true,
			// Note: JobStatePending is required by River when using ByState.
			ByState: []rivertype.JobState{
				rivertype.JobStatePending,
				rivertype.JobStateAvailable,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
