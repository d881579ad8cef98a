// Package jobs provides the River job types and workers for the embedding pipeline.
package jobs

import (
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// JobScope selects which courses an embedding job covers.
type JobScope string

// Job scopes. The worker matches these exhaustively; an unrecognized scope
// cancels the job rather than retrying it.
const (
	// ScopeSingleCourse embeds one course identified by CourseID.
	ScopeSingleCourse JobScope = "single-course"
	// ScopeBatchCourses embeds the courses in CourseIDs, or every course when
	// CourseIDs is empty.
	ScopeBatchCourses JobScope = "batch-courses"
	// ScopeAllCourses embeds every course in the catalog.
	ScopeAllCourses JobScope = "all-courses"
)

// EmbeddingJobArgs is the payload of a course embedding job.
// Uniqueness is by args: one pending/running job per course id for
// single-course jobs, and a single all-courses sweep at a time.
type EmbeddingJobArgs struct {
	Scope     JobScope    `json:"scope"`
	CourseID  *uuid.UUID  `json:"course_id,omitempty"`
	CourseIDs []uuid.UUID `json:"course_ids,omitempty"`
}

// Kind returns the River job kind.
func (EmbeddingJobArgs) Kind() string { return "course_embedding" }

var _ river.JobArgs = EmbeddingJobArgs{}

// Priority is the scheduling class of an embedding job. High runs before
// normal, normal before low; within a class jobs run in enqueue order.
type Priority string

// Priority classes.
const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)
