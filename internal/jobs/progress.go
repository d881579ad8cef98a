package jobs

import (
	"sync"
	"time"
)

// subscriberBufferSize is the buffer of each subscriber channel. A slow
// subscriber drops events rather than blocking the worker.
const subscriberBufferSize = 64

// maxTrackedJobs caps the last-value map. When a new job would exceed the
// cap, the oldest tracked job is evicted.
const maxTrackedJobs = 256

// ProgressEvent is one progress report from a running embedding job.
type ProgressEvent struct {
	JobID     int64
	Percent   int
	Timestamp time.Time
}

// ProgressTracker records the last reported progress of each job and fans
// events out to any number of subscribers. Jobs report 0-100 after every
// processed batch group; observers either poll Last or consume the stream.
type ProgressTracker struct {
	mu        sync.RWMutex
	last      map[int64]int
	order     []int64
	subs      map[int]chan ProgressEvent
	nextSubID int
}

// NewProgressTracker creates an empty progress tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		last: make(map[int64]int),
		subs: make(map[int]chan ProgressEvent),
	}
}

// Report records percent (clamped to 0-100) as the job's latest progress and
// notifies subscribers. Never blocks: events to full subscriber channels are dropped.
func (t *ProgressTracker) Report(jobID int64, percent int) {
	if percent < 0 {
		percent = 0
	}

	if percent > 100 {
		percent = 100
	}

	event := ProgressEvent{JobID: jobID, Percent: percent, Timestamp: time.Now()}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, tracked := t.last[jobID]; !tracked {
		t.order = append(t.order, jobID)

		if len(t.order) > maxTrackedJobs {
			oldest := t.order[0]
			t.order = t.order[1:]
			delete(t.last, oldest)
		}
	}

	t.last[jobID] = percent

	for _, sub := range t.subs {
		select {
		case sub <- event:
		default:
		}
	}
}

// Last returns the most recent progress value reported for the job.
func (t *ProgressTracker) Last(jobID int64) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	percent, ok := t.last[jobID]

	return percent, ok
}

// Snapshot returns a copy of the last reported progress of every job.
func (t *ProgressTracker) Snapshot() map[int64]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[int64]int, len(t.last))
	for jobID, percent := range t.last {
		out[jobID] = percent
	}

	return out
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. Unsubscribing closes the channel.
func (t *ProgressTracker) Subscribe() (<-chan ProgressEvent, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSubID
	t.nextSubID++

	ch := make(chan ProgressEvent, subscriberBufferSize)
	t.subs[id] = ch

	unsubscribe := func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if sub, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}
