package jobs

import (
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// ExponentialRetryPolicy schedules retries at base, 2*base, 4*base, ... after
// each failed attempt. After the configured max attempts River discards the
// job, keeping it visible for the discarded-job retention window.
type ExponentialRetryPolicy struct {
	// Base is the delay before the first retry. Doubled on every subsequent attempt.
	Base time.Duration
}

var _ river.ClientRetryPolicy = &ExponentialRetryPolicy{}

// maxBackoffShift caps the doubling at base * 2^10, keeping the shift far
// from overflowing time.Duration at high attempt counts.
const maxBackoffShift = 10

// NextRetry returns when the job should next be attempted.
func (p *ExponentialRetryPolicy) NextRetry(job *rivertype.JobRow) time.Time {
	shift := job.Attempt - 1
	if shift < 0 {
		shift = 0
	}

	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}

	return time.Now().Add(p.Base << shift)
}
