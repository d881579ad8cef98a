package embeddings

import "errors"

// PermanentError marks a provider failure that retrying cannot fix
// (malformed input, unsupported content, exhausted quota). The worker treats
// anything not wrapped in PermanentError as transient and lets the queue's
// backoff policy retry it.
type PermanentError struct {
	Err error
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return "permanent: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError

	return errors.As(err, &pe)
}
