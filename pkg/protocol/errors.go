package protocol

import "errors"

// Executors classify failures so the lifecycle manager knows whether a
// retry can help. Unclassified errors are treated as transient.

// TransientError marks a failure worth retrying (network, IO, timeout).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError marks a failure no retry can fix (validation, auth).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return "permanent: " + e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// MarkTransient wraps err as retryable.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}

	return &TransientError{Err: err}
}

// MarkPermanent wraps err as non-retryable.
func MarkPermanent(err error) error {
	if err == nil {
		return nil
	}

	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a permanent classification.
func IsPermanent(err error) bool {
	var permanent *PermanentError

	return errors.As(err, &permanent)
}

// IsTransient reports whether err should be treated as retryable: either
// explicitly marked transient or not classified at all.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	return !IsPermanent(err)
}
