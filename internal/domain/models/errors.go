package models

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. All three kinds are recovered at the scan
// boundary and converted into SignalRecord errors; none escape a batch run.

// DataUnavailableError means a source adapter could not produce a usable
// series: network failure, non-2xx response, or a malformed payload.
type DataUnavailableError struct {
	Source string
	Key    string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable from %s for %q: %v", e.Source, e.Key, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// InsufficientHistoryError means the series was retrieved but is shorter than
// the largest indicator window it must feed.
type InsufficientHistoryError struct {
	Required  int
	Available int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: need %d points, have %d", e.Required, e.Available)
}

// ComputationErr means an indicator or the scorer produced a value outside
// its defined domain, or panicked, in a way not covered by the other kinds.
type ComputationErr struct {
	Stage string
	Err   error
}

func (e *ComputationErr) Error() string {
	return fmt.Sprintf("computation error in %s: %v", e.Stage, e.Err)
}

func (e *ComputationErr) Unwrap() error { return e.Err }

// ErrorKind classifies an error into a low-cardinality label for metrics and
// logs.
func ErrorKind(err error) string {
	var du *DataUnavailableError
	if errors.As(err, &du) {
		return "data_unavailable"
	}
	var ih *InsufficientHistoryError
	if errors.As(err, &ih) {
		return "insufficient_history"
	}
	var ce *ComputationErr
	if errors.As(err, &ce) {
		return "computation"
	}
	return "other"
}
