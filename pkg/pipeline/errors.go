package pipeline

import (
	"errors"
	"fmt"
)

// BatchError is a fatal, batch-wide failure: the input was not usable as a
// batch at all, or an internal invariant broke mid-conversion. Per-record
// problems are never BatchErrors; they are tallied at their stage and the
// batch completes partially.
type BatchError struct {
	Stage string
	Err   error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("batch failed during %s: %v", e.Stage, e.Err)
}

func (e BatchError) Unwrap() error {
	return e.Err
}

func IsBatchError(err error) bool {
	var be BatchError
	return errors.As(err, &be)
}
