package service

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable indicates the analysis endpoint could not be
// reached, timed out, or answered with a non-2xx status. Handlers
// surface it as a user-visible message rather than crashing.
var ErrServiceUnavailable = errors.New("analysis service unavailable")

// ExtractionError indicates an uploaded document could not be read at
// all. An empty extraction result is NOT an error; callers get an
// empty string and the pipeline degrades gracefully.
type ExtractionError struct {
	Kind string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s document: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
