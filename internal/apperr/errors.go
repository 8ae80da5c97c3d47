// Package apperr defines the failure values shared across export stages.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned when the preview server has nothing to serve yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// Export pipeline stages.
const (
	StageCollect = "collect"
	StageParse   = "parse"
	StageEncode  = "encode"
	StageWrite   = "write"
)

// StageError reports which pipeline stage failed and on which path.
type StageError struct {
	Stage string
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Stage wraps err as a StageError. A nil err yields nil.
func Stage(stage, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Path: path, Err: err}
}

// StageOf returns the stage recorded in err, or "" if err carries none.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
