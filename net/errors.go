package net

import (
	"errors"
	"fmt"
)

// ErrPollTimeout marks an analytics query that did not reach a terminal
// state within the polling attempt budget.
var ErrPollTimeout = errors.New("query execution polling exceeded attempt budget")

// SourceError wraps any failure talking to an external data source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source error: %s", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func newSourceError(source string, format string, args ...interface{}) error {
	return &SourceError{Source: source, Err: fmt.Errorf(format, args...)}
}
