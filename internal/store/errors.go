package store

import "fmt"

// WriteError reports a failed write or delete. The caller decides whether to retry.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("store write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed read, list or snapshot.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("store read %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }
