package store

import (
	"errors"
	"fmt"
)

// RemoteError wraps any transport or query failure against the hosted
// database. Callers treat it as recoverable: they fall back to cached or
// static data rather than failing the user flow.
type RemoteError struct {
	Op         string
	Collection string
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err is (or wraps) a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

func remoteErr(op, collection string, err error) error {
	return &RemoteError{Op: op, Collection: collection, Err: err}
}
