package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("catalog product not found")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
	ErrDecode      = errors.New("catalog bad response body")
)

// TransportError is returned by every failed Client call. Err is one of
// the sentinel errors above, possibly wrapping the underlying cause.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s: status=%d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
