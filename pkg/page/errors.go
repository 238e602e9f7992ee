package page

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotBound is returned when a descriptor is used before Bind.
var ErrNotBound = errors.New("element is not bound to a page")

// errPollTimeout is the internal marker the poll loop returns when the
// condition never held; wait methods convert it to a TimeoutError.
var errPollTimeout = errors.New("condition not satisfied within timeout")

// TimeoutError reports a wait that ran out of time.
type TimeoutError struct {
	State   string // present, visible, clickable, ...
	Remark  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting %s for element %s to be %q", e.Timeout, e.Remark, e.State)
}

// IsTimeout reports whether the error is a wait timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
