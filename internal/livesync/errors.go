package livesync

import "errors"

var (
	// ErrAlreadyOpen is returned by Open on a synchronizer that was already opened.
	ErrAlreadyOpen = errors.New("synchronizer already open")
	// ErrClosed is returned by Open after Close.
	ErrClosed = errors.New("synchronizer closed")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as a failure to construct the watch channel at all.
// Such failures skip the reconnect loop and start fallback polling at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, was marked Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
