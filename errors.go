package async

import "errors"

// CancelError is the distinguished error tag carried by every cancellation.
// Use [IsCancel] rather than a direct type assertion, so that errors wrapping
// [ErrCancel] still match.
type CancelError struct{}

func (*CancelError) Error() string { return "Cancel" }

// ErrCancel is the canonical cancellation error. Every call to [Cancel]
// delivers exactly this value (or something wrapping it) to each targeted
// await.
var ErrCancel error = &CancelError{}

// IsCancel reports whether err is, or wraps, [ErrCancel].
func IsCancel(err error) bool {
	return errors.Is(err, ErrCancel)
}

// ErrAlreadyResolved is returned by [Promise.Resolve] when called on a
// Promise that has already settled.
var ErrAlreadyResolved = errors.New("async: promise was already resolved")
