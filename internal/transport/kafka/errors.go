package kafka

import "errors"

// PermanentError marks a handler failure that redelivery cannot fix.
// The consumer logs it, commits the offset and moves on.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err != nil {
		return "permanent: " + e.Err.Error()
	}
	return "permanent failure"
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the consumer skips the message instead of retrying. nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return PermanentError{Err: err}
}

// IsPermanent reports whether err, or anything it wraps, is a PermanentError.
func IsPermanent(err error) bool {
	var perm PermanentError
	return errors.As(err, &perm)
}
