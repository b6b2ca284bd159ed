package snapshot

import "errors"

// ErrNilRecord is returned when Save is called with a nil record.
var ErrNilRecord = errors.New("cannot save nil snapshot record")

// NotFoundError is returned by Latest when no snapshot has been saved.
type NotFoundError struct{}

func (NotFoundError) Error() string {
	return "snapshot not found"
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
