package store

import "errors"

// ErrPoisoned is returned by every operation on a Store whose writer panicked
// while holding the write lock. The cell's value is no longer trusted and the
// Store is never reset.
var ErrPoisoned = errors.New("store poisoned")
