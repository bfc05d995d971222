package aggregate

import "errors"

// ErrNoProviders is returned when a request cannot start because no
// enabled provider declares the needed capability. This is a caller
// error, not a runtime condition to retry.
var ErrNoProviders = errors.New("no enabled providers")
