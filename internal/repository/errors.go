package repository

import "errors"

// ErrNotFound indicates a record was not located. A malformed identifier is
// indistinguishable from an absent one at this layer.
var ErrNotFound = errors.New("repository: not found")
