package contract

import "errors"

// ErrDuplicate is the storage-agnostic signal for a uniqueness-constraint
// violation. The gorm implementation translates the Postgres 23505 error into
// it; the in-memory implementation returns it directly. The submission gateway
// relies on this to resolve same-(document, type) races.
var ErrDuplicate = errors.New("duplicate key violates unique constraint")
