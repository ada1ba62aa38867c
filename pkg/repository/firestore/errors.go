package firestore

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = goerr.New("record not found")

	// ErrVersionMismatch is returned when an update carries a stale session
	// version
	ErrVersionMismatch = goerr.New("session version mismatch")
)
