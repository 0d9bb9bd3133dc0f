package engine

import "errors"

// Error taxonomy for engine-facing operations. Anything not matching one of
// these sentinels is treated as a transient engine error: logged, the item
// marked failed, and the batch continues.
var (
	// ErrNotFound marks a missing document, object, script section, or
	// variable lookup target.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a unique-name constraint violation on write
	// (alternate states, variables). Never retried automatically.
	ErrConflict = errors.New("name conflict")

	// ErrUnsupported marks an object type with no registered importer.
	ErrUnsupported = errors.New("unsupported object type")
)
