package fanout

import "errors"

var (
	// Not found errors.
	ErrJobNotFound = errors.New("fanout: job not found")

	// State errors.
	ErrInvalidState = errors.New("fanout: invalid state transition")

	// Input errors.
	ErrNilItems     = errors.New("fanout: nil item list")
	ErrNilProcessor = errors.New("fanout: nil processor")

	// Lifecycle errors.
	ErrEngineClosed = errors.New("fanout: engine closed")
)
