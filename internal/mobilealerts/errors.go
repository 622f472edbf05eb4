package mobilealerts

import "errors"

// Sentinel errors for measurement API operations.
// The pipeline treats all of them the same way (failed cycle); they are
// distinguished only for logging.
var (
	// ErrRequestFailed indicates a network-level or encoding failure.
	ErrRequestFailed = errors.New("mobilealerts: request failed")

	// ErrUnexpectedStatus indicates a non-200 HTTP response.
	ErrUnexpectedStatus = errors.New("mobilealerts: unexpected status")

	// ErrUnsuccessful indicates a well-formed response without
	// success=true.
	ErrUnsuccessful = errors.New("mobilealerts: service reported failure")
)
