package backend

import "errors"

var (
	// ErrServiceUnavailable indicates the service could not be reached or
	// did not answer in time.
	ErrServiceUnavailable = errors.New("conversion service unavailable")

	// ErrUnsupported indicates the backend cannot handle the request.
	ErrUnsupported = errors.New("operation not supported by backend")
)
