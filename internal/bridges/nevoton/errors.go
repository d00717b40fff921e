package nevoton

import "errors"

// Domain errors for the Nevoton bridge package.
//
// The client surfaces a three-tier taxonomy:
//   - ErrInvalidCredential: terminal until the password is reconfigured
//   - ErrConnectionFailed: transient transport failure, safe to retry
//   - ErrAPIFailure: malformed or device-reported-error response
var (
	// ErrInvalidCredential is returned when the device rejects the
	// authentication digest (API error code 6).
	ErrInvalidCredential = errors.New("nevoton: invalid credential")

	// ErrConnectionFailed is returned on transport-level failure:
	// timeout, refusal, or reset.
	ErrConnectionFailed = errors.New("nevoton: connection failed")

	// ErrAPIFailure is returned when the response is malformed or the
	// device reports an error code other than the credential code.
	ErrAPIFailure = errors.New("nevoton: api failure")
)
