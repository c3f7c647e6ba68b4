package httpclient

import "github.com/kbukum/aemkit/errors"

// IsTransportFault reports whether err means the call never produced a
// response: connection, TLS, timeout or body read failures.
func IsTransportFault(err error) bool {
	return errors.HasCode(err, errors.ErrCodeTransportFault)
}

// IsProtocolViolation reports whether the server answered with something
// other than a successful body of the expected type.
func IsProtocolViolation(err error) bool {
	return errors.HasCode(err, errors.ErrCodeProtocolViolation)
}

// StatusCode returns the HTTP status attached to a protocol violation, or 0.
func StatusCode(err error) int {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return 0
}
