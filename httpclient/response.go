package httpclient

import (
	"bytes"
	stderrors "errors"
	"io"
	"net/http"
	"sync/atomic"
)

// ErrBodyConsumed is returned when a Response body is read a second time.
var ErrBodyConsumed = stderrors.New("httpclient: response body already consumed")

// Response is a successful reply carrying a body of the expected type.
// The body has been read to completion and can be consumed once.
type Response struct {
	statusCode    int
	contentType   ContentType
	header        http.Header
	body          []byte
	consumed      atomic.Bool
	correlationID string
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.statusCode }

// ContentType returns the declared content type of the body.
func (r *Response) ContentType() ContentType { return r.contentType }

// CorrelationID returns the correlation id sent with the request, if any.
func (r *Response) CorrelationID() string { return r.correlationID }

// Header returns the first value of the named response header.
func (r *Response) Header(name string) (string, bool) {
	values := r.header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// HeaderValues returns all values of the named response header.
func (r *Response) HeaderValues(name string) []string {
	return r.header.Values(name)
}

// Body returns a reader over the body. It fails with ErrBodyConsumed on
// every call after the first.
func (r *Response) Body() (io.Reader, error) {
	if !r.consumed.CompareAndSwap(false, true) {
		return nil, ErrBodyConsumed
	}
	return bytes.NewReader(r.body), nil
}

// ReadAll consumes the body and returns it.
func (r *Response) ReadAll() ([]byte, error) {
	if !r.consumed.CompareAndSwap(false, true) {
		return nil, ErrBodyConsumed
	}
	return r.body, nil
}
