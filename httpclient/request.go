package httpclient

import (
	"context"
	"net/http"
	"slices"

	"github.com/kbukum/aemkit/errors"
)

// GetRequestBuilder accumulates query parameters for a GET request.
type GetRequestBuilder struct {
	client *Client
	query  []queryParam
}

// QueryParam appends a query parameter. Order is preserved on the wire.
func (b *GetRequestBuilder) QueryParam(name, value string) *GetRequestBuilder {
	b.query = append(b.query, queryParam{name: name, value: value})
	return b
}

// Build returns an immutable request.
func (b *GetRequestBuilder) Build() *GetRequest {
	return &GetRequest{client: b.client, query: slices.Clone(b.query)}
}

// GetRequest is a GET call ready to be sent.
type GetRequest struct {
	client *Client
	query  []queryParam
}

// Target returns the URL the request will be sent to.
func (r *GetRequest) Target() string {
	return r.client.withQuery(r.query)
}

// Send performs the call. It returns (nil, nil) on 204 No Content and a
// Response for a 2xx body compatible with expected. Every other outcome is
// an *errors.AppError with code TRANSPORT_FAULT or PROTOCOL_VIOLATION.
func (r *GetRequest) Send(ctx context.Context, expected ContentType) (*Response, error) {
	target := r.Target()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, errors.TransportFault(target, err)
	}
	return r.client.adapter.do(ctx, req, target, expected)
}
