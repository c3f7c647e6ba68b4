package httpclient

import (
	"net/url"
	"strings"
)

// Client is a transport bound to one endpoint of the server.
type Client struct {
	adapter *Adapter
	url     *url.URL
}

// Target returns the fully resolved endpoint URL.
func (c *Client) Target() string {
	return c.url.String()
}

// BuildGet starts a GET request to the endpoint.
func (c *Client) BuildGet() *GetRequestBuilder {
	return &GetRequestBuilder{client: c}
}

// BuildMultipart starts a multipart POST to the endpoint.
func (c *Client) BuildMultipart() *MultipartBuilder {
	return &MultipartBuilder{client: c}
}

// queryParam is one ordered query parameter.
type queryParam struct {
	name, value string
}

// withQuery returns the endpoint URL with params appended in order.
func (c *Client) withQuery(params []queryParam) string {
	target := c.Target()
	if len(params) == 0 {
		return target
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = url.QueryEscape(p.name) + "=" + url.QueryEscape(p.value)
	}
	return target + "?" + strings.Join(parts, "&")
}
