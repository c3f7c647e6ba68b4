package httpclient

import (
	"mime"
	"strings"
)

// ContentType is a mime descriptor such as "application/json; charset=utf-8".
type ContentType string

// Content types used by the AEM endpoints.
const (
	ContentTypeJSON        ContentType = "application/json"
	ContentTypeXML         ContentType = "application/xml"
	ContentTypeTextXML     ContentType = "text/xml"
	ContentTypeTextPlain   ContentType = "text/plain"
	ContentTypeTextHTML    ContentType = "text/html"
	ContentTypeOctetStream ContentType = "application/octet-stream"
	ContentTypeMultipart   ContentType = "multipart/form-data"
	ContentTypeAny         ContentType = "*/*"
)

// String returns the descriptor as given.
func (c ContentType) String() string { return string(c) }

// MediaType returns the lower-cased type and subtype with parameters removed.
// A descriptor without a slash yields an empty subtype. Malformed parameters
// are ignored; a descriptor mime cannot parse is split on its first ";".
func (c ContentType) MediaType() (typ, subtype string) {
	mt, _, err := mime.ParseMediaType(string(c))
	if err != nil && err != mime.ErrInvalidMediaParameter {
		mt = strings.ToLower(strings.TrimSpace(strings.SplitN(string(c), ";", 2)[0]))
	}
	typ, subtype, _ = strings.Cut(mt, "/")
	return typ, subtype
}

// Essence returns "type/subtype" without parameters.
func (c ContentType) Essence() string {
	typ, sub := c.MediaType()
	if sub == "" {
		return typ
	}
	return typ + "/" + sub
}

// Compatible reports whether c and other name the same type/subtype, ignoring
// parameters. A "*" type or subtype on either side matches anything.
func (c ContentType) Compatible(other ContentType) bool {
	t1, s1 := c.MediaType()
	t2, s2 := other.MediaType()
	if t1 == "" || t2 == "" {
		return false
	}
	if t1 == "*" || t2 == "*" {
		return true
	}
	if t1 != t2 {
		return false
	}
	return s1 == "*" || s2 == "*" || s1 == s2
}
