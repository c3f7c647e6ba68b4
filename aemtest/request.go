package aemtest

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// Part is one recorded multipart field.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// Request is one recorded request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Header   http.Header
	Parts    []Part
}

// Field returns the text of the first part named name.
func (r Request) Field(name string) (string, bool) {
	p, ok := r.Part(name)
	if !ok {
		return "", false
	}
	return string(p.Data), true
}

// Part returns the first part named name.
func (r Request) Part(name string) (Part, bool) {
	for _, p := range r.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// FieldNames returns part names in wire order.
func (r Request) FieldNames() []string {
	names := make([]string, len(r.Parts))
	for i, p := range r.Parts {
		names[i] = p.Name
	}
	return names
}

// CorrelationID returns the X-Correlation-ID header.
func (r Request) CorrelationID() string {
	return r.Header.Get("X-Correlation-ID")
}

// record captures req, reading multipart bodies part by part.
func record(req *http.Request) (Request, error) {
	rec := Request{
		Method:   req.Method,
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
		Query:    req.URL.Query(),
		Header:   req.Header.Clone(),
	}
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return rec, nil
	}
	mr, err := req.MultipartReader()
	if err != nil {
		return rec, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return rec, nil
		}
		if err != nil {
			return rec, err
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return rec, err
		}
		rec.Parts = append(rec.Parts, Part{
			Name:        part.FormName(),
			FileName:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Data:        data,
		})
	}
}
