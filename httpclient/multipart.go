package httpclient

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/kbukum/aemkit/errors"
)

var errPayloadSent = stderrors.New("httpclient: multipart payload already sent")

type fieldKind int

const (
	fieldString fieldKind = iota
	fieldBytes
	fieldReader
	fieldFile
)

// field is one named part of a multipart payload.
type field struct {
	kind        fieldKind
	name        string
	contentType ContentType
	fileName    string
	value       string
	data        []byte
	reader      io.Reader
	path        string
}

// MultipartBuilder accumulates ordered form fields and query parameters.
// Readers added to the builder are owned by the payload Build returns.
type MultipartBuilder struct {
	client *Client
	fields []field
	query  []queryParam
}

// Add appends a text field.
func (b *MultipartBuilder) Add(name, value string) *MultipartBuilder {
	b.fields = append(b.fields, field{kind: fieldString, name: name, value: value})
	return b
}

// AddBytes appends a binary field with its own content type.
func (b *MultipartBuilder) AddBytes(name string, data []byte, ct ContentType) *MultipartBuilder {
	b.fields = append(b.fields, field{kind: fieldBytes, name: name, data: data, contentType: ct})
	return b
}

// AddNamedBytes appends a binary field sent with a file name.
func (b *MultipartBuilder) AddNamedBytes(name, fileName string, data []byte, ct ContentType) *MultipartBuilder {
	b.fields = append(b.fields, field{kind: fieldBytes, name: name, fileName: fileName, data: data, contentType: ct})
	return b
}

// AddReader appends a streamed field. If r is an io.Closer the payload
// closes it once the call finishes.
func (b *MultipartBuilder) AddReader(name string, r io.Reader, ct ContentType) *MultipartBuilder {
	b.fields = append(b.fields, field{kind: fieldReader, name: name, reader: r, contentType: ct})
	return b
}

// AddNamedReader appends a streamed field sent with a file name.
func (b *MultipartBuilder) AddNamedReader(name, fileName string, r io.Reader, ct ContentType) *MultipartBuilder {
	b.fields = append(b.fields, field{kind: fieldReader, name: name, fileName: fileName, reader: r, contentType: ct})
	return b
}

// AddFile appends the contents of the file at path, sent with its base name.
// The file is opened while the body is written and closed right after.
func (b *MultipartBuilder) AddFile(name, path string, ct ContentType) *MultipartBuilder {
	b.fields = append(b.fields, field{kind: fieldFile, name: name, path: path, fileName: filepath.Base(path), contentType: ct})
	return b
}

// AddIfPresent appends a text field when value is non-nil.
func (b *MultipartBuilder) AddIfPresent(name string, value *string) *MultipartBuilder {
	if value != nil {
		b.Add(name, *value)
	}
	return b
}

// AddBytesIfPresent appends a binary field when data is non-nil.
func (b *MultipartBuilder) AddBytesIfPresent(name string, data []byte, ct ContentType) *MultipartBuilder {
	if data != nil {
		b.AddBytes(name, data, ct)
	}
	return b
}

// AddReaderIfPresent appends a streamed field when r is non-nil.
func (b *MultipartBuilder) AddReaderIfPresent(name string, r io.Reader, ct ContentType) *MultipartBuilder {
	if r != nil {
		b.AddReader(name, r, ct)
	}
	return b
}

// AddStringer appends a text field rendered by value.String().
func (b *MultipartBuilder) AddStringer(name string, value fmt.Stringer) *MultipartBuilder {
	return b.Add(name, value.String())
}

// TransformAndAdd appends fn(*value) as a text field when value is non-nil.
func TransformAndAdd[T any](b *MultipartBuilder, name string, value *T, fn func(T) string) *MultipartBuilder {
	if value != nil {
		b.Add(name, fn(*value))
	}
	return b
}

// TransformAndAddBytes appends fn(*value) as a binary field when value is non-nil.
func TransformAndAddBytes[T any](b *MultipartBuilder, name string, value *T, ct ContentType, fn func(T) []byte) *MultipartBuilder {
	if value != nil {
		b.AddBytes(name, fn(*value), ct)
	}
	return b
}

// QueryParam appends a URL query parameter. It does not touch the body.
func (b *MultipartBuilder) QueryParam(name, value string) *MultipartBuilder {
	b.query = append(b.query, queryParam{name: name, value: value})
	return b
}

// Build returns an immutable payload that owns every field source.
func (b *MultipartBuilder) Build() *MultipartPayload {
	return &MultipartPayload{
		client: b.client,
		fields: slices.Clone(b.fields),
		query:  slices.Clone(b.query),
	}
}

// MultipartPayload is a multipart/form-data POST ready to be sent. It owns its
// field sources and releases them exactly once.
type MultipartPayload struct {
	client *Client
	fields []field
	query  []queryParam

	sendOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
}

// Target returns the URL the payload will be posted to.
func (p *MultipartPayload) Target() string {
	return p.client.withQuery(p.query)
}

// FieldNames returns the field names in wire order.
func (p *MultipartPayload) FieldNames() []string {
	names := make([]string, len(p.fields))
	for i, f := range p.fields {
		names[i] = f.name
	}
	return names
}

// Send posts the payload with the same outcome contract as GetRequest.Send.
// The field sources are released before Send returns, on every path. A
// payload can be sent once.
func (p *MultipartPayload) Send(ctx context.Context, expected ContentType) (*Response, error) {
	target := p.Target()
	sent := false
	p.sendOnce.Do(func() { sent = true })
	if !sent {
		return nil, errors.TransportFault(target, errPayloadSent)
	}
	defer func() {
		if err := p.Close(); err != nil {
			p.client.adapter.sink.Emit(func() string {
				return fmt.Sprintf("releasing multipart fields for %s: %v", target, err)
			})
		}
	}()

	if err := p.checkFiles(); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(p.encode(mw))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		_ = pr.Close()
		<-done
		return nil, errors.TransportFault(target, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.adapter.do(ctx, req, target, expected)

	// Unblock the encoder if the server answered before reading the whole
	// body, then wait so no field is read after it is released.
	_ = pr.CloseWithError(errPayloadSent)
	<-done
	return resp, err
}

// Close releases every field source that implements io.Closer. It is safe
// to call more than once; later calls return the first result.
func (p *MultipartPayload) Close() error {
	p.closeOnce.Do(func() {
		var result *multierror.Error
		for _, f := range p.fields {
			if f.kind != fieldReader {
				continue
			}
			if c, ok := f.reader.(io.Closer); ok {
				if err := c.Close(); err != nil {
					result = multierror.Append(result, fmt.Errorf("field %q: %w", f.name, err))
				}
			}
		}
		p.closeErr = result.ErrorOrNil()
	})
	return p.closeErr
}

// checkFiles fails fast when a file field cannot be opened.
func (p *MultipartPayload) checkFiles() error {
	for _, f := range p.fields {
		if f.kind != fieldFile {
			continue
		}
		info, err := os.Stat(f.path)
		if err != nil {
			return errors.InvalidInput(f.name, err.Error()).WithCause(err)
		}
		if !info.Mode().IsRegular() {
			return errors.InvalidInput(f.name, fmt.Sprintf("%s is not a regular file", f.path))
		}
	}
	return nil
}

// encode writes every field in order and closes the multipart writer.
func (p *MultipartPayload) encode(w *multipart.Writer) error {
	for i := range p.fields {
		if err := p.fields[i].write(w); err != nil {
			return fmt.Errorf("write field %q: %w", p.fields[i].name, err)
		}
	}
	return w.Close()
}

func (f *field) write(w *multipart.Writer) error {
	if f.kind == fieldString {
		return w.WriteField(f.name, f.value)
	}

	part, err := w.CreatePart(f.header())
	if err != nil {
		return err
	}

	switch f.kind {
	case fieldBytes:
		_, err = io.Copy(part, bytes.NewReader(f.data))
	case fieldReader:
		_, err = io.Copy(part, f.reader)
	case fieldFile:
		err = copyFile(part, f.path)
	}
	return err
}

func (f *field) header() textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	disposition := `form-data; name="` + escapeQuotes(f.name) + `"`
	if f.fileName != "" {
		disposition += `; filename="` + escapeQuotes(f.fileName) + `"`
	}
	h.Set("Content-Disposition", disposition)
	ct := f.contentType
	if ct == "" {
		ct = ContentTypeOctetStream
	}
	h.Set("Content-Type", ct.String())
	return h
}

func copyFile(dst io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	_, err = io.Copy(dst, file)
	return err
}

// escapeQuotes escapes quotes and backslashes in header parameter values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
