package httpclient

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/logger"
)

type recordedPart struct {
	name, fileName, contentType, data string
}

// readParts decodes a multipart request, keeping part order.
func readParts(t *testing.T, r *http.Request) []recordedPart {
	t.Helper()
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		return nil
	}
	mr, err := r.MultipartReader()
	if err != nil {
		t.Errorf("MultipartReader error: %v", err)
		return nil
	}
	var parts []recordedPart
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Errorf("NextPart error: %v", err)
			return parts
		}
		data, _ := io.ReadAll(part)
		parts = append(parts, recordedPart{
			name:        part.FormName(),
			fileName:    part.FileName(),
			contentType: part.Header.Get("Content-Type"),
			data:        string(data),
		})
	}
	return parts
}

type trackingReader struct {
	io.Reader
	closed   atomic.Int32
	closeErr error
}

func (r *trackingReader) Close() error {
	r.closed.Add(1)
	return r.closeErr
}

func TestMultipart_FieldOrderAndKinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.zip")
	if err := os.WriteFile(path, []byte("PK-zip"), 0o600); err != nil {
		t.Fatal(err)
	}

	var parts []recordedPart
	var query string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		query = r.URL.RawQuery
		parts = readParts(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	charset := "UTF-8"
	reader := &trackingReader{Reader: strings.NewReader("streamed")}
	payload := a.Target("/crx/packmgr/service/.json").BuildMultipart().
		Add("cmd", "upload").
		AddIfPresent("_charset_", &charset).
		AddIfPresent("absent", nil).
		AddBytes("raw", []byte{1, 2}, "").
		AddNamedBytes("named", "n.bin", []byte("nb"), ContentTypeOctetStream).
		AddNamedReader("stream", "s.txt", reader, ContentTypeTextPlain).
		AddFile("package", path, ContentTypeOctetStream).
		AddStringer("ct", ContentTypeJSON).
		QueryParam("force", "true").
		Build()

	if got := strings.Join(payload.FieldNames(), ","); got != "cmd,_charset_,raw,named,stream,package,ct" {
		t.Errorf("unexpected field order %s", got)
	}

	resp, err := payload.Send(context.Background(), ContentTypeJSON)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp == nil {
		t.Fatal("expected a response")
	}
	if query != "force=true" {
		t.Errorf("expected query force=true, got %q", query)
	}

	want := []recordedPart{
		{name: "cmd", data: "upload"},
		{name: "_charset_", data: "UTF-8"},
		{name: "raw", contentType: "application/octet-stream", data: "\x01\x02"},
		{name: "named", fileName: "n.bin", contentType: "application/octet-stream", data: "nb"},
		{name: "stream", fileName: "s.txt", contentType: "text/plain", data: "streamed"},
		{name: "package", fileName: "site.zip", contentType: "application/octet-stream", data: "PK-zip"},
		{name: "ct", data: "application/json"},
	}
	if len(parts) != len(want) {
		t.Fatalf("expected %d parts, got %d: %+v", len(want), len(parts), parts)
	}
	for i := range want {
		got := parts[i]
		if got.name != want[i].name || got.fileName != want[i].fileName || got.data != want[i].data {
			t.Errorf("part %d = %+v, want %+v", i, got, want[i])
		}
		if want[i].contentType != "" && got.contentType != want[i].contentType {
			t.Errorf("part %d content type = %q, want %q", i, got.contentType, want[i].contentType)
		}
	}
	if reader.closed.Load() != 1 {
		t.Errorf("expected reader to be closed once, got %d", reader.closed.Load())
	}
}

func TestMultipart_TransformHelpers(t *testing.T) {
	a, err := New(Config{BaseURL: "http://localhost:4502"})
	if err != nil {
		t.Fatal(err)
	}
	n := 7
	b := a.Target("/").BuildMultipart()
	TransformAndAdd(b, "n", &n, func(v int) string { return strings.Repeat("x", v) })
	TransformAndAdd[int](b, "skipped", nil, func(int) string { return "" })
	TransformAndAddBytes(b, "bytes", &n, ContentTypeOctetStream, func(v int) []byte { return []byte{byte(v)} })
	b.AddBytesIfPresent("nil-bytes", nil, "").AddReaderIfPresent("nil-reader", nil, "")

	if got := strings.Join(b.Build().FieldNames(), ","); got != "n,bytes" {
		t.Errorf("unexpected fields %s", got)
	}
}

func TestMultipart_ReleasedOnFailure(t *testing.T) {
	a := newTestAdapter(t, reply(http.StatusInternalServerError, "text/html", "boom"))

	reader := &trackingReader{Reader: bytes.NewReader(make([]byte, 1024))}
	payload := a.Target("/x").BuildMultipart().AddReader("file", reader, "").Build()

	_, err := payload.Send(context.Background(), ContentTypeJSON)
	if !IsProtocolViolation(err) {
		t.Fatalf("expected PROTOCOL_VIOLATION, got %v", err)
	}
	if reader.closed.Load() != 1 {
		t.Errorf("expected reader to be closed once, got %d", reader.closed.Load())
	}
}

func TestMultipart_ReleasedOnTransportFault(t *testing.T) {
	a, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	reader := &trackingReader{Reader: strings.NewReader("data")}
	_, err = a.Target("/x").BuildMultipart().AddReader("file", reader, "").Build().Send(context.Background(), ContentTypeJSON)
	if !IsTransportFault(err) {
		t.Fatalf("expected TRANSPORT_FAULT, got %v", err)
	}
	if reader.closed.Load() != 1 {
		t.Errorf("expected reader to be closed once, got %d", reader.closed.Load())
	}
}

func TestMultipart_MissingFile(t *testing.T) {
	var called atomic.Bool
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		called.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	reader := &trackingReader{Reader: strings.NewReader("data")}
	_, err := a.Target("/x").BuildMultipart().
		AddReader("first", reader, "").
		AddFile("package", filepath.Join(t.TempDir(), "missing.zip"), "").
		Build().
		Send(context.Background(), ContentTypeJSON)
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if called.Load() {
		t.Error("expected no request to be sent")
	}
	if reader.closed.Load() != 1 {
		t.Error("expected other sources to be released")
	}
}

func TestMultipart_SendTwice(t *testing.T) {
	a := newTestAdapter(t, reply(http.StatusNoContent, "", ""))
	payload := a.Target("/x").BuildMultipart().Add("cmd", "ls").Build()
	if _, err := payload.Send(context.Background(), ContentTypeJSON); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if _, err := payload.Send(context.Background(), ContentTypeJSON); !IsTransportFault(err) {
		t.Errorf("expected second Send to fail, got %v", err)
	}
}

func TestMultipart_CloseErrorsAggregated(t *testing.T) {
	var messages []string
	sink := logger.Sink(func(msg func() string) { messages = append(messages, msg()) })
	a := newTestAdapter(t, reply(http.StatusNoContent, "", ""), WithSink(sink))

	first := &trackingReader{Reader: strings.NewReader("a"), closeErr: stderrors.New("disk gone")}
	second := &trackingReader{Reader: strings.NewReader("b"), closeErr: stderrors.New("already closed")}
	payload := a.Target("/x").BuildMultipart().
		AddReader("one", first, "").
		AddReader("two", second, "").
		Build()

	resp, err := payload.Send(context.Background(), ContentTypeJSON)
	if err != nil || resp != nil {
		t.Fatalf("expected a successful 204 despite release errors, got (%v, %v)", resp, err)
	}

	closeErr := payload.Close()
	if closeErr == nil {
		t.Fatal("expected aggregated close error")
	}
	for _, want := range []string{"disk gone", "already closed"} {
		if !strings.Contains(closeErr.Error(), want) {
			t.Errorf("expected %q in %q", want, closeErr.Error())
		}
	}
	if first.closed.Load() != 1 || second.closed.Load() != 1 {
		t.Error("expected every source to be closed exactly once")
	}
	found := false
	for _, m := range messages {
		if strings.Contains(m, "releasing multipart fields") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected release failure in sink, got %v", messages)
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`a"b\c`); got != `a\"b\\c` {
		t.Errorf("unexpected escape %q", got)
	}
}
