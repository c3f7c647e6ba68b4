package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAppError_New(t *testing.T) {
	err := New(ErrCodeOperationFailed, "boom")
	if err.Code != ErrCodeOperationFailed {
		t.Errorf("expected code %s, got %s", ErrCodeOperationFailed, err.Code)
	}
	if err.Error() != "OPERATION_FAILED: boom" {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := New(ErrCodeTransportFault, "call failed").WithCause(cause)
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestTransportFault(t *testing.T) {
	err := TransportFault("http://localhost:4502/crx", fmt.Errorf("dial tcp: refused"))
	if err.Code != ErrCodeTransportFault {
		t.Errorf("expected TRANSPORT_FAULT, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "http://localhost:4502/crx") {
		t.Errorf("expected target in message, got %q", err.Message)
	}
	if !strings.Contains(err.Message, "dial tcp: refused") {
		t.Errorf("expected low-level cause in message, got %q", err.Message)
	}
	if err.HTTPStatus != 0 {
		t.Errorf("expected no status, got %d", err.HTTPStatus)
	}
}

func TestStatusFailure(t *testing.T) {
	err := StatusFailure("http://aem/x", 500, "", []byte("stack trace"))
	if err.Code != ErrCodeProtocolViolation {
		t.Errorf("expected PROTOCOL_VIOLATION, got %s", err.Code)
	}
	if err.HTTPStatus != 500 {
		t.Errorf("expected 500, got %d", err.HTTPStatus)
	}
	want := "Call to 'http://aem/x' failed, statusCode='500', reason='Internal Server Error'.\nstack trace"
	if err.Message != want {
		t.Errorf("expected %q, got %q", want, err.Message)
	}
	if got := err.Error(); got != "PROTOCOL_VIOLATION: "+want {
		t.Errorf("unexpected Error(): %q", got)
	}
}

func TestStatusFailure_NoBody(t *testing.T) {
	err := StatusFailure("http://aem/x", 404, "Not Found", nil)
	if strings.Contains(err.Message, "\n") {
		t.Errorf("expected no body section, got %q", err.Message)
	}
}

func TestContentTypeMismatch(t *testing.T) {
	err := ContentTypeMismatch("http://aem/x", "application/json", "text/html", 200, []byte("<html/>"))
	for _, s := range []string{"'http://aem/x'", "application/json", "text/html", "<html/>"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("expected %q in Error(), got %q", s, err.Error())
		}
	}
	if err.Details["expected"] != "application/json" {
		t.Errorf("expected detail expected=application/json, got %v", err.Details["expected"])
	}
}

func TestWithBody_Truncates(t *testing.T) {
	body := strings.Repeat("x", maxBodyExcerpt+100)
	msg := withBody("m", []byte(body))
	if !strings.HasSuffix(msg, "...") {
		t.Error("expected truncated body to end with ...")
	}
	if len(msg) != len("m\n")+maxBodyExcerpt+3 {
		t.Errorf("unexpected message length %d", len(msg))
	}
}

func TestWithBody_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("x", maxBodyExcerpt-1) + "é" + "tail"
	msg := withBody("m", []byte(body))
	if !utf8.ValidString(msg) {
		t.Fatal("expected the excerpt to stay valid UTF-8")
	}
	want := "m\n" + strings.Repeat("x", maxBodyExcerpt-1) + "..."
	if msg != want {
		t.Errorf("expected the split rune to be dropped, got suffix %q", msg[len(msg)-8:])
	}
}

func TestInOperation(t *testing.T) {
	orig := StatusFailure("http://aem/crx/packmgr/service.jsp", 500, "", []byte("boom"))
	err := InOperation("list packages", orig)

	appErr, ok := AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != ErrCodeProtocolViolation || appErr.HTTPStatus != 500 {
		t.Errorf("expected code and status to be kept, got %s %d", appErr.Code, appErr.HTTPStatus)
	}
	want := "PROTOCOL_VIOLATION: Error while performing list packages. Call to 'http://aem/crx/packmgr/service.jsp' failed, statusCode='500', reason='Internal Server Error'.\nboom"
	if got := err.Error(); got != want {
		t.Errorf("unexpected Error():\n got %q\nwant %q", got, want)
	}
	if appErr.Details["operation"] != "list packages" || appErr.Details["target"] != "http://aem/crx/packmgr/service.jsp" {
		t.Errorf("unexpected details %v", appErr.Details)
	}
	if _, set := orig.Details["operation"]; set || strings.HasPrefix(orig.Message, "Error while") {
		t.Error("expected the original error to be left untouched")
	}

	if InOperation("x", nil) != nil {
		t.Error("expected nil for a nil error")
	}
	plain := stderrors.New("plain")
	if wrapped := InOperation("x", plain); !stderrors.Is(wrapped, plain) {
		t.Errorf("expected the plain error to stay reachable, got %v", wrapped)
	}
}

func TestAmbiguousPointer(t *testing.T) {
	err := AmbiguousPointer("/crx/response/data/packages/package", 3)
	if err.Details["matches"] != 3 {
		t.Errorf("expected matches=3, got %v", err.Details["matches"])
	}
	if !strings.Contains(err.Message, "3 nodes") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestMultipleRootNodes(t *testing.T) {
	err := MultipleRootNodes([]string{"a", "b"})
	if err.Message != "Expected exactly one root node, found 2 (a, b)." {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestUnexpectedMarkerValue(t *testing.T) {
	err := UnexpectedMarkerValue("delete", "/requestStatus", "failure")
	if err.Message != "Unexpected requestStatus returned from AEM (failure)." {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestOperationFailed(t *testing.T) {
	err := OperationFailed("Upload Package", "Package exists")
	if err.Message != "Error while performing Upload Package (Package exists)." {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestHasCode(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", MalformedDocument("JSON", nil))
	if !HasCode(wrapped, ErrCodeMalformedDocument) {
		t.Error("expected HasCode to see through wrapping")
	}
	if HasCode(wrapped, ErrCodeTransportFault) {
		t.Error("expected HasCode false for a different code")
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeMalformedDocument) {
		t.Error("expected HasCode false for a plain error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap("t", nil) != nil {
		t.Error("expected nil for nil error")
	}
	app := OperationFailed("x", "y")
	if Wrap("t", app) != error(app) {
		t.Error("expected AppError to pass through unchanged")
	}
	err := Wrap("http://aem", fmt.Errorf("eof"))
	if !HasCode(err, ErrCodeTransportFault) {
		t.Errorf("expected TRANSPORT_FAULT, got %v", err)
	}
}

func TestToResponse(t *testing.T) {
	err := StatusFailure("http://aem/x", 403, "Forbidden", nil)
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeProtocolViolation {
		t.Errorf("expected code PROTOCOL_VIOLATION, got %s", resp.Error.Code)
	}
	if resp.Error.Status != 403 {
		t.Errorf("expected status 403, got %d", resp.Error.Status)
	}
	if resp.Error.Details["target"] != "http://aem/x" {
		t.Errorf("expected target detail, got %v", resp.Error.Details["target"])
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected false for plain error")
	}
	app, ok := AsAppError(fmt.Errorf("w: %w", TokenExpired()))
	if !ok || app.Code != ErrCodeTokenExpired {
		t.Errorf("expected TOKEN_EXPIRED, got %v", app)
	}
	if !IsAppError(InvalidToken(nil)) {
		t.Error("expected IsAppError true")
	}
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("port", "must be positive")
	if err.Details["field"] != "port" {
		t.Errorf("expected field=port, got %v", err.Details["field"])
	}
	if err.Message != "Invalid input: must be positive" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if _, ok := InvalidInput("", "x").Details["field"]; ok {
		t.Error("expected no field detail when field is empty")
	}
}
