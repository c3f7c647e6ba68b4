package errors

import (
	"fmt"
	"maps"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxBodyExcerpt bounds how much of a server body is copied into a message.
const maxBodyExcerpt = 4096

// AppError is the unified error type of the client.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a self-contained human-readable message.
	Message string `json:"message"`
	// HTTPStatus is the status the server answered with, 0 when no response was received.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// InOperation names operation in the message of err, keeping its code, and
// records it as the operation detail. err itself is not modified.
func InOperation(operation string, err error) error {
	if err == nil {
		return nil
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return fmt.Errorf("error while performing %s: %w", operation, err)
	}
	out := *appErr
	out.Message = fmt.Sprintf("Error while performing %s. %s", operation, appErr.Message)
	out.Details = maps.Clone(appErr.Details)
	return out.WithDetail("operation", operation)
}

// --- Transport ---

// TransportFault creates an error for a call that never produced a response.
func TransportFault(target string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeTransportFault,
		Message: fmt.Sprintf("Error when calling '%s' (%v).", target, cause),
		Details: map[string]any{"target": target},
		Cause:   cause,
	}
}

// StatusFailure creates an error for a response outside the 2xx range.
func StatusFailure(target string, status int, reason string, body []byte) *AppError {
	if reason == "" {
		reason = http.StatusText(status)
	}
	msg := fmt.Sprintf("Call to '%s' failed, statusCode='%d', reason='%s'.", target, status, reason)
	return &AppError{
		Code:       ErrCodeProtocolViolation,
		Message:    withBody(msg, body),
		HTTPStatus: status,
		Details:    map[string]any{"target": target, "reason": reason},
	}
}

// MissingBody creates an error for a 2xx response that carried no entity.
func MissingBody(target string, status int) *AppError {
	return &AppError{
		Code:       ErrCodeProtocolViolation,
		Message:    fmt.Sprintf("Call to '%s' returned statusCode='%d' but no response body.", target, status),
		HTTPStatus: status,
		Details:    map[string]any{"target": target},
	}
}

// ContentTypeMismatch creates an error for a response whose declared type is
// absent or incompatible with the expected one.
func ContentTypeMismatch(target, expected, actual string, status int, body []byte) *AppError {
	msg := fmt.Sprintf("Response from '%s' was not of expected type (%s). content-type='%s'", target, expected, actual)
	return &AppError{
		Code:       ErrCodeProtocolViolation,
		Message:    withBody(msg, body),
		HTTPStatus: status,
		Details:    map[string]any{"target": target, "expected": expected, "actual": actual},
	}
}

// --- Documents ---

// MalformedDocument creates an error for text that is not valid in the named format.
func MalformedDocument(format string, cause error) *AppError {
	msg := fmt.Sprintf("Content is not a valid %s document.", format)
	return &AppError{
		Code:    ErrCodeMalformedDocument,
		Message: msg,
		Details: map[string]any{"format": format},
		Cause:   cause,
	}
}

// InvalidPointer creates an error for a pointer that cannot be evaluated.
func InvalidPointer(pointer string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidPointer,
		Message: fmt.Sprintf("Invalid pointer '%s'.", pointer),
		Details: map[string]any{"pointer": pointer},
		Cause:   cause,
	}
}

// AmbiguousPointer creates an error for a single-value query with several matches.
func AmbiguousPointer(pointer string, matches int) *AppError {
	return &AppError{
		Code:    ErrCodeAmbiguousPointer,
		Message: fmt.Sprintf("Pointer '%s' matched %d nodes where at most one was expected.", pointer, matches),
		Details: map[string]any{"pointer": pointer, "matches": matches},
	}
}

// InsertionTargetNotObject creates an error for an insert into a non-container node.
func InsertionTargetNotObject(pointer string) *AppError {
	return &AppError{
		Code:    ErrCodeInsertionTargetNotObject,
		Message: fmt.Sprintf("Cannot insert property, '%s' does not point to an object.", pointer),
		Details: map[string]any{"pointer": pointer},
	}
}

// MultipleRootNodes creates an error for a document without exactly one top-level field.
func MultipleRootNodes(names []string) *AppError {
	return &AppError{
		Code:    ErrCodeMultipleRootNodes,
		Message: fmt.Sprintf("Expected exactly one root node, found %d (%s).", len(names), strings.Join(names, ", ")),
		Details: map[string]any{"roots": names},
	}
}

// --- Classification ---

// UnexpectedResponseShape creates an error for a body matching no known shape.
func UnexpectedResponseShape(operation string, body []byte) *AppError {
	msg := fmt.Sprintf("Unexpected response returned from AEM for %s.", operation)
	return &AppError{
		Code:    ErrCodeUnexpectedResponseShape,
		Message: withBody(msg, body),
		Details: map[string]any{"operation": operation},
	}
}

// UnexpectedMarkerValue creates an error for a success marker outside the accepted set.
func UnexpectedMarkerValue(operation, marker, value string) *AppError {
	return &AppError{
		Code:    ErrCodeUnexpectedMarkerValue,
		Message: fmt.Sprintf("Unexpected %s returned from AEM (%s).", strings.TrimPrefix(marker, "/"), value),
		Details: map[string]any{"operation": operation, "marker": marker, "value": value},
	}
}

// OperationFailed creates an error for a failure the server reported.
func OperationFailed(operation, description string) *AppError {
	return &AppError{
		Code:    ErrCodeOperationFailed,
		Message: fmt.Sprintf("Error while performing %s (%s).", operation, description),
		Details: map[string]any{"operation": operation},
	}
}

// --- Input ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// TokenExpired creates an error for an access token past its expiry.
func TokenExpired() *AppError {
	return &AppError{
		Code:    ErrCodeTokenExpired,
		Message: "The configured access token has expired.",
	}
}

// InvalidToken creates an error for an access token that cannot be parsed.
func InvalidToken(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidToken,
		Message: "The configured access token is not a valid JWT.",
		Cause:   cause,
	}
}

// withBody appends a server body excerpt to a message.
func withBody(msg string, body []byte) string {
	if len(body) == 0 {
		return msg
	}
	text := string(body)
	if len(text) > maxBodyExcerpt {
		cut := maxBodyExcerpt
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return msg + "\n" + text
}
