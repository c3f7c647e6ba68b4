package classify

import (
	"strings"

	"github.com/kbukum/aemkit/errors"
)

// ErrorDetail is the error object AEM returns when an operation fails:
//
//	{"code":"ALC-FMG-600-009","type":"...","title":"...","description":"...",
//	 "unresolvedMessage":"...","messageArgs":["..."],"rootCause":"..."}
type ErrorDetail struct {
	Code        string `json:"code"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// UnresolvedMessage is the message template, nil when absent.
	UnresolvedMessage *string `json:"unresolvedMessage,omitempty"`

	// MessageArgs are the template arguments in order, empty when absent.
	MessageArgs []string `json:"messageArgs"`

	RootCause string `json:"rootCause"`
}

// String returns "code: description".
func (d ErrorDetail) String() string {
	var b strings.Builder
	b.WriteString(d.Code)
	if d.Description != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(d.Description)
	}
	return b.String()
}

// AppError converts d into an OPERATION_FAILED error for operation.
func (d ErrorDetail) AppError(operation string) *errors.AppError {
	return errors.OperationFailed(operation, d.Description).WithDetails(map[string]any{
		"code":         d.Code,
		"type":         d.Type,
		"title":        d.Title,
		"root_cause":   d.RootCause,
		"message_args": d.MessageArgs,
	})
}

// Variant is the outcome of one operation: either the success shape S or
// the server's ErrorDetail. Exactly one side is set.
type Variant[S any] struct {
	ok      bool
	value   S
	failure ErrorDetail
}

// Succeeded returns a success variant holding value.
func Succeeded[S any](value S) Variant[S] {
	return Variant[S]{ok: true, value: value}
}

// Failed returns an error variant holding detail.
func Failed[S any](detail ErrorDetail) Variant[S] {
	if detail.MessageArgs == nil {
		detail.MessageArgs = []string{}
	}
	return Variant[S]{failure: detail}
}

// IsSuccess reports whether the variant holds the success shape.
func (v Variant[S]) IsSuccess() bool { return v.ok }

// Success returns the success shape. ok is false for an error variant.
func (v Variant[S]) Success() (S, bool) {
	return v.value, v.ok
}

// Failure returns the error detail. ok is false for a success variant.
func (v Variant[S]) Failure() (ErrorDetail, bool) {
	if v.ok {
		return ErrorDetail{}, false
	}
	return v.failure, true
}

// Unwrap returns the success shape, or the error variant as an
// OPERATION_FAILED error naming operation.
func (v Variant[S]) Unwrap(operation string) (S, error) {
	if !v.ok {
		var zero S
		return zero, v.failure.AppError(operation)
	}
	return v.value, nil
}

// Map converts the success shape of v with fn. Error variants pass through.
func Map[S, T any](v Variant[S], fn func(S) T) Variant[T] {
	if !v.ok {
		return Variant[T]{failure: v.failure}
	}
	return Succeeded(fn(v.value))
}
