package classify

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kbukum/aemkit/document"
	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/httpclient"
	"github.com/kbukum/aemkit/observability"
)

// Operation describes how to recognize the success shape of one server
// command.
type Operation[S any] struct {
	// Name identifies the operation in errors, spans and metrics.
	Name string

	// Marker points at the field whose presence identifies a success
	// response, e.g. /success or /requestStatus.
	Marker document.Pointer

	// Accept lists the marker values the operation knows. Any other value
	// fails with UNEXPECTED_MARKER_VALUE. An empty list accepts every value.
	Accept []string

	// Build creates the success shape from the document and the marker value.
	Build func(doc document.Document, marker string) (S, error)
}

// Error shape pointers.
const (
	PointerCode              document.Pointer = "/code"
	PointerType              document.Pointer = "/type"
	PointerTitle             document.Pointer = "/title"
	PointerDescription       document.Pointer = "/description"
	PointerUnresolvedMessage document.Pointer = "/unresolvedMessage"
	PointerMessageArgs       document.Pointer = "/messageArgs/*"
	PointerRootCause         document.Pointer = "/rootCause"
)

// Options tune a classification.
type Options struct {
	// ContentType selects the document format; empty sniffs the body.
	ContentType string
	// Metrics records the outcome; nil uses observability.DefaultMetrics.
	Metrics *observability.Metrics
}

// Classify turns body into exactly one variant of op.
//
// The success marker is checked first. When it is present the success shape
// is built, provided the marker value is accepted. Otherwise the shared
// error shape is checked. A body that is not a document, or that matches
// neither shape, fails with UNEXPECTED_RESPONSE_SHAPE; it never becomes a
// success.
func Classify[S any](ctx context.Context, body []byte, op Operation[S]) (Variant[S], error) {
	return ClassifyWith(ctx, body, op, Options{})
}

// ClassifyResponse classifies the body of resp, as returned by a transport
// Send. The format comes from the response's content type unless
// opts.ContentType is set. A nil resp, the 204 outcome, carries no variant
// and fails with UNEXPECTED_RESPONSE_SHAPE.
func ClassifyResponse[S any](ctx context.Context, resp *httpclient.Response, op Operation[S], opts Options) (Variant[S], error) {
	if resp == nil {
		return observe(ctx, op.Name, opts, func() (Variant[S], error) {
			return Variant[S]{}, errors.UnexpectedResponseShape(op.Name, nil).WithDetail("reason", "no content")
		})
	}
	body, err := resp.ReadAll()
	if err != nil {
		return observe(ctx, op.Name, opts, func() (Variant[S], error) {
			return Variant[S]{}, errors.UnexpectedResponseShape(op.Name, nil).WithCause(err)
		})
	}
	if opts.ContentType == "" {
		opts.ContentType = resp.ContentType().String()
	}
	return ClassifyWith(ctx, body, op, opts)
}

// ClassifyWith is Classify with options.
func ClassifyWith[S any](ctx context.Context, body []byte, op Operation[S], opts Options) (Variant[S], error) {
	return observe(ctx, op.Name, opts, func() (Variant[S], error) {
		return classify(body, op, opts.ContentType)
	})
}

// observe runs fn inside a classification span and records its outcome.
func observe[S any](ctx context.Context, name string, opts Options, fn func() (Variant[S], error)) (Variant[S], error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanClassify)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrOperation, name))

	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics()
	}

	v, err := fn()
	outcome := observability.ClassifiedSuccess
	switch {
	case err != nil:
		outcome = observability.ClassifiedUnexpected
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !v.IsSuccess():
		outcome = observability.ClassifiedFailure
	}
	span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))
	metrics.RecordClassification(ctx, name, outcome)
	return v, err
}

func classify[S any](body []byte, op Operation[S], contentType string) (Variant[S], error) {
	doc, err := document.ParseFor(contentType, body)
	if err != nil {
		return Variant[S]{}, errors.UnexpectedResponseShape(op.Name, body).WithCause(err)
	}

	marker, found, err := doc.At(op.Marker)
	if err != nil {
		return Variant[S]{}, errors.UnexpectedResponseShape(op.Name, body).WithCause(err)
	}
	if found {
		if len(op.Accept) > 0 && !slices.Contains(op.Accept, marker) {
			return Variant[S]{}, errors.UnexpectedMarkerValue(op.Name, op.Marker.String(), marker)
		}
		value, err := op.Build(doc, marker)
		if err != nil {
			return Variant[S]{}, errors.UnexpectedResponseShape(op.Name, body).WithCause(err)
		}
		return Succeeded(value), nil
	}

	detail, found, err := ProbeError(doc)
	if err != nil {
		return Variant[S]{}, errors.UnexpectedResponseShape(op.Name, body).WithCause(err)
	}
	if found {
		return Failed[S](detail), nil
	}
	return Variant[S]{}, errors.UnexpectedResponseShape(op.Name, body)
}

// ProbeError reads the shared error shape from doc. ok is false unless
// code, type, title, description and rootCause are all present.
func ProbeError(doc document.Document) (ErrorDetail, bool, error) {
	var detail ErrorDetail
	required := []struct {
		pointer document.Pointer
		target  *string
	}{
		{PointerCode, &detail.Code},
		{PointerType, &detail.Type},
		{PointerTitle, &detail.Title},
		{PointerDescription, &detail.Description},
		{PointerRootCause, &detail.RootCause},
	}
	for _, r := range required {
		value, ok, err := doc.At(r.pointer)
		if err != nil || !ok {
			return ErrorDetail{}, false, err
		}
		*r.target = value
	}

	if msg, ok, err := doc.At(PointerUnresolvedMessage); err != nil {
		return ErrorDetail{}, false, err
	} else if ok {
		detail.UnresolvedMessage = &msg
	}

	args, err := doc.GetMany(PointerMessageArgs)
	if err != nil {
		return ErrorDetail{}, false, err
	}
	detail.MessageArgs = make([]string, 0, len(args))
	for _, a := range args {
		detail.MessageArgs = append(detail.MessageArgs, a.Text())
	}
	return detail, true, nil
}
