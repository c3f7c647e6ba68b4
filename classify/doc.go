// Package classify turns AEM response bodies into typed variants.
//
// Every AEM operation answers either with its own success shape, identified
// by a marker field such as /success or /fileId, or with the shared error
// object:
//
//	{"code": "...", "type": "...", "title": "...", "description": "...",
//	 "unresolvedMessage": "...", "messageArgs": [...], "rootCause": "..."}
//
// Classify checks the success marker first and the error shape second. A body
// that matches neither fails with UNEXPECTED_RESPONSE_SHAPE instead of being
// treated as success.
//
//	op := classify.Operation[Result]{
//	    Name:   "delete",
//	    Marker: "/requestStatus",
//	    Accept: []string{"success"},
//	    Build:  func(doc document.Document, marker string) (Result, error) { ... },
//	}
//	v, err := classify.Classify(ctx, body, op)
//	if err != nil {
//	    return err // the body was not understood
//	}
//	if detail, failed := v.Failure(); failed {
//	    // the server reported an error
//	}
//
// Strict callers flatten an error variant into an OPERATION_FAILED error with
// Variant.Unwrap.
package classify
