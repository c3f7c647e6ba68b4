package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors
const (
	// ErrCodeTransportFault indicates the connection or request processing failed.
	ErrCodeTransportFault ErrorCode = "TRANSPORT_FAULT"
	// ErrCodeProtocolViolation indicates a non-2xx status, a missing body or a
	// content-type the caller did not expect.
	ErrCodeProtocolViolation ErrorCode = "PROTOCOL_VIOLATION"
)

// Document errors
const (
	// ErrCodeMalformedDocument indicates a body that is not valid JSON or XML.
	ErrCodeMalformedDocument ErrorCode = "MALFORMED_DOCUMENT"
	// ErrCodeInvalidPointer indicates a pointer expression that cannot be evaluated.
	ErrCodeInvalidPointer ErrorCode = "INVALID_POINTER"
	// ErrCodeAmbiguousPointer indicates a single-value query matched several nodes.
	ErrCodeAmbiguousPointer ErrorCode = "AMBIGUOUS_POINTER"
	// ErrCodeInsertionTargetNotObject indicates an insert aimed at a non-container node.
	ErrCodeInsertionTargetNotObject ErrorCode = "INSERTION_TARGET_NOT_OBJECT"
	// ErrCodeMultipleRootNodes indicates a document without exactly one top-level field.
	ErrCodeMultipleRootNodes ErrorCode = "MULTIPLE_ROOT_NODES"
)

// Classification errors
const (
	// ErrCodeUnexpectedResponseShape indicates a body matching neither the
	// success shape nor the error shape of an operation.
	ErrCodeUnexpectedResponseShape ErrorCode = "UNEXPECTED_RESPONSE_SHAPE"
	// ErrCodeUnexpectedMarkerValue indicates a success marker with a value
	// outside the operation's accepted set.
	ErrCodeUnexpectedMarkerValue ErrorCode = "UNEXPECTED_MARKER_VALUE"
	// ErrCodeOperationFailed indicates the server reported a failure.
	ErrCodeOperationFailed ErrorCode = "OPERATION_FAILED"
)

// Input and credential errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeTokenExpired indicates the access token has expired.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInvalidToken indicates the access token could not be parsed.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)
