package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldService       = "service"
	FieldComponent     = "component"
	FieldCorrelationID = "correlation_id"
	FieldOperation     = "operation"
	FieldTarget        = "target"
	FieldMethod        = "method"
	FieldStatus        = "status"
	FieldContentType   = "content_type"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("uploaded", logger.Fields("target", url, "status", 200))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// CallFields creates fields for one completed HTTP call.
func CallFields(method, target string, status int, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldMethod:   method,
		FieldTarget:   target,
		FieldStatus:   status,
		FieldDuration: d.Milliseconds(),
	}
}
