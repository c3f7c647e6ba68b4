// Package errors provides the unified error type of the AEM client.
// Every failure carries a machine-readable ErrorCode and a self-contained
// message that includes the target, status and a body excerpt where known.
package errors
