// Package document wraps a parsed JSON or XML server response and answers
// pointer queries against it.
//
// JSON documents are addressed with JSON Pointers (RFC 6901). A segment that
// is exactly "*" matches every member of an object or element of an array.
// XML documents are addressed with XPath 1.0 expressions. A Document is
// immutable; InsertProperty and InsertDocument return a new Document.
//
//	doc, err := document.ParseJSON(body)
//	msg, ok, err := doc.At("/msg")
//
// JSON null is reported as an absent node.
package document
