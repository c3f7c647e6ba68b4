package document

import (
	"github.com/antchfx/xmlquery"

	"github.com/kbukum/aemkit/errors"
)

// NodeKind tells a scalar from a container.
type NodeKind int

const (
	// KindValue is a scalar: a JSON string, number or boolean, an XML
	// attribute, text node, or element without element children.
	KindValue NodeKind = iota + 1
	// KindContainer is a JSON object or array, or an XML element with
	// element children.
	KindContainer
)

// String returns "value" or "container".
func (k NodeKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Node is one match of a pointer.
type Node struct {
	kind NodeKind
	text string

	// raw is the serialized subtree of a JSON container.
	raw string
	// elem is the matched XML element or document node.
	elem *xmlquery.Node
}

// Kind returns the node kind.
func (n Node) Kind() NodeKind { return n.kind }

// IsValue reports whether the node is a scalar.
func (n Node) IsValue() bool { return n.kind == KindValue }

// IsContainer reports whether the node is an object, array or XML element
// with children.
func (n Node) IsContainer() bool { return n.kind == KindContainer }

// Text returns the scalar text of a value node. For an XML element it is the
// concatenated text content. For a JSON container it is the raw JSON.
func (n Node) Text() string {
	if n.kind == KindContainer && n.raw != "" {
		return n.raw
	}
	return n.text
}

// Rerootable reports whether Document can turn the node into a document.
// JSON containers and every XML element qualify.
func (n Node) Rerootable() bool {
	return n.elem != nil || (n.kind == KindContainer && n.raw != "")
}

// Document returns the node as an independent document rooted at the node.
func (n Node) Document() (Document, error) {
	switch {
	case n.elem != nil:
		return reroot(n.elem)
	case n.kind == KindContainer && n.raw != "":
		return ParseJSON([]byte(n.raw))
	default:
		return Document{}, errors.InvalidInput("node", "a value node cannot be used as a document")
	}
}
