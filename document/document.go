package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/tidwall/gjson"

	"github.com/kbukum/aemkit/errors"
)

// Format identifies the serialization of a Document.
type Format int

const (
	FormatJSON Format = iota + 1
	FormatXML
)

// String returns "JSON" or "XML".
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatXML:
		return "XML"
	default:
		return "unknown"
	}
}

// Document is an immutable parsed JSON or XML document. The zero value is an
// empty document that matches nothing.
type Document struct {
	format Format
	raw    string
	json   gjson.Result
	xml    *xmlquery.Node
}

// Parse parses raw as XML when its first non-blank character is '<' and as
// JSON otherwise.
func Parse(raw []byte) (Document, error) {
	if looksLikeXML(raw) {
		return ParseXML(raw)
	}
	return ParseJSON(raw)
}

// ParseFor parses raw in the format named by contentType. JSON and XML mime
// types, including "+json" and "+xml" suffixes, pick the format directly;
// every other type is sniffed, since some endpoints answer XML as text/plain.
func ParseFor(contentType string, raw []byte) (Document, error) {
	switch formatOf(contentType) {
	case FormatJSON:
		return ParseJSON(raw)
	case FormatXML:
		return ParseXML(raw)
	default:
		return Parse(raw)
	}
}

// ParseJSON parses raw as JSON.
func ParseJSON(raw []byte) (Document, error) {
	if !gjson.ValidBytes(raw) {
		return Document{}, errors.MalformedDocument(FormatJSON.String(), fmt.Errorf("invalid JSON"))
	}
	s := string(raw)
	return Document{format: FormatJSON, raw: s, json: gjson.Parse(s)}, nil
}

// ParseXML parses raw as XML. A document without a root element is rejected.
func ParseXML(raw []byte) (Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		return Document{}, errors.MalformedDocument(FormatXML.String(), err)
	}
	if len(rootElements(root)) == 0 {
		return Document{}, errors.MalformedDocument(FormatXML.String(), fmt.Errorf("no root element"))
	}
	return Document{format: FormatXML, raw: string(raw), xml: root}, nil
}

// Format returns the document's serialization.
func (d Document) Format() Format { return d.format }

// String returns the document text as parsed.
func (d Document) String() string { return d.raw }

// Bytes returns a copy of the document text.
func (d Document) Bytes() []byte { return []byte(d.raw) }

// Pretty returns an indented rendering for diagnostics. If the document
// cannot be re-indented it is returned as parsed.
func (d Document) Pretty() string {
	switch d.format {
	case FormatJSON:
		return prettyJSON(d.raw)
	case FormatXML:
		return prettyXML(d.raw)
	default:
		return d.raw
	}
}

// GetMany returns every node p matches, in document order.
func (d Document) GetMany(p Pointer) ([]Node, error) {
	switch d.format {
	case FormatJSON:
		matches, err := d.jsonMatches(p)
		if err != nil {
			return nil, err
		}
		nodes := make([]Node, len(matches))
		for i, m := range matches {
			nodes[i] = m.node()
		}
		return nodes, nil
	case FormatXML:
		return d.xmlNodes(p)
	default:
		return nil, nil
	}
}

// GetOne returns the single node p matches. ok is false when nothing
// matches; more than one match fails with AMBIGUOUS_POINTER.
func (d Document) GetOne(p Pointer) (Node, bool, error) {
	nodes, err := d.GetMany(p)
	if err != nil {
		return Node{}, false, err
	}
	switch len(nodes) {
	case 0:
		return Node{}, false, nil
	case 1:
		return nodes[0], true, nil
	default:
		return Node{}, false, errors.AmbiguousPointer(p.String(), len(nodes))
	}
}

// At returns the scalar text at p. ok is false when p matches nothing or a
// container.
func (d Document) At(p Pointer) (string, bool, error) {
	n, ok, err := d.GetOne(p)
	if err != nil || !ok || !n.IsValue() {
		return "", false, err
	}
	return n.text, true, nil
}

// SubdocumentAt returns the container at p as an independent document. XML
// elements qualify even when they only hold text. ok is false when p matches
// nothing or a scalar.
func (d Document) SubdocumentAt(p Pointer) (Document, bool, error) {
	n, ok, err := d.GetOne(p)
	if err != nil || !ok || !n.Rerootable() {
		return Document{}, false, err
	}
	sub, err := n.Document()
	if err != nil {
		return Document{}, false, err
	}
	return sub, true, nil
}

// SubdocumentsAt returns every match of p that can be re-rooted, as
// independent documents.
func (d Document) SubdocumentsAt(p Pointer) ([]Document, error) {
	nodes, err := d.GetMany(p)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(nodes))
	for _, n := range nodes {
		if !n.Rerootable() {
			continue
		}
		sub, err := n.Document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, sub)
	}
	return docs, nil
}

// InsertProperty returns a copy of d with key set to value inside the single
// object (JSON) or element (XML) p matches. d is unchanged.
func (d Document) InsertProperty(p Pointer, key, value string) (Document, error) {
	if key == "" {
		return Document{}, errors.InvalidInput("key", "property name must not be empty")
	}
	switch d.format {
	case FormatJSON:
		return d.insertJSON(p, key, value, false)
	case FormatXML:
		return d.insertXML(p, key, value, nil)
	default:
		return Document{}, errors.InsertionTargetNotObject(p.String())
	}
}

// InsertDocument returns a copy of d with key set to the content of value
// inside the single object (JSON) or element (XML) p matches. value must
// have the same format as d.
func (d Document) InsertDocument(p Pointer, key string, value Document) (Document, error) {
	if key == "" {
		return Document{}, errors.InvalidInput("key", "property name must not be empty")
	}
	if value.format != d.format {
		return Document{}, errors.InvalidInput("value", fmt.Sprintf("cannot insert a %s document into a %s document", value.format, d.format))
	}
	switch d.format {
	case FormatJSON:
		return d.insertJSON(p, key, value.raw, true)
	case FormatXML:
		return d.insertXML(p, key, "", value.xml)
	default:
		return Document{}, errors.InsertionTargetNotObject(p.String())
	}
}

// SingleRootName returns the only top-level field name: the single member of
// a JSON object or the XML document element. Anything else fails with
// MULTIPLE_ROOT_NODES.
func (d Document) SingleRootName() (string, error) {
	var names []string
	switch d.format {
	case FormatJSON:
		if d.json.IsObject() {
			d.json.ForEach(func(key, _ gjson.Result) bool {
				names = append(names, key.String())
				return true
			})
		}
	case FormatXML:
		for _, el := range rootElements(d.xml) {
			names = append(names, qualifiedName(el))
		}
	}
	if len(names) != 1 {
		return "", errors.MultipleRootNodes(names)
	}
	return names[0], nil
}

func looksLikeXML(raw []byte) bool {
	trimmed := bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '<'
}

func formatOf(contentType string) Format {
	essence := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	_, subtype, _ := strings.Cut(essence, "/")
	switch {
	case subtype == "json" || strings.HasSuffix(subtype, "+json"):
		return FormatJSON
	case subtype == "xml" || strings.HasSuffix(subtype, "+xml"):
		return FormatXML
	default:
		return 0
	}
}
