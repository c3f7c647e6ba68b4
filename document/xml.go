package document

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/kbukum/aemkit/errors"
)

// xmlNodes evaluates an XPath expression. Node sets map to one Node per
// match; scalar results (count(), string(), boolean()) map to a single value.
func (d Document) xmlNodes(p Pointer) ([]Node, error) {
	expr, err := xpath.Compile(p.String())
	if err != nil {
		return nil, errors.InvalidPointer(p.String(), err)
	}

	switch v := expr.Evaluate(xmlquery.CreateXPathNavigator(d.xml)).(type) {
	case *xpath.NodeIterator:
		var nodes []Node
		for v.MoveNext() {
			nodes = append(nodes, xmlNode(v.Current()))
		}
		return nodes, nil
	case string:
		return []Node{{kind: KindValue, text: v}}, nil
	case float64:
		return []Node{{kind: KindValue, text: strconv.FormatFloat(v, 'f', -1, 64)}}, nil
	case bool:
		return []Node{{kind: KindValue, text: strconv.FormatBool(v)}}, nil
	default:
		return nil, nil
	}
}

func xmlNode(nav xpath.NodeNavigator) Node {
	switch nav.NodeType() {
	case xpath.ElementNode, xpath.RootNode:
		current, ok := nav.(*xmlquery.NodeNavigator)
		if !ok {
			return Node{kind: KindValue, text: nav.Value()}
		}
		n := current.Current()
		kind := KindValue
		if hasElementChild(n) {
			kind = KindContainer
		}
		return Node{kind: kind, text: n.InnerText(), elem: n}
	default:
		return Node{kind: KindValue, text: nav.Value()}
	}
}

// insertXML appends <key> to the single element p matches. The new element
// holds either the text value or a copy of the root element of content.
func (d Document) insertXML(p Pointer, key, value string, content *xmlquery.Node) (Document, error) {
	if !isXMLName(key) {
		return Document{}, errors.InvalidInput("key", "'"+key+"' is not a valid XML element name")
	}

	// Work on a private copy of the tree; the receiver's tree is shared.
	copyRoot, err := xmlquery.Parse(strings.NewReader(d.raw))
	if err != nil {
		return Document{}, errors.MalformedDocument(FormatXML.String(), err)
	}
	target := Document{format: FormatXML, raw: d.raw, xml: copyRoot}
	nodes, err := target.xmlNodes(p)
	if err != nil {
		return Document{}, err
	}
	if len(nodes) != 1 || nodes[0].elem == nil || nodes[0].elem.Type != xmlquery.ElementNode {
		return Document{}, errors.InsertionTargetNotObject(p.String())
	}

	child := &xmlquery.Node{Type: xmlquery.ElementNode, Data: key}
	xmlquery.AddChild(nodes[0].elem, child)
	if content != nil {
		fresh, err := xmlquery.Parse(strings.NewReader(content.OutputXML(false)))
		if err != nil {
			return Document{}, errors.MalformedDocument(FormatXML.String(), err)
		}
		for _, el := range rootElements(fresh) {
			xmlquery.AddChild(child, el)
		}
	} else if value != "" {
		xmlquery.AddChild(child, &xmlquery.Node{Type: xmlquery.TextNode, Data: value})
	}

	return ParseXML([]byte(copyRoot.OutputXML(false)))
}

// reroot returns the element n as a document of its own.
func reroot(n *xmlquery.Node) (Document, error) {
	if n.Type == xmlquery.DocumentNode {
		return ParseXML([]byte(n.OutputXML(false)))
	}
	return ParseXML([]byte(n.OutputXML(true)))
}

func rootElements(doc *xmlquery.Node) []*xmlquery.Node {
	if doc == nil {
		return nil
	}
	var out []*xmlquery.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func hasElementChild(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return !strings.HasPrefix(strings.ToLower(s), "xml")
}

// prettyXML re-indents raw with two spaces, dropping whitespace-only text.
func prettyXML(raw string) string {
	dec := xml.NewDecoder(strings.NewReader(raw))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		if cd, ok := tok.(xml.CharData); ok && len(bytes.TrimSpace(cd)) == 0 {
			continue
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return raw
		}
	}
	if err := enc.Flush(); err != nil {
		return raw
	}
	return buf.String()
}
