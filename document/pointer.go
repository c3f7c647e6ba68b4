package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer is a path expression: a JSON Pointer for JSON documents, an XPath
// expression for XML documents.
type Pointer string

// Wildcard is the JSON Pointer segment matching every child of a container.
const Wildcard = "*"

// String returns the pointer text.
func (p Pointer) String() string { return string(p) }

// Child returns the JSON Pointer p with one more segment, escaped.
func (p Pointer) Child(segment string) Pointer {
	escaped := strings.NewReplacer("~", "~0", "/", "~1").Replace(segment)
	return Pointer(string(p) + "/" + escaped)
}

// segments splits a JSON Pointer into unescaped reference tokens. The empty
// pointer addresses the whole document.
func (p Pointer) segments() ([]string, error) {
	s := string(p)
	if s == "" {
		return nil, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("pointer must be empty or start with '/'")
	}
	parts := strings.Split(s[1:], "/")
	for i, part := range parts {
		unescaped, err := unescapeToken(part)
		if err != nil {
			return nil, err
		}
		parts[i] = unescaped
	}
	return parts, nil
}

func unescapeToken(token string) (string, error) {
	if !strings.Contains(token, "~") {
		return token, nil
	}
	var b strings.Builder
	for i := 0; i < len(token); i++ {
		if token[i] != '~' {
			b.WriteByte(token[i])
			continue
		}
		if i+1 >= len(token) {
			return "", fmt.Errorf("dangling '~' in %q", token)
		}
		switch token[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape '~%c' in %q", token[i+1], token)
		}
		i++
	}
	return b.String(), nil
}

// arrayIndex parses a reference token as an array index. Leading zeros are
// not allowed.
func arrayIndex(token string) (int, bool) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	for _, c := range token {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(token)
	return n, err == nil
}
