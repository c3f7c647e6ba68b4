package document

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/kbukum/aemkit/errors"
)

// step is one concrete member name or array index on the way to a match.
type step struct {
	key   string
	index bool
}

type jsonMatch struct {
	value gjson.Result
	path  []step
}

func (m jsonMatch) child(key string, index bool, value gjson.Result) jsonMatch {
	return jsonMatch{value: value, path: append(slices.Clone(m.path), step{key: key, index: index})}
}

func (m jsonMatch) node() Node {
	if m.value.IsObject() || m.value.IsArray() {
		return Node{kind: KindContainer, raw: m.value.Raw}
	}
	return Node{kind: KindValue, text: m.value.String()}
}

// jsonMatches evaluates a JSON Pointer. Null values count as absent.
func (d Document) jsonMatches(p Pointer) ([]jsonMatch, error) {
	segments, err := p.segments()
	if err != nil {
		return nil, errors.InvalidPointer(p.String(), err)
	}

	current := []jsonMatch{{value: d.json}}
	for _, seg := range segments {
		var next []jsonMatch
		for _, m := range current {
			next = append(next, stepJSON(m, seg)...)
		}
		if len(next) == 0 {
			return nil, nil
		}
		current = next
	}

	matches := current[:0]
	for _, m := range current {
		if m.value.Exists() && m.value.Type != gjson.Null {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func stepJSON(m jsonMatch, seg string) []jsonMatch {
	var out []jsonMatch
	switch {
	case m.value.IsObject():
		m.value.ForEach(func(key, value gjson.Result) bool {
			if seg == Wildcard || key.String() == seg {
				out = append(out, m.child(key.String(), false, value))
				return seg == Wildcard
			}
			return true
		})
	case m.value.IsArray():
		elems := m.value.Array()
		if seg == Wildcard {
			for i, e := range elems {
				out = append(out, m.child(strconv.Itoa(i), true, e))
			}
			return out
		}
		if i, ok := arrayIndex(seg); ok && i < len(elems) {
			out = append(out, m.child(seg, true, elems[i]))
		}
	}
	return out
}

// insertJSON sets key in the single object p matches. raw selects whether
// value is JSON text or a plain string.
func (d Document) insertJSON(p Pointer, key, value string, raw bool) (Document, error) {
	matches, err := d.jsonMatches(p)
	if err != nil {
		return Document{}, err
	}
	if len(matches) != 1 || !matches[0].value.IsObject() {
		return Document{}, errors.InsertionTargetNotObject(p.String())
	}

	path := setterPath(append(slices.Clone(matches[0].path), step{key: key}))
	var out string
	if raw {
		out, err = sjson.SetRaw(d.raw, path, value)
	} else {
		out, err = sjson.Set(d.raw, path, value)
	}
	if err != nil {
		return Document{}, errors.InvalidInput("key", err.Error()).WithCause(err)
	}
	return ParseJSON([]byte(out))
}

// setterPath renders concrete steps as an sjson path. Member names are
// escaped and numeric member names are forced to object keys.
func setterPath(steps []step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		switch {
		case s.index:
			parts[i] = s.key
		case isDigits(s.key):
			parts[i] = ":" + s.key
		default:
			parts[i] = escapePathKey(s.key)
		}
	}
	return strings.Join(parts, ".")
}

const pathSpecials = `\.*?|#@!=<>%:`

func escapePathKey(key string) string {
	if !strings.ContainsAny(key, pathSpecials) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(pathSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func prettyJSON(raw string) string {
	return string(pretty.Pretty([]byte(raw)))
}
