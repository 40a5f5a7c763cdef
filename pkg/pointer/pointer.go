package pointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// Root is the pointer of the document root node.
const Root = "#"

// Keywords that appear as category segments inside schema pointers.
const (
	KeywordProperties = "properties"
	KeywordDefs       = "$defs"
	KeywordItems      = "items"
	KeywordAllOf      = "allOf"
	KeywordAnyOf      = "anyOf"
	KeywordOneOf      = "oneOf"
)

// ErrMalformed is returned when a string does not follow the pointer grammar.
var ErrMalformed = errors.New("pointer: malformed")

// Parse splits a pointer into its unescaped tokens. The root pointer yields an
// empty slice.
func Parse(p string) ([]string, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: empty pointer", ErrMalformed)
	}
	if p == Root {
		return []string{}, nil
	}
	if !strings.HasPrefix(p, Root+"/") {
		return nil, fmt.Errorf("%w: %q does not start at the root", ErrMalformed, p)
	}
	raw := strings.Split(p[len(Root)+1:], "/")
	tokens := make([]string, len(raw))
	for idx, segment := range raw {
		if segment == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment at position %d", ErrMalformed, p, idx)
		}
		tokens[idx] = jsonpointer.Unescape(segment)
	}
	return tokens, nil
}

// MustParse is Parse for pointers known to be well formed. It panics otherwise.
func MustParse(p string) []string {
	tokens, err := Parse(p)
	if err != nil {
		panic(err)
	}
	return tokens
}

// Validate reports whether p is a well formed pointer.
func Validate(p string) error {
	_, err := Parse(p)
	return err
}

// Make builds a pointer from raw tokens. A leading "#" token is accepted and
// not repeated.
func Make(tokens ...string) string {
	if len(tokens) > 0 && tokens[0] == Root {
		tokens = tokens[1:]
	}
	return Join(Root, tokens...)
}

// Join appends raw tokens to an existing pointer, escaping each of them.
func Join(base string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, token := range tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(token))
	}
	return b.String()
}

// ExtractName returns the last token of the pointer: the identifier of a
// property or definition, or the index of a combination member.
func ExtractName(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return jsonpointer.Unescape(p[idx+1:])
}

// ExtractCategory returns the keyword token preceding the name, e.g.
// "properties", "$defs" or a combination keyword.
func ExtractCategory(p string) string {
	tokens, err := Parse(p)
	if err != nil || len(tokens) < 2 {
		return ""
	}
	return tokens[len(tokens)-2]
}

// Parent drops the last keyword and name pair, plus the "items" token when
// the parent is an array. Tokens are read in pairs from the root, so a
// property that is itself named "items" stays intact. The parent of a root
// child is the root.
func Parent(p string) string {
	tokens, err := Parse(p)
	if err != nil || len(tokens) < 2 {
		return Root
	}
	parentEnd, end := 0, 0
	for end < len(tokens) {
		parentEnd = end
		if tokens[end] == KeywordItems && end+2 < len(tokens) {
			end++
		}
		end += 2
	}
	return Make(tokens[:parentEnd]...)
}

// Definition returns the pointer of the named definition.
func Definition(name string) string {
	return Join(Root, KeywordDefs, name)
}

// Property returns the pointer of a root property.
func Property(name string) string {
	return Join(Root, KeywordProperties, name)
}

// IsDefinition reports whether the top-level segment of p is $defs. Nodes
// nested inside a definition are definitions too.
func IsDefinition(p string) bool {
	return strings.HasPrefix(p, Root+"/"+KeywordDefs+"/")
}

// IsDirectDefinition reports whether p addresses a definition itself
// (#/$defs/<name>) rather than something nested inside one.
func IsDirectDefinition(p string) bool {
	if !IsDefinition(p) {
		return false
	}
	rest := strings.TrimPrefix(p, Root+"/"+KeywordDefs+"/")
	return rest != "" && !strings.Contains(rest, "/")
}

// IsAncestor reports whether p lies strictly below ancestor.
func IsAncestor(ancestor, p string) bool {
	return strings.HasPrefix(p, ancestor+"/")
}

// ReplaceStart swaps the oldPrefix of p for newPrefix. Pointers that neither
// equal nor descend from oldPrefix are returned unchanged.
func ReplaceStart(p, oldPrefix, newPrefix string) string {
	if p == oldPrefix {
		return newPrefix
	}
	if IsAncestor(oldPrefix, p) {
		return newPrefix + p[len(oldPrefix):]
	}
	return p
}

// IsCombinationKeyword reports whether token is allOf, anyOf or oneOf.
func IsCombinationKeyword(token string) bool {
	switch token {
	case KeywordAllOf, KeywordAnyOf, KeywordOneOf:
		return true
	default:
		return false
	}
}

// Container is implemented by ordered documents that can be walked by key.
type Container interface {
	Get(key string) (any, bool)
}

// Resolve walks a decoded document by pointer. Objects may be plain maps or any
// Container; arrays must be []any.
func Resolve(doc any, p string) (any, error) {
	tokens, err := Parse(p)
	if err != nil {
		return nil, err
	}
	current := doc
	for _, token := range tokens {
		switch typed := current.(type) {
		case Container:
			value, ok := typed.Get(token)
			if !ok {
				return nil, fmt.Errorf("pointer: %q not found", p)
			}
			current = value
		case map[string]any:
			value, ok := typed[token]
			if !ok {
				return nil, fmt.Errorf("pointer: %q not found", p)
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("pointer: %q out of range", p)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("pointer: %q invalid", p)
		}
	}
	return current, nil
}
