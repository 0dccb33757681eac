package ast

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"fnattrs/internal/source"
)

// Attr is a source attribute of the form `@name` or `@name(arg, ...)`.
// Arguments are bare words; codegen attributes never take expressions.
type Attr struct {
	Name    source.StringID
	Args    []source.StringID
	HasArgs bool // true for `@name(...)`, even when the list is empty
	Span    source.Span
}

// ErrMalformedAttr is returned by ParseAttr for text that is not an attribute.
var ErrMalformedAttr = errors.New("malformed attribute")

// Is reports whether the attribute is called name.
func (a Attr) Is(interner *source.Interner, name string) bool {
	if interner == nil || a.Name == source.NoStringID {
		return false
	}
	id, ok := interner.Find(name)
	return ok && id == a.Name
}

// NameString resolves the attribute name, or "" if the interner does not know it.
func (a Attr) NameString(interner *source.Interner) string {
	if interner == nil {
		return ""
	}
	name, _ := interner.Lookup(a.Name)
	return name
}

// String renders the attribute back in source form.
func (a Attr) String(interner *source.Interner) string {
	var sb strings.Builder
	sb.WriteByte('@')
	sb.WriteString(a.NameString(interner))
	if a.HasArgs {
		sb.WriteByte('(')
		for i, arg := range a.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			s, _ := interner.Lookup(arg)
			sb.WriteString(s)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// ParseAttr reads the textual form used in manifests and tests:
// `name`, `@name`, `name()` or `name(a, b)`.
func ParseAttr(interner *source.Interner, text string, span source.Span) (Attr, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "@")

	name, rest := splitIdent(s)
	if name == "" {
		return Attr{}, fmt.Errorf("%w: %q: expected attribute name", ErrMalformedAttr, text)
	}
	attr := Attr{Name: interner.Intern(name), Span: span}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return attr, nil
	}
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return Attr{}, fmt.Errorf("%w: %q: expected `(` after name", ErrMalformedAttr, text)
	}
	attr.HasArgs = true
	inner := strings.TrimSpace(rest[1 : len(rest)-1])
	if inner == "" {
		return attr, nil
	}
	for _, part := range strings.Split(inner, ",") {
		arg, tail := splitIdent(strings.TrimSpace(part))
		if arg == "" || strings.TrimSpace(tail) != "" {
			return Attr{}, fmt.Errorf("%w: %q: argument %q is not an identifier", ErrMalformedAttr, text, strings.TrimSpace(part))
		}
		attr.Args = append(attr.Args, interner.Intern(arg))
	}
	return attr, nil
}

// splitIdent splits a leading identifier off s.
func splitIdent(s string) (ident, rest string) {
	end := 0
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			end = i + len(string(r))
			continue
		}
		break
	}
	return s[:end], s[end:]
}
