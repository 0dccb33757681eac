package ast

import (
	"fmt"

	"fnattrs/internal/diag"
	"fnattrs/internal/source"
)

// InlineAttr is the resolved inlining request for a function.
type InlineAttr uint8

const (
	InlineNone   InlineAttr = iota // no request; the backend decides
	InlineHint                     // @inline
	InlineAlways                   // @inline(always)
	InlineNever                    // @inline(never)
)

func (ia InlineAttr) String() string {
	switch ia {
	case InlineNone:
		return "none"
	case InlineHint:
		return "hint"
	case InlineAlways:
		return "always"
	case InlineNever:
		return "never"
	default:
		return fmt.Sprintf("InlineAttr(%d)", uint8(ia))
	}
}

// FindInlineAttr folds every @inline directive in attrs into a single value.
// The last directive wins. Malformed directives resolve to InlineNone and are
// reported as errors; well-formed directives that disagree are reported as a
// warning. A nil reporter suppresses diagnostics.
func FindInlineAttr(r diag.Reporter, interner *source.Interner, attrs []Attr) InlineAttr {
	result := InlineNone
	var prev *Attr
	for i := range attrs {
		attr := &attrs[i]
		if !attr.Is(interner, "inline") {
			continue
		}
		next, ok := resolveInline(r, interner, attr)
		if !ok {
			result, prev = InlineNone, nil
			continue
		}
		if prev != nil && next != result && r != nil {
			diag.ReportWarning(r, diag.AttrInlineConflict, attr.Span,
				fmt.Sprintf("conflicting inline directives: %s overrides %s", next, result)).
				WithNote(prev.Span, "previous directive here").
				Emit()
		}
		result, prev = next, attr
	}
	return result
}

func resolveInline(r diag.Reporter, interner *source.Interner, attr *Attr) (InlineAttr, bool) {
	if !attr.HasArgs {
		return InlineHint, true
	}
	if len(attr.Args) != 1 {
		if r != nil {
			diag.ReportError(r, diag.AttrInlineArgCount, attr.Span, "expected one argument").Emit()
		}
		return InlineNone, false
	}
	arg, _ := interner.Lookup(attr.Args[0])
	switch arg {
	case "always":
		return InlineAlways, true
	case "never":
		return InlineNever, true
	}
	if r != nil {
		diag.ReportError(r, diag.AttrInlineBadArg, attr.Span,
			fmt.Sprintf("invalid argument %q, expected `always` or `never`", arg)).Emit()
	}
	return InlineNone, false
}
