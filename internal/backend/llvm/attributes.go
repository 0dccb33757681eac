package llvm

import (
	"fmt"

	"fnattrs/internal/ast"
	"fnattrs/internal/diag"
	"fnattrs/internal/session"
	"fnattrs/internal/source"
)

// FramePointerAttr is the string attribute that keeps the frame pointer.
const FramePointerAttr = "no-frame-pointer-elim"

// SetInline marks fn with the given inline heuristic. InlineNone clears every
// inlining attribute; the other values replace whatever was set before.
func SetInline(fn *Func, inline ast.InlineAttr) {
	switch inline {
	case ast.InlineHint:
		fn.replaceInGroup(FunctionIndex, inlineGroup, AttrInlineHint)
	case ast.InlineAlways:
		fn.replaceInGroup(FunctionIndex, inlineGroup, AttrAlwaysInline)
	case ast.InlineNever:
		fn.replaceInGroup(FunctionIndex, inlineGroup, AttrNoInline)
	case ast.InlineNone:
		fn.RemoveAttr(FunctionIndex, inlineGroup)
	default:
		panic(fmt.Sprintf("llvm: unknown inline attribute %s", inline))
	}
}

// EmitUWTable controls whether unwind tables are emitted for fn.
func EmitUWTable(fn *Func, emit bool) {
	if emit {
		fn.AddAttr(FunctionIndex, AttrUWTable)
	} else {
		fn.RemoveAttr(FunctionIndex, AttrUWTable)
	}
}

// SetUnwind records whether fn may unwind. The backend attribute is the
// negation: canUnwind=false sets nounwind.
func SetUnwind(fn *Func, canUnwind bool) {
	if canUnwind {
		fn.RemoveAttr(FunctionIndex, AttrNoUnwind)
	} else {
		fn.AddAttr(FunctionIndex, AttrNoUnwind)
	}
}

// SetOptimizeForSize toggles optsize.
func SetOptimizeForSize(fn *Func, optimize bool) {
	if optimize {
		fn.AddAttr(FunctionIndex, AttrOptimizeForSize)
	} else {
		fn.RemoveAttr(FunctionIndex, AttrOptimizeForSize)
	}
}

// SetNaked toggles the naked marker (no prologue or epilogue).
func SetNaked(fn *Func, naked bool) {
	if naked {
		fn.AddAttr(FunctionIndex, AttrNaked)
	} else {
		fn.RemoveAttr(FunctionIndex, AttrNaked)
	}
}

// SetFramePointerElimination keeps the frame pointer of fn when the session
// requires it. Nothing is attached otherwise.
func SetFramePointerElimination(sess *session.Session, fn *Func) {
	if sess.MustNotEliminateFramePointers() {
		fn.AddStringAttr(FunctionIndex, FramePointerAttr, "true")
	}
}

// FromFnAttrs applies every backend attribute implied by the source
// attributes of one function. It must run after fn is created and before its
// body is emitted. Running it again with the same inputs leaves fn unchanged.
//
// Attributes the backend does not care about are skipped. A function that
// ends up naked, whether from @naked or an earlier SetNaked, must not ask to
// be inlined: the request is reported and dropped.
func FromFnAttrs(sess *session.Session, attrs []ast.Attr, fn *Func) {
	inline := ast.FindInlineAttr(sess.Reporter, sess.Interner, attrs)
	SetInline(fn, inline)

	SetFramePointerElimination(sess, fn)

	var nakedAttr *ast.Attr
	for i := range attrs {
		attr := &attrs[i]
		switch attr.NameString(sess.Interner) {
		case "cold":
			fn.AddAttr(FunctionIndex, AttrCold)
		case "naked":
			SetNaked(fn, true)
			nakedAttr = attr
		case "allocator":
			fn.AddAttr(ReturnIndex, AttrNoAlias)
		case "unwind":
			SetUnwind(fn, true)
		}
	}

	if fn.HasAttr(FunctionIndex, AttrNaked) && (inline == ast.InlineHint || inline == ast.InlineAlways) {
		var span source.Span
		if nakedAttr != nil {
			span = nakedAttr.Span
		}
		diag.ReportError(sess.Reporter, diag.AttrNakedInline, span,
			fmt.Sprintf("naked function %s cannot be inlined (inline: %s)", fn.Name, inline)).Emit()
		SetInline(fn, ast.InlineNone)
	}
}
