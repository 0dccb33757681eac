package llvm

import (
	"bytes"
	"testing"

	"fnattrs/internal/ast"
	"fnattrs/internal/diag"
	"fnattrs/internal/session"
	"fnattrs/internal/source"
)

func newTestSession(t *testing.T, cfg session.Config) (*session.Session, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	return session.New(cfg, diag.BagReporter{Bag: bag}, source.NewInterner()), bag
}

func parseAttrs(t *testing.T, sess *session.Session, texts ...string) []ast.Attr {
	t.Helper()
	attrs := make([]ast.Attr, 0, len(texts))
	for i, text := range texts {
		attr, err := ast.ParseAttr(sess.Interner, text, source.Span{File: 1, Start: uint32(i), End: uint32(i + 1)})
		if err != nil {
			t.Fatalf("ParseAttr(%q): %v", text, err)
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func encode(t *testing.T, fn *Func) []byte {
	t.Helper()
	data, err := fn.EncodeAttrs()
	if err != nil {
		t.Fatalf("EncodeAttrs: %v", err)
	}
	return data
}

func TestSetInline(t *testing.T) {
	tests := []struct {
		inline ast.InlineAttr
		want   Attribute
	}{
		{ast.InlineHint, AttrInlineHint},
		{ast.InlineAlways, AttrAlwaysInline},
		{ast.InlineNever, AttrNoInline},
		{ast.InlineNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.inline.String(), func(t *testing.T) {
			fn := NewFunc("f", "void")
			fn.AddAttr(FunctionIndex, AttrCold)
			SetInline(fn, tt.inline)
			once := encode(t, fn)
			SetInline(fn, tt.inline)
			if !bytes.Equal(once, encode(t, fn)) {
				t.Fatalf("SetInline(%s) is not idempotent", tt.inline)
			}
			if got := fn.Attrs(FunctionIndex) & inlineGroup; got != tt.want {
				t.Fatalf("inline bits = %q, want %q", got, tt.want)
			}
			if fn.Inline() != tt.inline {
				t.Fatalf("Inline() = %s, want %s", fn.Inline(), tt.inline)
			}
			if !fn.HasAttr(FunctionIndex, AttrCold) {
				t.Fatalf("SetInline touched unrelated bits: %q", fn.Attrs(FunctionIndex))
			}
		})
	}
}

func TestSetInlineReplacesPrevious(t *testing.T) {
	values := []ast.InlineAttr{ast.InlineHint, ast.InlineAlways, ast.InlineNever, ast.InlineNone}
	for _, from := range values {
		for _, to := range values {
			fn := NewFunc("f", "void")
			SetInline(fn, from)
			SetInline(fn, to)
			fresh := NewFunc("f", "void")
			SetInline(fresh, to)
			if fn.Attrs(FunctionIndex) != fresh.Attrs(FunctionIndex) {
				t.Errorf("%s -> %s left %q, want %q", from, to, fn.Attrs(FunctionIndex), fresh.Attrs(FunctionIndex))
			}
		}
	}
}

func TestSetInlineUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	SetInline(NewFunc("f", "void"), ast.InlineAttr(42))
}

func TestToggleConsistency(t *testing.T) {
	toggles := []struct {
		name string
		set  func(*Func, bool)
		bit  Attribute
		on   bool // value that sets the bit
	}{
		{"uwtable", EmitUWTable, AttrUWTable, true},
		{"optsize", SetOptimizeForSize, AttrOptimizeForSize, true},
		{"naked", SetNaked, AttrNaked, true},
		{"unwind", SetUnwind, AttrNoUnwind, false},
	}
	for _, tg := range toggles {
		for _, b := range []bool{true, false} {
			single := NewFunc("f", "void")
			tg.set(single, b)

			toggled := NewFunc("f", "void")
			tg.set(toggled, b)
			tg.set(toggled, !b)
			tg.set(toggled, b)

			if !bytes.Equal(encode(t, single), encode(t, toggled)) {
				t.Errorf("%s(%v): toggling left residue %q vs %q", tg.name, b, toggled.Attrs(FunctionIndex), single.Attrs(FunctionIndex))
			}
			if got := single.HasAttr(FunctionIndex, tg.bit); got != (b == tg.on) {
				t.Errorf("%s(%v): bit set = %v", tg.name, b, got)
			}
		}
	}
}

func TestSetUnwindPolarity(t *testing.T) {
	tests := []struct {
		canUnwind    bool
		wantNoUnwind bool
	}{
		{canUnwind: true, wantNoUnwind: false},
		{canUnwind: false, wantNoUnwind: true},
	}
	for _, tt := range tests {
		fn := NewFunc("f", "void")
		SetUnwind(fn, tt.canUnwind)
		if got := fn.HasAttr(FunctionIndex, AttrNoUnwind); got != tt.wantNoUnwind {
			t.Errorf("SetUnwind(%v): nounwind = %v, want %v", tt.canUnwind, got, tt.wantNoUnwind)
		}
	}

	fn := NewFunc("f", "void")
	SetUnwind(fn, true)
	SetUnwind(fn, false)
	if !fn.HasAttr(FunctionIndex, AttrNoUnwind) {
		t.Fatal("unwind(true) then unwind(false) must leave nounwind set")
	}
}

func TestSetFramePointerElimination(t *testing.T) {
	keep := session.DefaultConfig()
	keep.ForceFramePointers = true
	sess, _ := newTestSession(t, keep)
	fn := NewFunc("f", "void")
	SetFramePointerElimination(sess, fn)
	if v, ok := fn.StringAttr(FramePointerAttr); !ok || v != "true" {
		t.Fatalf("frame pointer attr = %q, %v", v, ok)
	}

	sess, _ = newTestSession(t, session.DefaultConfig())
	fn = NewFunc("f", "void")
	SetFramePointerElimination(sess, fn)
	if _, ok := fn.StringAttr(FramePointerAttr); ok {
		t.Fatal("no attribute expected when elimination is allowed")
	}
}

func TestFromFnAttrsColdUnwind(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.ForceFramePointers = true
	sess, bag := newTestSession(t, cfg)
	fn := NewFunc("f", "void")
	SetInline(fn, ast.InlineAlways)

	FromFnAttrs(sess, parseAttrs(t, sess, "cold", "unwind"), fn)

	if !fn.HasAttr(FunctionIndex, AttrCold) {
		t.Error("cold bit not set")
	}
	if fn.HasAttr(FunctionIndex, AttrNoUnwind) {
		t.Error("nounwind should be cleared")
	}
	if v, ok := fn.StringAttr(FramePointerAttr); !ok || v != "true" {
		t.Errorf("frame pointer attr = %q, %v", v, ok)
	}
	if fn.Attrs(FunctionIndex)&inlineGroup != 0 || fn.Inline() != ast.InlineNone {
		t.Errorf("inline bits should be cleared, got %q", fn.Attrs(FunctionIndex))
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestFromFnAttrsNaked(t *testing.T) {
	sess, bag := newTestSession(t, session.DefaultConfig())
	fn := NewFunc("f", "void")

	FromFnAttrs(sess, parseAttrs(t, sess, "naked"), fn)

	if !fn.HasAttr(FunctionIndex, AttrNaked) {
		t.Error("naked bit not set")
	}
	if _, ok := fn.StringAttr(FramePointerAttr); ok {
		t.Error("frame pointer attribute should be absent")
	}
	if fn.HasAttr(FunctionIndex, AttrNoUnwind) {
		t.Error("nounwind should stay unset")
	}
	if fn.Attrs(FunctionIndex)&inlineGroup != 0 {
		t.Errorf("inline bits should be untouched, got %q", fn.Attrs(FunctionIndex))
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestFromFnAttrsAllocatorAndSkips(t *testing.T) {
	sess, _ := newTestSession(t, session.DefaultConfig())
	fn := NewFunc("alloc", "ptr", "i64")
	SetUnwind(fn, false)

	FromFnAttrs(sess, parseAttrs(t, sess, "doc(allocates)", "allocator", "COLD", "must_use", "inline(never)"), fn)

	if !fn.HasAttr(ReturnIndex, AttrNoAlias) {
		t.Error("noalias not set on return value")
	}
	if fn.HasAttr(FunctionIndex, AttrNoAlias) {
		t.Error("noalias must not be set at function index")
	}
	if fn.HasAttr(FunctionIndex, AttrCold) {
		t.Error("name matching is case-sensitive: COLD is not cold")
	}
	if !fn.HasAttr(FunctionIndex, AttrNoUnwind|AttrNoInline) {
		t.Errorf("unexpected function attrs %q", fn.Attrs(FunctionIndex))
	}
	if fn.Attrs(ParamIndex(0)) != 0 {
		t.Errorf("parameter attrs should be empty, got %q", fn.Attrs(ParamIndex(0)))
	}
}

func TestFromFnAttrsNakedRejectsInline(t *testing.T) {
	for _, inline := range []string{"inline", "inline(always)"} {
		sess, bag := newTestSession(t, session.DefaultConfig())
		fn := NewFunc("entry", "void")
		FromFnAttrs(sess, parseAttrs(t, sess, inline, "naked"), fn)

		if !fn.HasAttr(FunctionIndex, AttrNaked) {
			t.Errorf("%s: naked bit not set", inline)
		}
		if fn.Inline() != ast.InlineNone {
			t.Errorf("%s: inline request should be dropped, got %s", inline, fn.Inline())
		}
		if bag.Len() != 1 || bag.Items()[0].Code != diag.AttrNakedInline {
			t.Errorf("%s: diagnostics = %v", inline, bag.Items())
		}
	}

	sess, bag := newTestSession(t, session.DefaultConfig())
	fn := NewFunc("entry", "void")
	FromFnAttrs(sess, parseAttrs(t, sess, "naked", "inline(never)"), fn)
	if fn.Inline() != ast.InlineNever || bag.Len() != 0 {
		t.Errorf("naked + inline(never) is allowed: inline=%s diags=%v", fn.Inline(), bag.Items())
	}
}

func TestFromFnAttrsPresetNakedRejectsInline(t *testing.T) {
	sess, bag := newTestSession(t, session.DefaultConfig())
	fn := NewFunc("entry", "void")
	SetNaked(fn, true)
	FromFnAttrs(sess, parseAttrs(t, sess, "inline(always)"), fn)

	if fn.Inline() != ast.InlineNone {
		t.Errorf("inline request should be dropped, got %s", fn.Inline())
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.AttrNakedInline {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	if !bag.Items()[0].Primary.Empty() {
		t.Errorf("no @naked attribute to point at, got span %v", bag.Items()[0].Primary)
	}
}

func TestFromFnAttrsIdempotent(t *testing.T) {
	inputs := [][]string{
		{"cold", "unwind"},
		{"naked"},
		{"inline(always)", "allocator", "cold"},
		{"inline", "inline(never)", "naked", "unwind"},
		{"inline(bogus)", "allocator"},
	}
	for _, texts := range inputs {
		cfg := session.DefaultConfig()
		cfg.DebugInfo = session.DebugInfoFull
		sess, _ := newTestSession(t, cfg)
		attrs := parseAttrs(t, sess, texts...)

		once := NewFunc("f", "ptr", "i64")
		FromFnAttrs(sess, attrs, once)

		twice := NewFunc("f", "ptr", "i64")
		FromFnAttrs(sess, attrs, twice)
		FromFnAttrs(sess, attrs, twice)

		if !bytes.Equal(encode(t, once), encode(t, twice)) {
			t.Errorf("%v: second run changed attributes: %+v vs %+v", texts, once.Snapshot(), twice.Snapshot())
		}
	}
}
