package ast

import (
	"testing"

	"fnattrs/internal/diag"
	"fnattrs/internal/source"
)

func parseAll(t *testing.T, interner *source.Interner, texts ...string) []Attr {
	t.Helper()
	attrs := make([]Attr, 0, len(texts))
	for i, text := range texts {
		span := source.Span{File: 1, Start: uint32(i * 10), End: uint32(i*10 + len(text))}
		attr, err := ParseAttr(interner, text, span)
		if err != nil {
			t.Fatalf("ParseAttr(%q): %v", text, err)
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func TestFindInlineAttr(t *testing.T) {
	tests := []struct {
		name  string
		attrs []string
		want  InlineAttr
		codes []diag.Code
	}{
		{name: "absent", attrs: []string{"cold", "naked"}, want: InlineNone},
		{name: "empty", want: InlineNone},
		{name: "word", attrs: []string{"inline"}, want: InlineHint},
		{name: "always", attrs: []string{"cold", "inline(always)"}, want: InlineAlways},
		{name: "never", attrs: []string{"inline(never)"}, want: InlineNever},
		{name: "no args", attrs: []string{"inline()"}, want: InlineNone, codes: []diag.Code{diag.AttrInlineArgCount}},
		{name: "two args", attrs: []string{"inline(always, never)"}, want: InlineNone, codes: []diag.Code{diag.AttrInlineArgCount}},
		{name: "bad arg", attrs: []string{"inline(sometimes)"}, want: InlineNone, codes: []diag.Code{diag.AttrInlineBadArg}},
		{name: "last wins", attrs: []string{"inline(never)", "inline(always)"}, want: InlineAlways, codes: []diag.Code{diag.AttrInlineConflict}},
		{name: "repeat agrees", attrs: []string{"inline(always)", "inline(always)"}, want: InlineAlways},
		{name: "malformed last", attrs: []string{"inline", "inline(x)"}, want: InlineNone, codes: []diag.Code{diag.AttrInlineBadArg}},
		{name: "recovers after malformed", attrs: []string{"inline(x)", "inline(never)"}, want: InlineNever, codes: []diag.Code{diag.AttrInlineBadArg}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interner := source.NewInterner()
			attrs := parseAll(t, interner, tt.attrs...)
			bag := diag.NewBag(0)
			got := FindInlineAttr(diag.BagReporter{Bag: bag}, interner, attrs)
			if got != tt.want {
				t.Fatalf("FindInlineAttr = %s, want %s", got, tt.want)
			}
			if bag.Len() != len(tt.codes) {
				t.Fatalf("diagnostics = %v, want codes %v", bag.Items(), tt.codes)
			}
			for i, code := range tt.codes {
				if bag.Items()[i].Code != code {
					t.Fatalf("diagnostic %d = %s, want %s", i, bag.Items()[i].Code, code)
				}
			}
		})
	}
}

func TestFindInlineAttrConflictNote(t *testing.T) {
	interner := source.NewInterner()
	attrs := parseAll(t, interner, "inline", "inline(never)")
	bag := diag.NewBag(0)
	FindInlineAttr(diag.BagReporter{Bag: bag}, interner, attrs)
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Severity != diag.SevWarning || d.Primary != attrs[1].Span {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span != attrs[0].Span {
		t.Fatalf("expected note pointing at first directive, got %+v", d.Notes)
	}
}

func TestFindInlineAttrNilReporter(t *testing.T) {
	interner := source.NewInterner()
	attrs := parseAll(t, interner, "inline(bogus)")
	if got := FindInlineAttr(nil, interner, attrs); got != InlineNone {
		t.Fatalf("FindInlineAttr = %s, want none", got)
	}
}
