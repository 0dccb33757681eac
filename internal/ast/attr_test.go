package ast

import (
	"errors"
	"testing"

	"fnattrs/internal/source"
)

func TestParseAttr(t *testing.T) {
	interner := source.NewInterner()
	tests := []struct {
		text    string
		name    string
		hasArgs bool
		args    []string
	}{
		{text: "cold", name: "cold"},
		{text: "@naked", name: "naked"},
		{text: "  inline ( always ) ", name: "inline", hasArgs: true, args: []string{"always"}},
		{text: "inline()", name: "inline", hasArgs: true},
		{text: "inline(always, never)", name: "inline", hasArgs: true, args: []string{"always", "never"}},
		{text: "link_name(malloc_impl)", name: "link_name", hasArgs: true, args: []string{"malloc_impl"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			attr, err := ParseAttr(interner, tt.text, source.Span{})
			if err != nil {
				t.Fatalf("ParseAttr(%q): %v", tt.text, err)
			}
			if got := attr.NameString(interner); got != tt.name {
				t.Fatalf("name = %q, want %q", got, tt.name)
			}
			if attr.HasArgs != tt.hasArgs {
				t.Fatalf("HasArgs = %v, want %v", attr.HasArgs, tt.hasArgs)
			}
			if len(attr.Args) != len(tt.args) {
				t.Fatalf("args = %d, want %d", len(attr.Args), len(tt.args))
			}
			for i, want := range tt.args {
				if got, _ := interner.Lookup(attr.Args[i]); got != want {
					t.Fatalf("arg %d = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestParseAttrMalformed(t *testing.T) {
	interner := source.NewInterner()
	for _, text := range []string{"", "@", "(always)", "inline(always", "inline always", "inline(1x)", "inline(a b)"} {
		if _, err := ParseAttr(interner, text, source.Span{}); !errors.Is(err, ErrMalformedAttr) {
			t.Errorf("ParseAttr(%q) error = %v, want ErrMalformedAttr", text, err)
		}
	}
}

func TestAttrString(t *testing.T) {
	interner := source.NewInterner()
	attr, err := ParseAttr(interner, "inline(always)", source.Span{})
	if err != nil {
		t.Fatal(err)
	}
	if got := attr.String(interner); got != "@inline(always)" {
		t.Fatalf("String = %q", got)
	}
	if !attr.Is(interner, "inline") || attr.Is(interner, "cold") {
		t.Fatal("Is mismatch")
	}
}
