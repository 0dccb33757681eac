package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"fnattrs/internal/ast"
	"fnattrs/internal/diag"
	"fnattrs/internal/source"
)

// testModule builds two functions; diagnostics point at the second one.
func testModule(t *testing.T, interner *source.Interner) (*diag.Bag, []Fn) {
	t.Helper()
	var attrs []ast.Attr
	for i, text := range []string{"inline(always)", "naked"} {
		a, err := ast.ParseAttr(interner, text, source.Span{File: 2, Start: uint32(i), End: uint32(i + 1)})
		if err != nil {
			t.Fatalf("ParseAttr(%q): %v", text, err)
		}
		attrs = append(attrs, a)
	}
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevWarning, diag.AttrTargetMismatch, attrs[0].Span, "inline on extern"))
	bag.Add(diag.New(diag.SevError, diag.AttrNakedInline, attrs[1].Span, "naked function cannot be inlined").
		WithNote(attrs[0].Span, "inline requested here"))
	bag.Add(diag.New(diag.SevInfo, diag.AttrMalformed, source.Span{}, "detached"))
	return bag, []Fn{{Name: "other"}, {Name: "entry", Attrs: attrs}}
}

func TestPretty(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	interner := source.NewInterner()
	bag, fns := testModule(t, interner)

	var buf bytes.Buffer
	Pretty(&buf, interner, bag, fns, PrettyOpts{ShowNotes: true})
	out := buf.String()
	for _, want := range []string{
		"error[A5004]: fn entry: naked function cannot be inlined\n  --> attrs[1] @naked\n",
		"  note: inline requested here (attrs[0] @inline(always))\n",
		"warning[A5007]: fn entry: inline on extern\n",
		"info[A5005]: detached\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "fn other") {
		t.Errorf("no diagnostic points at other:\n%s", out)
	}

	buf.Reset()
	Pretty(&buf, interner, bag, fns, PrettyOpts{Quiet: true})
	if got := buf.String(); strings.Contains(got, "warning") || strings.Contains(got, "note") || strings.Contains(got, "info") {
		t.Errorf("quiet output without notes expected, got:\n%s", got)
	}
}

func TestLookupFn(t *testing.T) {
	fns := []Fn{{Name: "a"}, {Name: "b"}}
	for file, want := range map[source.FileID]string{0: "", 1: "a", 2: "b", 3: ""} {
		fn, ok := lookupFn(fns, file)
		if ok != (want != "") || fn.Name != want {
			t.Errorf("lookupFn(%d) = %q, %v", file, fn.Name, ok)
		}
	}
}

func TestJSON(t *testing.T) {
	interner := source.NewInterner()
	bag, fns := testModule(t, interner)

	var buf bytes.Buffer
	if err := JSON(&buf, interner, bag, fns, JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var got DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if got.Count != 3 || got.Errors != 1 {
		t.Fatalf("count=%d errors=%d", got.Count, got.Errors)
	}
	naked := got.Diagnostics[1]
	if naked.Code != "A5004" || naked.Severity != "ERROR" || naked.Fn != "entry" {
		t.Fatalf("naked diagnostic = %+v", naked)
	}
	if naked.Title != diag.AttrNakedInline.Title() {
		t.Fatalf("title = %q", naked.Title)
	}
	if naked.Location == nil || naked.Location.Index != 1 || naked.Location.Attr != "@naked" {
		t.Fatalf("location = %+v", naked.Location)
	}
	if len(naked.Notes) != 1 || naked.Notes[0].Location.Index != 0 {
		t.Fatalf("notes = %+v", naked.Notes)
	}
	if detached := got.Diagnostics[2]; detached.Fn != "" || detached.Location != nil {
		t.Fatalf("detached = %+v", detached)
	}
}

func TestJSONQuiet(t *testing.T) {
	interner := source.NewInterner()
	bag, fns := testModule(t, interner)
	out := buildOutput(interner, bag, fns, JSONOpts{Quiet: true})
	if out.Count != 1 || out.Errors != 1 {
		t.Fatalf("count=%d errors=%d", out.Count, out.Errors)
	}
	if out.Diagnostics[0].Code != "A5004" || out.Diagnostics[0].Notes != nil {
		t.Fatalf("kept = %+v", out.Diagnostics[0])
	}
}
