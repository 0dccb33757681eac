package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"fnattrs/internal/diag"
	"fnattrs/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.FgBlue)
)

func severityLabel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return errorColor.Sprint("error")
	case diag.SevWarning:
		return warningColor.Sprint("warning")
	default:
		return infoColor.Sprint("info")
	}
}

// Pretty writes every diagnostic in bag, in bag order. Colors follow
// color.NoColor.
func Pretty(w io.Writer, interner *source.Interner, bag *diag.Bag, fns []Fn, opts PrettyOpts) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		if opts.Quiet && d.Severity < diag.SevError {
			continue
		}
		fmt.Fprintf(w, "%s[%s]: ", severityLabel(d.Severity), d.Code)
		if fn, ok := lookupFn(fns, d.Primary.File); ok {
			fmt.Fprintf(w, "fn %s: ", fn.Name)
		}
		fmt.Fprintln(w, d.Message)
		if loc := attrLocation(interner, fns, d.Primary); loc != "" {
			fmt.Fprintf(w, "  --> %s\n", loc)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s: %s", noteColor.Sprint("note"), note.Msg)
			if loc := attrLocation(interner, fns, note.Span); loc != "" {
				fmt.Fprintf(w, " (%s)", loc)
			}
			fmt.Fprintln(w)
		}
	}
}

// attrLocation resolves a span to the attribute it points at.
func attrLocation(interner *source.Interner, fns []Fn, span source.Span) string {
	fn, ok := lookupFn(fns, span.File)
	if !ok || span.Empty() || int(span.Start) >= len(fn.Attrs) {
		return ""
	}
	return fmt.Sprintf("attrs[%d] %s", span.Start, fn.Attrs[span.Start].String(interner))
}
