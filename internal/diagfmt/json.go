package diagfmt

import (
	"encoding/json"
	"io"

	"fnattrs/internal/diag"
	"fnattrs/internal/source"
)

// LocationJSON points at one attribute of a function.
type LocationJSON struct {
	Index int    `json:"index"`
	Attr  string `json:"attr"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Fn       string        `json:"fn,omitempty"`
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
}

func makeLocation(interner *source.Interner, fns []Fn, span source.Span) *LocationJSON {
	fn, ok := lookupFn(fns, span.File)
	if !ok || span.Empty() || int(span.Start) >= len(fn.Attrs) {
		return nil
	}
	return &LocationJSON{
		Index: int(span.Start),
		Attr:  fn.Attrs[span.Start].String(interner),
	}
}

func buildOutput(interner *source.Interner, bag *diag.Bag, fns []Fn, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0)}
	if bag == nil {
		return out
	}
	out.Errors = bag.ErrorCount()
	for _, d := range bag.Items() {
		if opts.Quiet && d.Severity < diag.SevError {
			continue
		}
		fn, _ := lookupFn(fns, d.Primary.File)
		dj := DiagnosticJSON{
			Fn:       fn.Name,
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(interner, fns, d.Primary),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{
					Message:  n.Msg,
					Location: makeLocation(interner, fns, n.Span),
				})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the diagnostics of bag as one indented JSON document.
func JSON(w io.Writer, interner *source.Interner, bag *diag.Bag, fns []Fn, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildOutput(interner, bag, fns, opts))
}
