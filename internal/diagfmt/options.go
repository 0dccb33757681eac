package diagfmt

import (
	"fnattrs/internal/ast"
	"fnattrs/internal/source"
)

// Fn describes the function a diagnostic span belongs to. Spans address
// functions by File, the 1-based position of the function in the module;
// Start is the index into Attrs.
type Fn struct {
	Name  string
	Attrs []ast.Attr
}

func lookupFn(fns []Fn, file source.FileID) (Fn, bool) {
	if file == source.NoFileID || int(file) > len(fns) {
		return Fn{}, false
	}
	return fns[file-1], true
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Quiet     bool // errors only
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Quiet        bool
	IncludeNotes bool
}
