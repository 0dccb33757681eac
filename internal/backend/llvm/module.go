package llvm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Module is a set of declared functions rendered as textual LLVM IR.
type Module struct {
	Name   string
	Triple string
	Funcs  []*Func
}

// Render writes declarations and their attribute groups. Functions with the
// same function-level attributes share one `attributes #N` group, numbered in
// order of first use.
func (m *Module) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "; ModuleID = '%s'\n", m.Name)
	if m.Triple != "" {
		fmt.Fprintf(bw, "target triple = %q\n", m.Triple)
	}
	bw.WriteString("\n")

	groups := make(map[string]int)
	var order []string
	for _, fn := range m.Funcs {
		group := fnAttrGroup(fn)
		suffix := ""
		if group != "" {
			id, ok := groups[group]
			if !ok {
				id = len(order)
				groups[group] = id
				order = append(order, group)
			}
			suffix = fmt.Sprintf(" #%d", id)
		}
		bw.WriteString(declareLine(fn))
		bw.WriteString(suffix)
		bw.WriteString("\n")
	}

	if len(order) > 0 {
		bw.WriteString("\n")
	}
	for id, group := range order {
		fmt.Fprintf(bw, "attributes #%d = { %s }\n", id, group)
	}
	return bw.Flush()
}

// declareLine renders `declare <ret attrs> <ret> @name(<ty attrs>, ...)`.
func declareLine(fn *Func) string {
	var sb strings.Builder
	sb.WriteString("declare ")
	if ret := fn.Attrs(ReturnIndex); ret != 0 {
		sb.WriteString(ret.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(fn.Ret)
	sb.WriteString(" @")
	sb.WriteString(globalName(fn.Name))
	sb.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p)
		if attrs := fn.Attrs(ParamIndex(i)); attrs != 0 {
			sb.WriteByte(' ')
			sb.WriteString(attrs.String())
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// fnAttrGroup renders the body of an attribute group, or "" if fn has no
// function-level attributes.
func fnAttrGroup(fn *Func) string {
	parts := fn.Attrs(FunctionIndex).Keywords()
	for _, s := range fn.Snapshot().Strings {
		parts = append(parts, fmt.Sprintf("%q=%q", s.Key, s.Value))
	}
	return strings.Join(parts, " ")
}

// globalName quotes names that are not plain LLVM identifiers.
func globalName(name string) string {
	plain := name != ""
	for i, r := range name {
		switch {
		case r == '-' || r == '$' || r == '.' || r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			plain = false
		}
	}
	if plain {
		return name
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, b := range []byte(name) {
		if b == '"' || b == '\\' || b < 0x20 || b >= 0x7f {
			fmt.Fprintf(&sb, "\\%02X", b)
			continue
		}
		sb.WriteByte(b)
	}
	sb.WriteByte('"')
	return sb.String()
}
