package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"fnattrs/internal/ast"
	"fnattrs/internal/backend/llvm"
)

var attrsCmd = &cobra.Command{
	Use:   "attrs",
	Short: "List known source attributes and what the backend does with them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCatalog(cmd.OutOrStdout())
	},
}

// lowering describes the backend effect of each codegen attribute.
var lowering = map[string]string{
	"inline":    "inlinehint | alwaysinline | noinline",
	"cold":      "cold",
	"naked":     "naked",
	"allocator": "noalias (return)",
	"unwind":    "clears nounwind",
}

func targetNames(spec ast.AttrSpec) string {
	var names []string
	if spec.Allows(ast.AttrTargetFn) {
		names = append(names, "fn")
	}
	if spec.Allows(ast.AttrTargetExternFn) {
		names = append(names, "extern fn")
	}
	if spec.Allows(ast.AttrTargetType) {
		names = append(names, "type")
	}
	return strings.Join(names, ", ")
}

func writeCatalog(w io.Writer) error {
	rows := [][]string{{"ATTRIBUTE", "TARGETS", "BACKEND"}}
	for _, spec := range ast.AttrSpecs() {
		effect := "-"
		if spec.HasFlag(ast.AttrFlagCodegen) {
			effect = lowering[spec.Name]
		}
		rows = append(rows, []string{"@" + spec.Name, targetNames(spec), effect})
	}
	return writeTable(w, rows)
}

// writeSummary prints one row per function with its committed attributes.
func writeSummary(w io.Writer, funcs []*llvm.Func) error {
	rows := [][]string{{"FUNCTION", "INLINE", "FUNCTION ATTRS", "RETURN ATTRS", "STRINGS"}}
	for _, fn := range funcs {
		var strs []string
		for _, s := range fn.Snapshot().Strings {
			strs = append(strs, fmt.Sprintf("%s=%s", s.Key, s.Value))
		}
		rows = append(rows, []string{
			fn.Name,
			fn.Inline().String(),
			orDash(fn.Attrs(llvm.FunctionIndex).String()),
			orDash(fn.Attrs(llvm.ReturnIndex).String()),
			orDash(strings.Join(strs, " ")),
		})
	}
	return writeTable(w, rows)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// writeTable aligns columns by display width, so non-ASCII names line up.
func writeTable(w io.Writer, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
