package llvm

import (
	"fmt"
	"math"
	"strings"

	"fortio.org/safecast"
)

// Attribute is a set of enumerated LLVM attributes attached to one slot of a
// function (the function itself, its return value or a parameter).
type Attribute uint64

const (
	AttrNoUnwind Attribute = 1 << iota
	AttrUWTable
	AttrInlineHint
	AttrAlwaysInline
	AttrNoInline
	AttrOptimizeForSize
	AttrNaked
	AttrCold
	AttrNoAlias
)

// inlineGroup holds the mutually exclusive inlining attributes.
const inlineGroup = AttrInlineHint | AttrAlwaysInline | AttrNoInline

// attrKeywords is sorted by keyword; String renders in this order.
var attrKeywords = []struct {
	bit  Attribute
	name string
}{
	{AttrAlwaysInline, "alwaysinline"},
	{AttrCold, "cold"},
	{AttrInlineHint, "inlinehint"},
	{AttrNaked, "naked"},
	{AttrNoAlias, "noalias"},
	{AttrNoInline, "noinline"},
	{AttrNoUnwind, "nounwind"},
	{AttrOptimizeForSize, "optsize"},
	{AttrUWTable, "uwtable"},
}

// Keywords returns the LLVM spelling of every attribute in a.
func (a Attribute) Keywords() []string {
	var out []string
	for _, kw := range attrKeywords {
		if a&kw.bit != 0 {
			out = append(out, kw.name)
		}
	}
	return out
}

func (a Attribute) String() string {
	return strings.Join(a.Keywords(), " ")
}

// Has reports whether every bit of other is set in a.
func (a Attribute) Has(other Attribute) bool {
	return a&other == other
}

// AttrIndex selects the slot an attribute applies to, numbered the way the
// LLVM C API does: 0 is the return value, 1..n the parameters and ^0 the
// function itself.
type AttrIndex uint32

const (
	ReturnIndex   AttrIndex = 0
	FunctionIndex AttrIndex = math.MaxUint32
)

// ParamIndex returns the slot of the i-th (zero-based) parameter.
func ParamIndex(i int) AttrIndex {
	if i < 0 {
		panic(fmt.Sprintf("llvm: negative parameter index %d", i))
	}
	idx, err := safecast.Conv[uint32](i + 1)
	if err != nil || AttrIndex(idx) == FunctionIndex {
		panic(fmt.Sprintf("llvm: parameter index %d out of range", i))
	}
	return AttrIndex(idx)
}

func (idx AttrIndex) String() string {
	switch idx {
	case ReturnIndex:
		return "return"
	case FunctionIndex:
		return "function"
	default:
		return fmt.Sprintf("param%d", uint32(idx)-1)
	}
}
