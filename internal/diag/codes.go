package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Attribute front-end
	AttrInlineArgCount Code = 5001 // @inline(...) takes exactly one argument
	AttrInlineBadArg   Code = 5002 // argument is neither `always` nor `never`
	AttrInlineConflict Code = 5003 // several @inline directives disagree
	AttrNakedInline    Code = 5004 // @naked combined with an inlining request
	AttrMalformed      Code = 5005 // textual attribute could not be parsed
	AttrTargetMismatch Code = 5007
)

var codeName = map[Code]string{
	UnknownCode:        "E0000",
	AttrInlineArgCount: "A5001",
	AttrInlineBadArg:   "A5002",
	AttrInlineConflict: "A5003",
	AttrNakedInline:    "A5004",
	AttrMalformed:      "A5005",
	AttrTargetMismatch: "A5007",
}

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	AttrInlineArgCount: "@inline expects exactly one argument",
	AttrInlineBadArg:   "Invalid @inline argument",
	AttrInlineConflict: "Conflicting @inline directives",
	AttrNakedInline:    "@naked function cannot request inlining",
	AttrMalformed:      "Malformed attribute",
	AttrTargetMismatch: "Attribute not allowed on this item",
}

func (c Code) ID() string {
	if name, ok := codeName[c]; ok {
		return name
	}
	return fmt.Sprintf("E%04d", uint16(c))
}

func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return c.ID()
}
