package ast

import (
	"slices"

	"golang.org/x/text/unicode/norm"

	"fnattrs/internal/source"
)

// AttrTargetMask describes a set of item kinds an attribute may be applied to.
type AttrTargetMask uint8

const (
	AttrTargetNone     AttrTargetMask = 0
	AttrTargetFn       AttrTargetMask = 1 << iota // functions with a body
	AttrTargetExternFn                            // foreign declarations
	AttrTargetType
)

// AttrFlag captures special handling rules beyond the basic applicability matrix.
type AttrFlag uint8

const (
	AttrFlagNone AttrFlag = 0

	// AttrFlagCodegen marks attributes consumed by the backend attribute driver.
	AttrFlagCodegen AttrFlag = 1 << iota

	// AttrFlagArgs marks attributes that accept an argument list (e.g. @inline(always)).
	AttrFlagArgs
)

// AttrSpec describes a language attribute, its supported targets and special rules.
type AttrSpec struct {
	Name    string
	Targets AttrTargetMask
	Flags   AttrFlag
}

// Allows reports whether the attribute can be applied to the provided target bit.
func (spec AttrSpec) Allows(target AttrTargetMask) bool {
	return spec.Targets&target != 0
}

// HasFlag reports whether the spec contains the given flag.
func (spec AttrSpec) HasFlag(flag AttrFlag) bool {
	return spec.Flags&flag != 0
}

const fnTargets = AttrTargetFn | AttrTargetExternFn

var attrRegistry = map[string]AttrSpec{
	"inline":     {Name: "inline", Targets: AttrTargetFn, Flags: AttrFlagCodegen | AttrFlagArgs},
	"cold":       {Name: "cold", Targets: fnTargets, Flags: AttrFlagCodegen},
	"naked":      {Name: "naked", Targets: AttrTargetFn, Flags: AttrFlagCodegen},
	"allocator":  {Name: "allocator", Targets: fnTargets, Flags: AttrFlagCodegen},
	"unwind":     {Name: "unwind", Targets: fnTargets, Flags: AttrFlagCodegen},
	"deprecated": {Name: "deprecated", Targets: fnTargets | AttrTargetType, Flags: AttrFlagArgs},
	"must_use":   {Name: "must_use", Targets: fnTargets | AttrTargetType},
	"entrypoint": {Name: "entrypoint", Targets: AttrTargetFn},
	"link_name":  {Name: "link_name", Targets: AttrTargetExternFn, Flags: AttrFlagArgs},
	"doc":        {Name: "doc", Targets: fnTargets | AttrTargetType, Flags: AttrFlagArgs},
}

// LookupAttr returns metadata for the given attribute name. Names are
// case-sensitive and compared in NFC.
func LookupAttr(name string) (AttrSpec, bool) {
	if name == "" {
		return AttrSpec{}, false
	}
	spec, ok := attrRegistry[norm.NFC.String(name)]
	return spec, ok
}

// LookupAttrID resolves attribute metadata by string ID using the provided interner.
func LookupAttrID(interner *source.Interner, id source.StringID) (AttrSpec, bool) {
	if interner == nil || id == source.NoStringID {
		return AttrSpec{}, false
	}
	name, ok := interner.Lookup(id)
	if !ok {
		return AttrSpec{}, false
	}
	return LookupAttr(name)
}

// AttrSpecs returns a stable slice of all registered attribute specifications sorted by name.
func AttrSpecs() []AttrSpec {
	names := make([]string, 0, len(attrRegistry))
	for name := range attrRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	result := make([]AttrSpec, 0, len(names))
	for _, name := range names {
		result = append(result, attrRegistry[name])
	}
	return result
}
