package llvm

import (
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"fnattrs/internal/ast"
)

// Func is a function being declared. It owns the attribute state the
// backend will print; this package only ever writes to it through the
// primitives in attributes.go. A Func must not be shared between goroutines.
type Func struct {
	Name   string
	Ret    string
	Params []string
	Extern bool

	attrs   map[AttrIndex]Attribute
	strings map[string]string
}

// NewFunc creates a handle with no attributes.
func NewFunc(name, ret string, params ...string) *Func {
	return &Func{
		Name:    name,
		Ret:     ret,
		Params:  params,
		attrs:   make(map[AttrIndex]Attribute),
		strings: make(map[string]string),
	}
}

func (f *Func) mustIndex(idx AttrIndex) {
	if f == nil {
		panic("llvm: nil function handle")
	}
	if idx == ReturnIndex || idx == FunctionIndex {
		return
	}
	if int(idx) > len(f.Params) {
		panic(fmt.Sprintf("llvm: %s: attribute index %s out of range (%d params)", f.Name, idx, len(f.Params)))
	}
}

// AddAttr sets a at idx. Setting an already present attribute is a no-op.
func (f *Func) AddAttr(idx AttrIndex, a Attribute) {
	f.mustIndex(idx)
	if a == 0 {
		return
	}
	f.attrs[idx] |= a
}

// RemoveAttr clears a at idx. Clearing an absent attribute is a no-op.
func (f *Func) RemoveAttr(idx AttrIndex, a Attribute) {
	f.mustIndex(idx)
	rest := f.attrs[idx] &^ a
	if rest == 0 {
		delete(f.attrs, idx)
		return
	}
	f.attrs[idx] = rest
}

// replaceInGroup clears group at idx and sets a, which must belong to it.
func (f *Func) replaceInGroup(idx AttrIndex, group, a Attribute) {
	f.RemoveAttr(idx, group)
	f.AddAttr(idx, a&group)
}

// AddStringAttr attaches a key/value attribute. Only function-level string
// attributes exist; the last write for a key wins.
func (f *Func) AddStringAttr(idx AttrIndex, key, value string) {
	f.mustIndex(idx)
	if idx != FunctionIndex {
		panic(fmt.Sprintf("llvm: %s: string attribute %q on %s", f.Name, key, idx))
	}
	f.strings[key] = value
}

// HasAttr reports whether all bits of a are set at idx.
func (f *Func) HasAttr(idx AttrIndex, a Attribute) bool {
	return f.attrs[idx].Has(a)
}

// Attrs returns the attribute set at idx.
func (f *Func) Attrs(idx AttrIndex) Attribute {
	return f.attrs[idx]
}

// StringAttr returns the value of a function-level string attribute.
func (f *Func) StringAttr(key string) (string, bool) {
	v, ok := f.strings[key]
	return v, ok
}

// Inline reports the inlining policy currently recorded on the function.
func (f *Func) Inline() ast.InlineAttr {
	switch f.attrs[FunctionIndex] & inlineGroup {
	case AttrInlineHint:
		return ast.InlineHint
	case AttrAlwaysInline:
		return ast.InlineAlways
	case AttrNoInline:
		return ast.InlineNever
	}
	return ast.InlineNone
}

// SlotAttrs is the attribute set of one index in a snapshot.
type SlotAttrs struct {
	Index    AttrIndex `msgpack:"index"`
	Bits     Attribute `msgpack:"bits"`
	Keywords []string  `msgpack:"keywords"`
}

// StringAttr is one key/value attribute in a snapshot.
type StringAttr struct {
	Key   string `msgpack:"key"`
	Value string `msgpack:"value"`
}

// AttrSnapshot is the full attribute state of a function in a canonical
// order: slots by index with the function slot first, strings by key.
type AttrSnapshot struct {
	Name    string       `msgpack:"name"`
	Slots   []SlotAttrs  `msgpack:"slots"`
	Strings []StringAttr `msgpack:"strings"`
}

// Snapshot captures the current attribute state.
func (f *Func) Snapshot() AttrSnapshot {
	snap := AttrSnapshot{Name: f.Name}
	indices := make([]AttrIndex, 0, len(f.attrs))
	for idx := range f.attrs {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool {
		// function slot first, then return, then params
		return indices[i]+1 < indices[j]+1
	})
	for _, idx := range indices {
		bits := f.attrs[idx]
		snap.Slots = append(snap.Slots, SlotAttrs{Index: idx, Bits: bits, Keywords: bits.Keywords()})
	}
	keys := make([]string, 0, len(f.strings))
	for k := range f.strings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		snap.Strings = append(snap.Strings, StringAttr{Key: k, Value: f.strings[k]})
	}
	return snap
}

// EncodeAttrs serialises Snapshot with msgpack. Equal attribute states
// always produce equal bytes.
func (f *Func) EncodeAttrs() ([]byte, error) {
	data, err := msgpack.Marshal(f.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode attributes of %s: %w", f.Name, err)
	}
	return data, nil
}
