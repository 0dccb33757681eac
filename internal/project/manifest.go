package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"fnattrs/internal/ast"
	"fnattrs/internal/backend/llvm"
	"fnattrs/internal/session"
	"fnattrs/internal/source"
)

var (
	// ErrModuleSectionMissing indicates that [module] is missing.
	ErrModuleSectionMissing = errors.New("missing [module]")
	// ErrModuleNameMissing indicates that [module].name is missing.
	ErrModuleNameMissing = errors.New("missing [module].name")
	// ErrFnNameMissing indicates a [[fn]] entry without a name.
	ErrFnNameMissing = errors.New("missing [[fn]].name")
)

// Manifest is a parsed fnattrs.toml.
type Manifest struct {
	Path   string
	Root   string
	Config manifestConfig
}

type manifestConfig struct {
	Module  moduleConfig   `toml:"module"`
	Codegen session.Config `toml:"codegen"`
	Fns     []FnEntry      `toml:"fn"`
}

type moduleConfig struct {
	Name string `toml:"name"`
}

// FnEntry is one [[fn]] table. Attributes use the textual form accepted by
// ast.ParseAttr, e.g. "inline(always)".
type FnEntry struct {
	Name   string   `toml:"name"`
	Ret    string   `toml:"ret"`
	Params []string `toml:"params"`
	Extern bool     `toml:"extern"`
	Attrs  []string `toml:"attrs"`
}

// LoadManifest decodes and validates the manifest at path. Codegen values
// not present in the file keep session.DefaultConfig values.
func LoadManifest(path string) (*Manifest, error) {
	cfg := manifestConfig{Codegen: session.DefaultConfig()}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("module") {
		return nil, fmt.Errorf("%s: %w", path, ErrModuleSectionMissing)
	}
	cfg.Module.Name = strings.TrimSpace(cfg.Module.Name)
	if !meta.IsDefined("module", "name") || cfg.Module.Name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrModuleNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Codegen.Validate(); err != nil {
		return nil, fmt.Errorf("%s: [codegen]: %w", path, err)
	}
	for i := range cfg.Fns {
		cfg.Fns[i].Name = strings.TrimSpace(cfg.Fns[i].Name)
		if cfg.Fns[i].Name == "" {
			return nil, fmt.Errorf("%s: [[fn]] #%d: %w", path, i+1, ErrFnNameMissing)
		}
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// Name returns [module].name.
func (m *Manifest) Name() string {
	return m.Config.Module.Name
}

// Codegen returns the [codegen] table.
func (m *Manifest) Codegen() session.Config {
	return m.Config.Codegen
}

// Decls converts the [[fn]] entries into backend declarations. Attribute
// spans are synthetic: File is the 1-based position of the entry in the
// manifest and Start is the attribute's position in its attrs array.
func (m *Manifest) Decls(interner *source.Interner) ([]llvm.FnDecl, error) {
	decls := make([]llvm.FnDecl, 0, len(m.Config.Fns))
	for fnIdx, entry := range m.Config.Fns {
		decl := llvm.FnDecl{
			Name:   entry.Name,
			Ret:    strings.TrimSpace(entry.Ret),
			Params: entry.Params,
			Extern: entry.Extern,
		}
		for i, text := range entry.Attrs {
			span, err := attrSpan(fnIdx, i)
			if err != nil {
				return nil, fmt.Errorf("%s: fn %s: %w", m.Path, entry.Name, err)
			}
			attr, err := ast.ParseAttr(interner, text, span)
			if err != nil {
				return nil, fmt.Errorf("%s: fn %s: %w", m.Path, entry.Name, err)
			}
			decl.Attrs = append(decl.Attrs, attr)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func attrSpan(fnIdx, attrIdx int) (source.Span, error) {
	file, err := safecast.Conv[uint32](fnIdx + 1)
	if err != nil {
		return source.Span{}, fmt.Errorf("fn index %d: %w", fnIdx, err)
	}
	start, err := safecast.Conv[uint32](attrIdx)
	if err != nil {
		return source.Span{}, fmt.Errorf("attr index %d: %w", attrIdx, err)
	}
	end, err := safecast.Conv[uint32](attrIdx + 1)
	if err != nil {
		return source.Span{}, fmt.Errorf("attr index %d: %w", attrIdx, err)
	}
	return source.Span{File: source.FileID(file), Start: start, End: end}, nil
}
