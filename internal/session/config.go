// Package session holds the compiler-wide, read-only codegen configuration
// consulted while declaring functions.
package session

import (
	"errors"
	"fmt"
	"strings"
)

// PanicStrategy selects how panics leave a function.
type PanicStrategy string

const (
	PanicUnwind PanicStrategy = "unwind"
	PanicAbort  PanicStrategy = "abort"
)

// DebugInfo levels, as in -C debuginfo.
const (
	DebugInfoNone    = 0
	DebugInfoLimited = 1
	DebugInfoFull    = 2
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid codegen configuration")

// TargetOptions are the target-specification facts the codegen policy reads.
type TargetOptions struct {
	Triple string `toml:"triple"`
	// EliminateFramePointer is false on targets whose ABI requires a frame pointer.
	EliminateFramePointer bool `toml:"eliminate-frame-pointer"`
}

// Config is the `[codegen]` table of fnattrs.toml.
type Config struct {
	DebugInfo          int           `toml:"debuginfo"`
	ForceFramePointers bool          `toml:"force-frame-pointers"`
	OptLevel           string        `toml:"opt-level"`
	Panic              PanicStrategy `toml:"panic"`
	UWTable            bool          `toml:"uwtable"`
	Target             TargetOptions `toml:"target"`
}

// DefaultConfig mirrors an unoptimised build without debug info.
func DefaultConfig() Config {
	return Config{
		DebugInfo: DebugInfoNone,
		OptLevel:  "0",
		Panic:     PanicUnwind,
		Target: TargetOptions{
			EliminateFramePointer: true,
		},
	}
}

// MustNotEliminateFramePointers reports whether every function has to keep
// its frame pointer: requested explicitly, needed by debug info, or required
// by the target.
func (c Config) MustNotEliminateFramePointers() bool {
	return c.ForceFramePointers ||
		c.DebugInfo != DebugInfoNone ||
		!c.Target.EliminateFramePointer
}

// OptimizeForSize reports whether opt-level asks for size ("s" or "z").
func (c Config) OptimizeForSize() bool {
	return c.OptLevel == "s" || c.OptLevel == "z"
}

// Validate checks value ranges and normalises spelling.
func (c *Config) Validate() error {
	if c.DebugInfo < DebugInfoNone || c.DebugInfo > DebugInfoFull {
		return fmt.Errorf("%w: debuginfo must be 0, 1 or 2, got %d", ErrInvalidConfig, c.DebugInfo)
	}
	c.OptLevel = strings.TrimSpace(c.OptLevel)
	switch c.OptLevel {
	case "":
		c.OptLevel = "0"
	case "0", "1", "2", "3", "s", "z":
	default:
		return fmt.Errorf("%w: opt-level must be one of 0,1,2,3,s,z, got %q", ErrInvalidConfig, c.OptLevel)
	}
	c.Panic = PanicStrategy(strings.ToLower(strings.TrimSpace(string(c.Panic))))
	switch c.Panic {
	case "":
		c.Panic = PanicUnwind
	case PanicUnwind, PanicAbort:
	default:
		return fmt.Errorf("%w: panic must be `unwind` or `abort`, got %q", ErrInvalidConfig, c.Panic)
	}
	return nil
}
