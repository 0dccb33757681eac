package session

import (
	"fnattrs/internal/diag"
	"fnattrs/internal/source"
)

// Session bundles what the attribute driver may read: the codegen
// configuration, the diagnostic sink and the interner attribute names
// live in. It is passed explicitly; there is no process-wide session.
type Session struct {
	Config   Config
	Reporter diag.Reporter
	Interner *source.Interner
}

// New returns a session with a NopReporter and a fresh interner when the
// corresponding argument is nil.
func New(cfg Config, reporter diag.Reporter, interner *source.Interner) *Session {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	if interner == nil {
		interner = source.NewInterner()
	}
	return &Session{Config: cfg, Reporter: reporter, Interner: interner}
}

// WithReporter returns a shallow copy reporting to r. Used to give each
// concurrently declared function its own diagnostic bag.
func (s *Session) WithReporter(r diag.Reporter) *Session {
	cp := *s
	if r == nil {
		r = diag.NopReporter{}
	}
	cp.Reporter = r
	return &cp
}

// MustNotEliminateFramePointers forwards to the configuration.
func (s *Session) MustNotEliminateFramePointers() bool {
	return s.Config.MustNotEliminateFramePointers()
}
