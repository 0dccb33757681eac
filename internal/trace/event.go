package trace

import (
	"sync/atomic"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindBegin Kind = iota + 1 // phase start
	KindEnd                   // phase end
	KindPoint                 // instant event
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	ScopeError  Scope = iota + 1 // failures, emitted at every level but off
	ScopeDriver                  // CLI command boundaries
	ScopePhase                   // declaration phase, rendering
	ScopeFunc                    // one function
	ScopeAttr                    // one attribute primitive
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeError:
		return "error"
	case ScopeDriver:
		return "driver"
	case ScopePhase:
		return "phase"
	case ScopeFunc:
		return "func"
	case ScopeAttr:
		return "attr"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time   time.Time         // wall-clock timestamp
	Seq    uint64            // global sequence number (monotonic)
	Kind   Kind              // event kind
	Scope  Scope             // granularity level
	Name   string            // e.g. "declare", "fn:rust_alloc"
	Detail string            // optional detail message
	Extra  map[string]string // extensible key-value pairs
}

var globalSeq uint64

// NextSeq returns the next global sequence number.
func NextSeq() uint64 {
	return atomic.AddUint64(&globalSeq, 1)
}

// Point emits an instant event if t accepts the scope.
func Point(t Tracer, scope Scope, name, detail string, extra map[string]string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Name:   name,
		Detail: detail,
		Extra:  extra,
	})
}

// Begin emits a begin event and returns a func emitting the matching end.
func Begin(t Tracer, scope Scope, name string) func(detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return func(string) {}
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindBegin, Scope: scope, Name: name})
	return func(detail string) {
		t.Emit(&Event{Time: time.Now(), Kind: KindEnd, Scope: scope, Name: name, Detail: detail})
	}
}
