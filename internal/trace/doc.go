// Package trace is the leveled event log of the fnattrs pipeline.
//
// A Tracer travels in context.Context (WithTracer / FromContext); code that
// has no tracer attached gets Nop. Events carry a Scope and the configured
// Level decides which scopes are written:
//
//	phase  - driver and declaration-phase boundaries
//	detail - one event per declared function
//	debug  - every attribute primitive applied
//
// Output is either human-readable text or NDJSON (selected by Format or by
// the ".ndjson" extension of the output path).
package trace
