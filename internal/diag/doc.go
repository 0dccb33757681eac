// Package diag defines the diagnostic model shared by the attribute front-end
// and the backend declaration phase.
//
// Producers emit through a Reporter so that emission stays decoupled from
// storage. The inline-directive resolver in internal/ast, for example, builds
// a ReportBuilder via ReportError/ReportWarning and calls Emit. BagReporter
// collects diagnostics into a Bag, which supports limits, sorting,
// deduplication and merging of per-function bags produced in parallel.
//
// Rendering lives in the CLI; this package performs no IO.
package diag
