// Package metrics provides lock-free in-process counters for taskcore
// observability.
//
// Counters are incremented atomically and read via [Metrics.Snapshot].
// This package owns metric storage only; export (OTel) lives in
// metrics/export/ and reads Snapshot values. It performs no I/O and
// imports no sibling package.
package metrics
