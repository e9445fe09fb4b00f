// Package progress provides the event primitives, non-blocking hub, and emitter
// interfaces that the link checker and remediation loop use to report audit
// progress. The hub batches events on a background goroutine and fans them out
// to pluggable sinks such as Prometheus metrics or structured logs.
package progress
