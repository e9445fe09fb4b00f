// Package sinks implements concrete progress consumers: Prometheus
// collectors, structured logging, and the interactive terminal counter.
// Batch sinks satisfy progress.Sink; the terminal counter is a synchronous
// progress.Emitter because it has to render every completion in order.
package sinks
