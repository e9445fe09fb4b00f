// Package checker classifies bookmark targets as live or dead. CheckAll runs
// a bounded pool of probes and returns results in input order, reporting
// per-check progress to an injected emitter.
package checker
