// Package linkrot defines core types shared across subsystems.
package linkrot

import (
	"time"
)

// Bookmark is a single record in the remote store. URL is the store's
// primary key: changing it means creating a new record and deleting the old.
type Bookmark struct {
	URL         string
	Description string
	Extended    string
	Time        time.Time
	Shared      bool
	ToRead      bool
	Tags        []string
}

// WithURL returns a copy of the bookmark re-keyed to url. Tags are copied so
// the two records never share backing storage.
func (b Bookmark) WithURL(url string) Bookmark {
	out := b
	out.URL = url
	if b.Tags != nil {
		out.Tags = append([]string(nil), b.Tags...)
	}
	return out
}

// Liveness classifies a bookmark target.
type Liveness string

// Liveness values produced by the link checker.
const (
	Live Liveness = "live"
	Dead Liveness = "dead"
)

// CheckResult is the transient outcome of probing one URL. StatusCode and Err
// are diagnostic only; callers branch on Liveness.
type CheckResult struct {
	URL        string
	Liveness   Liveness
	StatusCode int
	Err        error
	Duration   time.Duration
	Skipped    bool
}

// Dead reports whether the result classifies the URL as dead.
func (r CheckResult) Dead() bool {
	return r.Liveness == Dead
}

// SnapshotLookup is the answer from the archive for a (URL, timestamp) pair.
type SnapshotLookup struct {
	Found     bool
	URL       string
	Timestamp string
}

// NotFound is the lookup returned when the archive has no snapshot.
var NotFound = SnapshotLookup{}

// Found builds a positive lookup for the given snapshot URL.
func Found(url, timestamp string) SnapshotLookup {
	return SnapshotLookup{Found: true, URL: url, Timestamp: timestamp}
}

// ArchiveTimestamp formats t at day granularity (YYYYMMDD) as expected by the
// archive availability endpoint. A zero time yields an empty string.
func ArchiveTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("20060102")
}

// ProbeResponse is the result returned by a Prober implementation.
type ProbeResponse struct {
	URL        string
	FinalURL   string
	StatusCode int
	Bytes      int
	Duration   time.Duration
}
