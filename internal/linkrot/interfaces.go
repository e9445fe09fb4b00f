package linkrot

import (
	"context"
	"time"
)

// BookmarkStore is the remote keyed bookmark store.
type BookmarkStore interface {
	Authenticate(ctx context.Context) error
	ListAll(ctx context.Context) ([]Bookmark, error)
	GetByURL(ctx context.Context, url string) ([]Bookmark, error)
	Add(ctx context.Context, bookmark Bookmark) error
	DeleteByURL(ctx context.Context, url string) error
}

// LinkChecker classifies URLs as live or dead.
type LinkChecker interface {
	Check(ctx context.Context, url string) CheckResult
	CheckAll(ctx context.Context, urls []string) []CheckResult
}

// SnapshotResolver asks a public archive for the closest snapshot of url.
type SnapshotResolver interface {
	Resolve(ctx context.Context, url string, at time.Time) (SnapshotLookup, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Prober issues the single outbound request behind a liveness check.
type Prober interface {
	Probe(ctx context.Context, url string) (ProbeResponse, error)
}
