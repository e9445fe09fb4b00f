// Package wayback resolves dead bookmark targets to their closest Internet
// Archive snapshot using the public availability endpoint.
package wayback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/linkrot/internal/linkrot"
	"github.com/JakeFAU/linkrot/internal/policy/ratelimit"
)

// DefaultEndpoint is the archive availability API.
const DefaultEndpoint = "https://archive.org/wayback/available"

const (
	opResolve       = "archive lookup"
	maxResponseBody = 1 << 20
)

// Config controls the resolver.
type Config struct {
	Endpoint   string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Limiter    *ratelimit.Limiter
}

// Resolver implements linkrot.SnapshotResolver.
type Resolver struct {
	endpoint  *url.URL
	userAgent string
	http      *http.Client
	limiter   *ratelimit.Limiter
	logger    *zap.Logger
}

var _ linkrot.SnapshotResolver = (*Resolver)(nil)

// New builds a Resolver.
func New(cfg Config, logger *zap.Logger) (*Resolver, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse archive endpoint: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Resolver{
		endpoint:  endpoint,
		userAgent: cfg.UserAgent,
		http:      httpClient,
		limiter:   cfg.Limiter,
		logger:    logger,
	}, nil
}

type availability struct {
	ArchivedSnapshots *struct {
		Closest *closest `json:"closest"`
	} `json:"archived_snapshots"`
}

type closest struct {
	Available *bool  `json:"available"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// Resolve asks the archive for the snapshot closest to at. A zero at leaves
// the timestamp out and lets the archive pick the most recent capture.
func (r *Resolver) Resolve(ctx context.Context, target string, at time.Time) (linkrot.SnapshotLookup, error) {
	query := url.Values{"url": {target}}
	if ts := linkrot.ArchiveTimestamp(at); ts != "" {
		query.Set("timestamp", ts)
	}
	endpoint := *r.endpoint
	endpoint.RawQuery = query.Encode()

	if err := r.limiter.Wait(ctx, endpoint.String()); err != nil {
		return linkrot.NotFound, &linkrot.TransportError{Op: opResolve, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return linkrot.NotFound, &linkrot.TransportError{Op: opResolve, Err: err}
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return linkrot.NotFound, &linkrot.TransportError{Op: opResolve, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return linkrot.NotFound, &linkrot.ArchiveError{StatusCode: resp.StatusCode}
	}

	var body availability
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&body); err != nil {
		return linkrot.NotFound, fmt.Errorf("%w: %w", linkrot.ErrResolutionParse, err)
	}
	lookup, err := interpret(body)
	if err != nil {
		return linkrot.NotFound, err
	}
	r.logger.Debug("archive lookup",
		zap.String("url", target),
		zap.Bool("found", lookup.Found),
		zap.String("snapshot", lookup.URL),
	)
	return lookup, nil
}

func interpret(body availability) (linkrot.SnapshotLookup, error) {
	if body.ArchivedSnapshots == nil {
		return linkrot.NotFound, fmt.Errorf("%w: missing archived_snapshots", linkrot.ErrResolutionParse)
	}
	c := body.ArchivedSnapshots.Closest
	if c == nil {
		return linkrot.NotFound, nil
	}
	if c.Available != nil && !*c.Available {
		return linkrot.NotFound, nil
	}
	if c.URL == "" {
		return linkrot.NotFound, fmt.Errorf("%w: closest snapshot without url", linkrot.ErrResolutionParse)
	}
	return linkrot.Found(c.URL, c.Timestamp), nil
}
