// Package pinboard implements linkrot.BookmarkStore against the Pinboard v1
// HTTP API. Every call is a GET carrying auth_token and format=json; the
// bookmark URL is the record key.
package pinboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/linkrot/internal/linkrot"
	"github.com/JakeFAU/linkrot/internal/policy/ratelimit"
)

// DefaultBaseURL is the public Pinboard API endpoint.
const DefaultBaseURL = "https://api.pinboard.in/v1"

const (
	opUpdate = "posts/update"
	opAll    = "posts/all"
	opGet    = "posts/get"
	opAdd    = "posts/add"
	opDelete = "posts/delete"

	resultDone     = "done"
	resultNotFound = "item not found"

	timeLayout = "2006-01-02T15:04:05Z"
)

// Config controls how the client reaches the store.
type Config struct {
	BaseURL    string
	Token      string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Limiter    *ratelimit.Limiter
}

// Client talks to a Pinboard-compatible bookmark store.
type Client struct {
	cfg           Config
	base          *url.URL
	http          *http.Client
	limiter       *ratelimit.Limiter
	logger        *zap.Logger
	authenticated atomic.Bool
}

var _ linkrot.BookmarkStore = (*Client)(nil)

// New builds a Client. The client is not usable until Authenticate succeeds.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse store base url: %w", err)
	}
	if cfg.Token == "" {
		return nil, errors.New("store token must be set")
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
	return &Client{
		cfg:     cfg,
		base:    base,
		http:    httpClient,
		limiter: cfg.Limiter,
		logger:  logger,
	}, nil
}

// Authenticate validates the credentials with one posts/update round-trip.
func (c *Client) Authenticate(ctx context.Context) error {
	var resp updateResponse
	if err := c.call(ctx, opUpdate, nil, &resp); err != nil {
		c.authenticated.Store(false)
		return fmt.Errorf("%w: %w", linkrot.ErrAuthenticationFailed, err)
	}
	if resp.UpdateTime == "" {
		c.authenticated.Store(false)
		return fmt.Errorf("%w: %w", linkrot.ErrAuthenticationFailed, &linkrot.StoreError{
			Op:         opUpdate,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("%w: missing update_time", linkrot.ErrMalformedResponse),
		})
	}
	c.authenticated.Store(true)
	c.logger.Info("store authenticated", zap.String("update_time", resp.UpdateTime))
	return nil
}

// ListAll returns every bookmark in the store, in store order.
func (c *Client) ListAll(ctx context.Context) ([]linkrot.Bookmark, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var posts []post
	if err := c.call(ctx, opAll, nil, &posts); err != nil {
		return nil, err
	}
	return toBookmarks(opAll, posts)
}

// GetByURL returns the bookmarks keyed by rawURL; usually zero or one.
func (c *Client) GetByURL(ctx context.Context, rawURL string) ([]linkrot.Bookmark, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var resp getResponse
	if err := c.call(ctx, opGet, url.Values{"url": {rawURL}}, &resp); err != nil {
		return nil, err
	}
	return toBookmarks(opGet, resp.Posts)
}

// Add creates or overwrites the record at bookmark.URL.
func (c *Client) Add(ctx context.Context, bookmark linkrot.Bookmark) error {
	if err := c.ready(); err != nil {
		return err
	}
	if bookmark.URL == "" {
		return errors.New("add bookmark: url is required")
	}
	var resp resultResponse
	if err := c.call(ctx, opAdd, addParams(bookmark), &resp); err != nil {
		return err
	}
	if resp.ResultCode != resultDone {
		return &linkrot.StoreError{Op: opAdd, StatusCode: http.StatusOK, Detail: resp.ResultCode}
	}
	c.logger.Debug("bookmark added", zap.String("url", bookmark.URL))
	return nil
}

// DeleteByURL removes the record at rawURL. A missing record is not an error.
func (c *Client) DeleteByURL(ctx context.Context, rawURL string) error {
	if err := c.ready(); err != nil {
		return err
	}
	var resp resultResponse
	if err := c.call(ctx, opDelete, url.Values{"url": {rawURL}}, &resp); err != nil {
		return err
	}
	switch resp.ResultCode {
	case resultDone:
		c.logger.Debug("bookmark deleted", zap.String("url", rawURL))
		return nil
	case resultNotFound:
		c.logger.Debug("bookmark already absent", zap.String("url", rawURL))
		return nil
	default:
		return &linkrot.StoreError{Op: opDelete, StatusCode: http.StatusOK, Detail: resp.ResultCode}
	}
}

func (c *Client) ready() error {
	if !c.authenticated.Load() {
		return linkrot.ErrNotAuthenticated
	}
	return nil
}

func (c *Client) call(ctx context.Context, op string, params url.Values, out any) error {
	endpoint := c.endpoint(op, params)
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return &linkrot.TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &linkrot.TransportError{Op: op, Err: c.redact(err)}
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &linkrot.TransportError{Op: op, Err: c.redact(err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.logger.Debug("store call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return &linkrot.StoreError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &linkrot.StoreError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", linkrot.ErrMalformedResponse, err),
		}
	}
	return nil
}

func (c *Client) endpoint(op string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + op
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("auth_token", c.cfg.Token)
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String()
}

// redact strips the credential from errors that echo the request URL.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = redactToken(urlErr.URL)
		return &redacted
	}
	return err
}

func redactToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<redacted>"
	}
	q := u.Query()
	if q.Has("auth_token") {
		q.Set("auth_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
