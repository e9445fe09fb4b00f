package checker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/linkrot/internal/clock/system"
	"github.com/JakeFAU/linkrot/internal/linkrot"
	"github.com/JakeFAU/linkrot/internal/policy/ratelimit"
	"github.com/JakeFAU/linkrot/internal/progress"
)

const (
	// DefaultConcurrency is the number of checks kept in flight by CheckAll.
	DefaultConcurrency = 4
	// DefaultTimeout bounds a single check.
	DefaultTimeout = 10 * time.Second
)

// Config controls the checker pool.
type Config struct {
	Concurrency int
	Timeout     time.Duration
	SkipDomains []string
	RunID       uuid.UUID
}

// Checker implements linkrot.LinkChecker on top of a Prober.
type Checker struct {
	cfg     Config
	prober  linkrot.Prober
	emitter progress.Emitter
	limiter *ratelimit.Limiter
	clock   linkrot.Clock
	logger  *zap.Logger
	skip    *skipList
}

var _ linkrot.LinkChecker = (*Checker)(nil)

// Option customises optional collaborators.
type Option func(*Checker)

// WithEmitter reports progress to e. The emitter must not block.
func WithEmitter(e progress.Emitter) Option {
	return func(c *Checker) {
		if e != nil {
			c.emitter = e
		}
	}
}

// WithLimiter paces probes per host.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Checker) { c.limiter = l }
}

// WithClock overrides the clock used for event timestamps.
func WithClock(clk linkrot.Clock) Option {
	return func(c *Checker) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the component logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Checker. The prober is required.
func New(cfg Config, prober linkrot.Prober, opts ...Option) (*Checker, error) {
	if prober == nil {
		return nil, errors.New("checker: prober is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Checker{
		cfg:     cfg,
		prober:  prober,
		emitter: progress.Nop,
		clock:   system.New(),
		logger:  zap.NewNop(),
		skip:    newSkipList(cfg.SkipDomains),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check issues a single probe. Only an HTTP 200 counts as live; any other
// status, a timeout or a transport failure is dead. There are no retries.
func (c *Checker) Check(ctx context.Context, rawURL string) linkrot.CheckResult {
	result := linkrot.CheckResult{URL: rawURL, Liveness: linkrot.Dead}
	if err := ctx.Err(); err != nil {
		result.Err = fmt.Errorf("check %s: %w", rawURL, err)
		return result
	}
	if c.skip.Matches(rawURL) {
		result.Liveness = linkrot.Live
		result.Skipped = true
		return result
	}
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		result.Err = err
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.prober.Probe(ctx, rawURL)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = fmt.Errorf("check %s: %w", rawURL, err)
		c.logger.Debug("link check failed", zap.String("url", rawURL), zap.Error(err))
		return result
	}
	result.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		result.Liveness = linkrot.Live
	}
	return result
}

// CheckAll checks every URL with at most Concurrency probes in flight. The
// i-th result always belongs to the i-th input; a failing check never aborts
// the batch. Once ctx is done the remaining URLs are reported dead without a
// request; callers must consult ctx.Err before trusting the verdicts.
func (c *Checker) CheckAll(ctx context.Context, urls []string) []linkrot.CheckResult {
	results := make([]linkrot.CheckResult, len(urls))
	total := int64(len(urls))
	var done atomic.Int64

	c.emit(progress.Event{Stage: progress.StageBatchStart, Total: total})

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for i, rawURL := range urls {
		g.Go(func() error {
			res := c.Check(ctx, rawURL)
			results[i] = res
			c.emitCheck(res, done.Add(1), total)
			return nil
		})
	}
	_ = g.Wait()

	dead := 0
	for _, res := range results {
		if res.Dead() {
			dead++
		}
	}
	c.emit(progress.Event{Stage: progress.StageBatchDone, Done: done.Load(), Total: total})
	c.logger.Info("link check batch finished", zap.Int("total", len(urls)), zap.Int("dead", dead))
	return results
}

func (c *Checker) emitCheck(res linkrot.CheckResult, done, total int64) {
	evt := progress.Event{
		Stage:       progress.StageCheckDone,
		Site:        siteOf(res.URL),
		URL:         res.URL,
		StatusClass: progress.ClassifyStatus(res.StatusCode),
		Dead:        res.Dead(),
		Done:        done,
		Total:       total,
		Dur:         res.Duration,
	}
	switch {
	case res.Skipped:
		evt.StatusClass = progress.StatusOther
		evt.Note = "skipped"
	case res.Err != nil:
		evt.Note = res.Err.Error()
	}
	c.emit(evt)
}

func (c *Checker) emit(evt progress.Event) {
	evt.RunID = progress.UUIDToBytes(c.cfg.RunID)
	evt.TS = c.clock.Now()
	c.emitter.Emit(evt)
}

func siteOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
