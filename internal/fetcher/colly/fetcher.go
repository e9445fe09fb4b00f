// Package collyfetcher implements linkrot.Prober using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/linkrot/internal/linkrot"
)

// DefaultUserAgent identifies as a desktop browser so servers that reject
// unidentified clients do not produce false dead links.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:79.0) Gecko/20100101 Firefox/79.0"

const defaultMaxBodySize = 1 << 20

// Config controls collector behavior.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
	Transport   http.RoundTripper
}

// Fetcher implements linkrot.Prober using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

var _ linkrot.Prober = (*Fetcher)(nil)

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(cfg.MaxBodySize),
	)
	transport := cfg.Transport
	if transport == nil {
		transport = newHTTPTransport()
	}
	c.WithTransport(transport)
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Probe executes a single HTTP GET using Colly. Non-2xx statuses are returned
// as responses, not errors; only transport failures produce an error.
func (f *Fetcher) Probe(ctx context.Context, rawURL string) (linkrot.ProbeResponse, error) {
	var (
		result   linkrot.ProbeResponse
		fetchErr error
	)
	if err := ctx.Err(); err != nil {
		return linkrot.ProbeResponse{URL: rawURL}, fmt.Errorf("colly probe canceled: %w", err)
	}
	start := time.Now()
	collector := f.buildCollector(ctx)
	f.configureCollectorHooks(collector, rawURL, start, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, rawURL, &fetchErr); err != nil {
		return linkrot.ProbeResponse{URL: rawURL, Duration: time.Since(start)}, err
	}
	return result, nil
}

func (f *Fetcher) buildCollector(ctx context.Context) *colly.Collector {
	collector := f.baseCollector.Clone()
	// Requests carry ctx so cancellation aborts the in-flight round trip.
	collector.Context = ctx
	collector.UserAgent = f.cfg.UserAgent
	collector.AllowURLRevisit = true
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.MaxBodySize = f.cfg.MaxBodySize
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	rawURL string,
	start time.Time,
	result *linkrot.ProbeResponse,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		finalURL := rawURL
		if r.Request != nil && r.Request.URL != nil {
			finalURL = r.Request.URL.String()
		}
		*result = linkrot.ProbeResponse{
			URL:        rawURL,
			FinalURL:   finalURL,
			StatusCode: r.StatusCode,
			Bytes:      len(r.Body),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	var err error
	select {
	case <-ctx.Done():
		// The request is bound to ctx; wait for Visit to unwind so the caller's
		// concurrency slot is not released while the connection is still open.
		<-done
	case err = <-done:
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("colly probe canceled: %w", ctxErr)
	}
	if err != nil {
		return fmt.Errorf("colly visit failed: %w", err)
	}
	if *fetchErr != nil {
		return fmt.Errorf("colly response failed: %w", *fetchErr)
	}
	return nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}
}
