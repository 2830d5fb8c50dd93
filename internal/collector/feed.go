package collector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/signal-scout/internal/model"
	"github.com/sells-group/signal-scout/internal/resilience"
)

// FeedOptions configures a FeedCollector.
type FeedOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond throttles calls to the feed host. Default: 2.
	RequestsPerSecond float64
}

// FeedCollector pulls raw events from an HTTP endpoint serving a JSON array.
// Calls are rate limited and retried on transient failures.
type FeedCollector struct {
	platform model.SourcePlatform
	url      string
	client   *http.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	opts     FeedOptions
}

// NewFeedCollector creates a collector polling url for platform events.
func NewFeedCollector(platform model.SourcePlatform, url string, opts FeedOptions) *FeedCollector {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "signal-scout/1.0"
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}

	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("feed", string(platform))

	return &FeedCollector{
		platform: platform,
		url:      url,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		retry:   retry,
		opts:    opts,
	}
}

func (c *FeedCollector) Name() model.SourcePlatform {
	return c.platform
}

func (c *FeedCollector) Collect(ctx context.Context) ([]model.RawEvent, error) {
	events, err := resilience.DoVal(ctx, c.retry, c.fetch)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("collector: feed fetch complete",
		zap.String("platform", string(c.platform)),
		zap.String("url", c.url),
		zap.Int("events", len(events)),
	)
	return normalize(events, c.platform), nil
}

func (c *FeedCollector) fetch(ctx context.Context) ([]model.RawEvent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "collector: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "collector: build request for %s", c.url)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "collector: fetch %s", c.url), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("collector: feed %s returned %d", c.url, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "collector: read feed %s", c.url), 0)
	}

	var events []model.RawEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, eris.Wrapf(err, "collector: decode feed %s", c.url)
	}
	return events, nil
}
