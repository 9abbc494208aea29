package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/b1g-analytics/internal/domain/rawdata"
	"github.com/riskibarqy/b1g-analytics/internal/platform/logging"
	"github.com/riskibarqy/b1g-analytics/internal/platform/resilience"
	"github.com/riskibarqy/b1g-analytics/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball"
	maxBodyBytes   = 6 << 20

	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeCached  = "cached"
	outcomeBlocked = "circuit_open"
)

var errESPNTransient = crerr.New("espn transient failure")

// ResponseCache stores raw provider bodies between runs.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RequestObserver receives one observation per provider call.
type RequestObserver interface {
	ObserveProviderRequest(endpoint, outcome string, elapsed time.Duration)
}

type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	ConferenceGroup int
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	Logger          *logging.Logger
	CircuitBreaker  resilience.CircuitBreakerConfig
	Cache           ResponseCache
	CacheTTL        time.Duration
	Archive         rawdata.Repository
	Observer        RequestObserver
}

type Client struct {
	httpClient      *http.Client
	baseURL         string
	conferenceGroup int
	maxRetries      int
	retryBackoff    time.Duration
	logger          *logging.Logger
	breaker         *resilience.CircuitBreaker
	flight          singleflight.Group
	cache           ResponseCache
	cacheTTL        time.Duration
	archive         rawdata.Repository
	observer        RequestObserver
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	group := cfg.ConferenceGroup
	if group <= 0 {
		group = 7
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("espn circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:      httpClient,
		baseURL:         baseURL,
		conferenceGroup: group,
		maxRetries:      max(cfg.MaxRetries, 0),
		retryBackoff:    backoff,
		logger:          logger,
		breaker:         breaker,
		cache:           cfg.Cache,
		cacheTTL:        cfg.CacheTTL,
		archive:         cfg.Archive,
		observer:        cfg.Observer,
	}
}

type request struct {
	endpoint  string
	path      string
	query     url.Values
	cacheable bool
}

func (r request) key() string {
	if encoded := r.query.Encode(); encoded != "" {
		return r.path + "?" + encoded
	}
	return r.path
}

func (c *Client) doJSON(ctx context.Context, req request) (map[string]any, error) {
	fullURL := c.baseURL + req.key()
	cacheKey := "espn:" + req.key()
	started := time.Now()

	if req.cacheable && c.cache != nil && c.cacheTTL > 0 {
		raw, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			c.logger.WarnContext(ctx, "espn response cache read failed", "key", cacheKey, "error", err)
		} else if ok {
			payload, decodeErr := decodePayload(raw)
			if decodeErr == nil {
				c.observe(req.endpoint, outcomeCached, started)
				return payload, nil
			}
		}
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State(), "url", fullURL)
		c.observe(req.endpoint, outcomeBlocked, started)
		return nil, &usecase.TransportError{URL: fullURL, Err: err}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.breaker.Record(isCircuitFailure(reqErr))
		return raw, reqErr
	})
	if err != nil {
		c.observe(req.endpoint, outcomeError, started)
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		c.observe(req.endpoint, outcomeError, started)
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	payload, err := decodePayload(raw)
	if err != nil {
		c.observe(req.endpoint, outcomeError, started)
		return nil, err
	}
	c.observe(req.endpoint, outcomeSuccess, started)

	if req.cacheable && c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, cacheKey, raw, c.cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "espn response cache write failed", "key", cacheKey, "error", err)
		}
	}
	c.archivePayload(ctx, req, raw)

	return payload, nil
}

func decodePayload(raw []byte) (map[string]any, error) {
	var payload map[string]any
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("decode provider payload: empty document")
	}
	return payload, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &usecase.TransportError{URL: fullURL, Err: fmt.Errorf("%w: send request: %v", errESPNTransient, err)}
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = &usecase.TransportError{StatusCode: resp.StatusCode, URL: fullURL, Err: fmt.Errorf("%w: read response body: %v", errESPNTransient, readErr)}
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = &usecase.TransportError{StatusCode: resp.StatusCode, URL: fullURL, Err: fmt.Errorf("%w: body=%s", errESPNTransient, abbreviateBody(raw))}
			default:
				return nil, &usecase.TransportError{StatusCode: resp.StatusCode, URL: fullURL, Err: fmt.Errorf("body=%s", abbreviateBody(raw))}
			}
		}

		if ctx.Err() != nil {
			return nil, &usecase.TransportError{URL: fullURL, Err: ctx.Err()}
		}
		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &usecase.TransportError{URL: fullURL, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = &usecase.TransportError{URL: fullURL}
	}
	c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxBodyBytes)); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func (c *Client) archivePayload(ctx context.Context, req request, raw []byte) {
	if c.archive == nil {
		return
	}
	item := rawdata.Payload{
		Source:      rawdata.SourceESPN,
		EntityType:  req.endpoint,
		EntityKey:   req.key(),
		PayloadJSON: string(raw),
		PayloadHash: rawdata.Hash(raw),
	}
	if err := c.archive.UpsertMany(ctx, []rawdata.Payload{item}); err != nil {
		c.logger.WarnContext(ctx, "archive espn payload failed", "entity_type", item.EntityType, "entity_key", item.EntityKey, "error", err)
	}
}

func (c *Client) observe(endpoint, outcome string, started time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveProviderRequest(endpoint, outcome, time.Since(started))
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errESPNTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
