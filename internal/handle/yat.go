package handle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tollgate/internal/cache"
	"github.com/mrz1836/tollgate/internal/metrics"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Yat service defaults.
const (
	DefaultYatBaseURL = "https://a.y.at"
	DefaultYatTag     = "0x1004" // Ethereum address record
	DefaultYatTimeout = 5 * time.Second

	yatCacheNamespace = "yat"
	maxResponseBytes  = 1 << 20
)

// YatConfig configures the Yat resolver.
type YatConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Tag           string        `yaml:"tag"`
	Timeout       time.Duration `yaml:"timeout"` // Per-attempt timeout
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
	Retry         RetryPolicy   `yaml:"retry"`
}

// DefaultYatConfig returns the configuration used when none is provided.
func DefaultYatConfig() YatConfig {
	return YatConfig{
		BaseURL:       DefaultYatBaseURL,
		Tag:           DefaultYatTag,
		Timeout:       DefaultYatTimeout,
		CacheTTL:      cache.DefaultTTL,
		RatePerSecond: 5,
		Burst:         10,
		Retry:         DefaultRetryPolicy(),
	}
}

// yatResponse is the body of GET /emoji_id/{yat}/{tag}.
type yatResponse struct {
	Status bool        `json:"status"`
	Result []yatRecord `json:"result"`
}

type yatRecord struct {
	Tag  string `json:"tag"`
	Data string `json:"data"` // "<address>|<description>"
}

// Compile-time interface check
var _ Resolver = (*YatResolver)(nil)

// YatResolver resolves Yats through the Yat HTTP API.
type YatResolver struct {
	cfg     YatConfig
	host    string
	client  *http.Client
	limiter *RateLimiter
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option configures a YatResolver.
type Option func(*YatResolver)

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(c *http.Client) Option {
	return func(y *YatResolver) { y.client = c }
}

// WithCache replaces the in-memory cache, e.g. with one loaded from disk.
func WithCache(c cache.Cache) Option {
	return func(y *YatResolver) { y.cache = c }
}

// WithMetrics records lookups and cache usage.
func WithMetrics(m *metrics.Metrics) Option {
	return func(y *YatResolver) { y.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(y *YatResolver) { y.logger = l }
}

// NewYatResolver creates a resolver. Zero values in cfg fall back to the defaults.
func NewYatResolver(cfg YatConfig, opts ...Option) (*YatResolver, error) {
	def := DefaultYatConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Tag == "" {
		cfg.Tag = def.Tag
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = def.Retry
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
			"field": "handles.yat.base_url",
			"value": cfg.BaseURL,
		})
	}

	y := &YatResolver{
		cfg:     cfg,
		host:    u.Host,
		client:  &http.Client{},
		limiter: NewRateLimiter(cfg.RatePerSecond, cfg.Burst),
		cache:   cache.NewResolutionCache(cfg.CacheTTL),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(y)
	}
	y.logger = y.logger.With().Str("component", "handle").Str("resolver", "yat").Logger()

	return y, nil
}

// Resolve implements Resolver. Inputs that are not 1-5 emoji are reported as
// not found without contacting the service.
func (y *YatResolver) Resolve(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if !IsYatHandle(handle) {
		return "", nil
	}

	key := cache.Key(yatCacheNamespace, handle)
	if y.cache != nil {
		if entry, ok := y.cache.Get(key); ok {
			y.metrics.RecordCacheHit()
			return entry.Address, nil
		}
		y.metrics.RecordCacheMiss()
	}

	start := time.Now()
	addr, err := RetryWithConfig(ctx, y.cfg.Retry, func(ctx context.Context) (string, error) {
		return y.lookup(ctx, handle)
	})
	elapsed := time.Since(start)

	if err != nil {
		y.metrics.RecordLookup(metrics.LookupError, elapsed)
		y.logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("yat lookup failed")
		return "", tgerr.WithCause(tgerr.ErrHandleLookup, err)
	}

	result := metrics.LookupFound
	if addr == "" {
		result = metrics.LookupNotFound
	}
	y.metrics.RecordLookup(result, elapsed)
	y.logger.Debug().Str("result", result).Dur("elapsed", elapsed).Msg("yat lookup")

	if y.cache != nil {
		y.cache.Set(cache.Entry{Key: key, Address: addr, Found: addr != ""})
	}
	return addr, nil
}

// lookup performs one HTTP attempt.
func (y *YatResolver) lookup(ctx context.Context, handle string) (string, error) {
	if err := y.limiter.Wait(ctx, y.host); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, y.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/emoji_id/%s/%s", y.cfg.BaseURL, url.PathEscape(handle), url.PathEscape(y.cfg.Tag))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req) //nolint:gosec // G107: URL is built from configured base URL
	if err != nil {
		return "", tgerr.WithCause(ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", WithRetryAfter(ErrRateLimited, ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", tgerr.WithDetails(ErrTransient, map[string]string{"status": resp.Status})
	case resp.StatusCode != http.StatusOK:
		return "", tgerr.WithDetails(tgerr.ErrNetworkError, map[string]string{"status": resp.Status})
	}

	var body yatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return "", tgerr.WithCause(tgerr.ErrNetworkError, fmt.Errorf("decoding yat response: %w", err))
	}

	return body.address(y.cfg.Tag), nil
}

// address returns the first non-empty record for tag, or "" if there is none.
func (r yatResponse) address(tag string) string {
	if !r.Status {
		return ""
	}
	for _, rec := range r.Result {
		if !strings.EqualFold(rec.Tag, tag) {
			continue
		}
		addr, _, _ := strings.Cut(rec.Data, "|")
		if addr = strings.TrimSpace(addr); addr != "" {
			return addr
		}
	}
	return ""
}
