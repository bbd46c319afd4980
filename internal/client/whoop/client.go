package whoop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/garrettladley/whoopsync/internal/xslog"
	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "https://api.prod.whoop.com/developer/v1"

type Client struct {
	User  UserService
	Cycle CycleService

	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observer   func(context.Context, *RateLimitInfo)
}

func New(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	cfg := &clientConfig{
		baseURL:     DefaultBaseURL,
		tokenSource: tokenSource,
		logger:      slog.Default(),
		base:        xhttp.NewTransport(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	transport := &whoopTransport{
		base:        cfg.base,
		tokenSource: cfg.tokenSource,
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.baseURL, "/"),
		httpClient: &http.Client{Transport: transport, Timeout: cfg.timeout},
		logger:     cfg.logger,
		observer:   cfg.observer,
	}

	c.User = &userService{client: c}
	c.Cycle = &cycleService{client: c}

	return c
}

// NewWithAccessToken is a convenience for the common server-side case where
// the caller already holds a fresh access token.
func NewWithAccessToken(accessToken string, opts ...Option) *Client {
	return New(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}), opts...)
}

type clientConfig struct {
	baseURL     string
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	timeout     time.Duration
	base        http.RoundTripper
	observer    func(context.Context, *RateLimitInfo)
}

type Option func(*clientConfig)

func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = baseURL }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// WithRateLimitObserver registers a callback invoked with the rate limit
// headers of every response that carries them.
func WithRateLimitObserver(fn func(context.Context, *RateLimitInfo)) Option {
	return func(cfg *clientConfig) { cfg.observer = fn }
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.observeRateLimit(ctx, resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if err := go_json.NewDecoder(bytes.NewReader(body)).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w\nbody: %s", err, string(body))
		}
	}

	return nil
}

func (c *Client) observeRateLimit(ctx context.Context, headers http.Header) {
	info, err := ParseRateLimitHeaders(headers)
	if err != nil {
		c.logger.DebugContext(ctx, "unparseable rate limit headers", xslog.Error(err))
		return
	}
	if info == nil {
		return
	}
	if c.observer != nil {
		c.observer(ctx, info)
	}
}

type whoopTransport struct {
	base        http.RoundTripper
	tokenSource oauth2.TokenSource
}

var _ http.RoundTripper = (*whoopTransport)(nil)

func (t *whoopTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}

	req = req.Clone(req.Context())
	req.Header.Set(xhttp.Authorization, "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}
