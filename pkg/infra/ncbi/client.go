package ncbi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
	"golang.org/x/net/html/charset"
)

// config holds internal client configuration
type config struct {
	geoURL     string
	sraURL     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// Option is a functional option for the client
type Option func(*config)

// WithGEOURL sets the GEO accession query endpoint
func WithGEOURL(u string) Option {
	return func(c *config) {
		c.geoURL = u
	}
}

// WithSRAURL sets the SRA search endpoint
func WithSRAURL(u string) Option {
	return func(c *config) {
		c.sraURL = u
	}
}

// WithUserAgent sets the User-Agent header of every request
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// WithTimeout sets a per-request timeout on the HTTP client in use, including
// one given by WithHTTPClient. Zero keeps the client's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

type client struct {
	cfg config
}

// NewClient creates a GEOClient reading NCBI web pages
func NewClient(opts ...Option) interfaces.GEOClient {
	cfg := config{
		geoURL:     model.DefaultGEOURL,
		sraURL:     model.DefaultSRAURL,
		userAgent:  "seqpipe/" + types.Version,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	hc := *cfg.httpClient
	if cfg.timeout > 0 {
		hc.Timeout = cfg.timeout
	}
	hc.Transport = newLoggingTransport(hc.Transport)
	cfg.httpClient = &hc

	return &client{cfg: cfg}
}

// SeriesSamples returns the sample accessions of a GEO series
func (c *client) SeriesSamples(ctx context.Context, series string) ([]string, error) {
	return fetch(ctx, c, c.cfg.geoURL, url.Values{"acc": {series}}, ParseSeries)
}

// Sample returns the filter fields and SRA relation of a GEO sample
func (c *client) Sample(ctx context.Context, sample string) (*model.SampleRecord, error) {
	rec, err := fetch(ctx, c, c.cfg.geoURL, url.Values{"acc": {sample}}, ParseSample)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read sample page", goerr.V("sample", sample))
	}
	rec.Accession = sample
	return rec, nil
}

// SearchRuns returns the run accessions found by an SRA search
func (c *client) SearchRuns(ctx context.Context, term string) ([]string, error) {
	return fetch(ctx, c, c.cfg.sraURL, url.Values{"term": {term}}, ParseRunSearch)
}

// fetch issues a GET request and parses the body. Any non-2xx response is
// an error; nothing is retried.
func fetch[T any](ctx context.Context, c *client, base string, params url.Values, parse func(io.Reader) (T, error)) (T, error) {
	var zero T

	u, err := url.Parse(base)
	if err != nil {
		return zero, goerr.Wrap(err, "invalid endpoint URL", goerr.V("url", base))
	}
	u.RawQuery = params.Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return zero, goerr.Wrap(err, "failed to create request", goerr.V("url", target))
	}
	req.Header.Set("User-Agent", c.cfg.userAgent)

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return zero, goerr.Wrap(err, "failed to fetch page",
			goerr.V("url", target),
			goerr.T(types.ErrTagNetwork),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, goerr.New("unexpected status code",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", target),
			goerr.T(types.ErrTagNetwork),
		)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return zero, goerr.Wrap(err, "failed to decode page",
			goerr.V("url", target),
			goerr.T(types.ErrTagParse),
		)
	}

	v, err := parse(body)
	if err != nil {
		return zero, goerr.Wrap(err, "failed to extract page content", goerr.V("url", target))
	}
	return v, nil
}
