package meta

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// HTTPSource resolves metadata from a station metadata service that
// returns a metadata tree document. Requests are rate limited and
// retried on server errors.
type HTTPSource struct {
	baseURL    string
	userAgent  string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	RateLimit  rate.Limit
	Burst      int
	MaxRetries int
}

// NewHTTPSource creates an HTTPSource for the given service base URL.
func NewHTTPSource(baseURL string, opts HTTPOptions) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = 5
	}
	if opts.Burst == 0 {
		opts.Burst = 5
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "css3convert/1.0"
	}
	return &HTTPSource{
		baseURL:    baseURL,
		userAgent:  opts.UserAgent,
		client:     &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(opts.RateLimit, opts.Burst),
		maxRetries: opts.MaxRetries,
	}
}

// Resolve implements Source by querying the metadata service with the
// selector's codes and time range.
func (h *HTTPSource) Resolve(ctx context.Context, sel Selector) (*Tree, error) {
	reqURL, err := h.buildURL(sel)
	if err != nil {
		return nil, err
	}

	body, err := h.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var tree Tree
	if err := yaml.Unmarshal(body, &tree); err != nil {
		return nil, eris.Wrap(err, "meta: parse service response")
	}

	matched := filter(&tree, sel)
	if matched == nil {
		return nil, eris.Wrapf(ErrNotFound, "service %s: %s.%s.%s.%s",
			h.baseURL, sel.Network, sel.Station, sel.Location, sel.Channel)
	}

	zap.L().Debug("meta: resolved from service",
		zap.String("station", sel.Station),
		zap.String("channel", sel.Channel),
	)
	return matched, nil
}

func (h *HTTPSource) buildURL(sel Selector) (string, error) {
	u, err := url.Parse(h.baseURL)
	if err != nil {
		return "", eris.Wrapf(err, "meta: parse base url %s", h.baseURL)
	}
	q := u.Query()
	q.Set("net", sel.Network)
	q.Set("sta", sel.Station)
	q.Set("loc", sel.Location)
	q.Set("cha", sel.Channel)
	if !sel.Start.IsZero() {
		q.Set("start", sel.Start.UTC().Format(time.RFC3339))
	}
	if !sel.End.IsZero() {
		q.Set("end", sel.End.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (h *HTTPSource) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := range h.maxRetries {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "meta: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "meta: create request")
		}
		req.Header.Set("User-Agent", h.userAgent)

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("meta: service request failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			h.backoff(ctx, attempt)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
			_ = resp.Body.Close()
			return nil, eris.Wrap(ErrNotFound, "meta: service returned no data")
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("meta: http %d from service", resp.StatusCode)
			zap.L().Warn("meta: server error, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			h.backoff(ctx, attempt)
			continue
		case resp.StatusCode != http.StatusOK:
			_ = resp.Body.Close()
			return nil, eris.Errorf("meta: unexpected status %d from service", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "meta: read service response")
		}
		return body, nil
	}
	return nil, eris.Wrap(lastErr, "meta: all retries exhausted")
}

func (h *HTTPSource) backoff(ctx context.Context, attempt int) {
	d := time.Second << attempt
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
