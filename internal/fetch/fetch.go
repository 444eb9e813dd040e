// Package fetch downloads image bytes for the flyer OCR layer.
package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/hashapp/scout/internal/config"
	"github.com/hashapp/scout/internal/resilience"
)

// Fetcher downloads images with a shared rate limit, a size cap, and a
// per-request timeout. One fetcher is shared across concurrent OCR
// workers; the limiter keeps a batch job from hammering an image host.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
	ua       string
}

// NewFetcher creates a fetcher from config.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 4
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		maxBytes: maxBytes,
		ua:       cfg.UserAgent,
	}
}

// Fetch downloads one image. Non-image content types and oversized
// responses are errors: the OCR layer treats any fetch failure as
// "skip this candidate".
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: build request %s", url)
	}
	if f.ua != "" {
		req.Header.Set("User-Agent", f.ua)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: get %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("fetch: %s returned %d", url, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "application/octet-stream") {
		return nil, eris.Errorf("fetch: %s is not an image: %s", url, ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read %s", url)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, eris.Errorf("fetch: %s exceeds %d bytes", url, f.maxBytes)
	}
	return data, nil
}
