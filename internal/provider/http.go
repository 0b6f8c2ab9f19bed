// -- internal/provider/http.go --
// Description: Bundle provider backed by a remote loader sidecar. Fetches
// are rate limited to be a good citizen toward the sidecar, which also
// serves geometry to the viewer.

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
	"github.com/bimgrid/ifcpanel-cli/internal/config"
)

// HTTPProvider fetches raw bundles over HTTP from a loader sidecar exposing
// GET {base}/models/{modelID}/elements/{localID}.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewHTTPProvider creates a provider for the sidecar at cfg.BaseURL.
func NewHTTPProvider(cfg config.ProviderConfig, logger *zap.Logger) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("http provider requires a base URL")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.Named("httpprovider"),
	}, nil
}

// FetchBundle fetches one element's raw bundle. A 404 means the sidecar
// knows the model but not the element; that degrades rather than fails.
func (p *HTTPProvider) FetchBundle(ctx context.Context, modelID string, localID int64) (schemas.RawRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s/elements/%d", p.baseURL, url.PathEscape(modelID), localID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching bundle for %s/%d: %w", modelID, localID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("loader sidecar returned %s for %s/%d", resp.Status, modelID, localID)
	}

	var body io.Reader = resp.Body
	if strings.Contains(resp.Header.Get("Content-Encoding"), "br") {
		body = brotli.NewReader(resp.Body)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading bundle body: %w", err)
	}
	var bundle schemas.RawRecord
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decoding bundle for %s/%d: %w", modelID, localID, err)
	}
	return bundle, nil
}
