// Package geocoder defines the optional external-lookup collaborator spec
// §4.5/§9 allows Phase 3 to consult when local confidence is low. There is
// no ecosystem Vietnamese geocoding client in the examined corpus, so the
// HTTP client is hand-rolled on net/http the way the teacher's own
// dropped libpostal.go integration was hand-rolled against a narrow
// C API; everything else (timeout plumbing, fail-soft error handling) is
// grounded on the cache services' context.WithTimeout pattern.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Hit is one geocoder-resolved administrative triple.
type Hit struct {
	Province   string
	District   string
	Ward       string
	Confidence float64
}

// Geocoder is the narrow interface Phase 3 consults. Implementations must
// fail soft: a down or slow geocoder degrades the pipeline to local-only
// results, it never aborts the request.
type Geocoder interface {
	Lookup(ctx context.Context, raw string) (Hit, bool, error)
}

// HTTPGeocoder calls a JSON HTTP endpoint returning {"province":...,
// "district":..., "ward":..., "confidence":...}, with a hard per-call
// timeout independent of the caller's context deadline.
type HTTPGeocoder struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPGeocoder builds a geocoder client. timeout defaults to 2s (spec
// §6's external_timeout_ms default) when zero.
func NewHTTPGeocoder(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPGeocoder {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGeocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

type geocodeResponse struct {
	Province   string  `json:"province"`
	District   string  `json:"district"`
	Ward       string  `json:"ward"`
	Confidence float64 `json:"confidence"`
	Found      bool    `json:"found"`
}

// Lookup queries the geocoder, bounding the request to g.timeout
// regardless of ctx's own deadline. Any error (timeout, non-2xx,
// malformed body) is returned to the caller, which per spec §9 must treat
// it as geocoder_failure and fall back to local-only candidates, not as a
// reason to fail the whole request.
func (g *HTTPGeocoder) Lookup(ctx context.Context, raw string) (Hit, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?q=%s", g.baseURL, url.QueryEscape(raw))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Hit{}, false, fmt.Errorf("geocoder_failure: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("geocoder request failed", zap.Error(err))
		return Hit{}, false, fmt.Errorf("geocoder_failure: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Hit{}, false, fmt.Errorf("geocoder_failure: status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Hit{}, false, fmt.Errorf("geocoder_failure: decode response: %w", err)
	}
	if !body.Found {
		return Hit{}, false, nil
	}
	return Hit{
		Province:   body.Province,
		District:   body.District,
		Ward:       body.Ward,
		Confidence: body.Confidence,
	}, true, nil
}

var _ Geocoder = (*HTTPGeocoder)(nil)
