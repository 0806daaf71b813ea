package rtcam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"camportal/internal/config"
	"camportal/internal/model"
)

// Package rtcam implements the client for the provider camera API.
// All authenticated calls carry "Authorization: Bearer token=<API_KEY>".
// The health probe is unauthenticated and uses a shorter timeout.

// Health is the provider API health probe response.
type Health struct {
	Status string `json:"status"`
}

// ArchiveQuery holds listing parameters for baked archives.
type ArchiveQuery struct {
	Offset     int
	Limit      int
	SortColumn string
	SortOrder  string
}

// API is the provider camera API surface consumed by services.
type API interface {
	// Health probes the provider API without authentication.
	Health(ctx context.Context) (*Health, error)

	// AllCameras fetches the full camera list, walking all pages.
	AllCameras(ctx context.Context) ([]model.Camera, error)

	// CameraFragments lists recorded archive fragments for one camera within
	// [since, till] unix seconds.
	CameraFragments(ctx context.Context, uid string, since, till int64) ([]model.Fragment, error)

	// BakedArchives lists server-side archive exports.
	BakedArchives(ctx context.Context, q ArchiveQuery) ([]model.BakedArchive, error)
}

// APIError is returned for non-2xx provider responses.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider api: %s returned %d", e.URL, e.StatusCode)
}

// Client is the HTTP implementation of API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	authHeader string
	perPage    int
	httpClient *http.Client
	healthHTTP *http.Client
}

var _ API = (*Client)(nil)

// New creates a provider API client. Outbound requests are traced via an
// otelhttp round-tripper.
func New(cfg config.RTConfig) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport)
	return &Client{
		baseURL:    cfg.BaseURL,
		authHeader: "Bearer token=" + cfg.APIKey,
		perPage:    cfg.PerPage,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		healthHTTP: &http.Client{Timeout: cfg.HealthTimeout, Transport: transport},
	}
}

// get performs a GET against the provider API and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, authed bool, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	hc := c.healthHTTP
	if authed {
		req.Header.Set("Authorization", c.authHeader)
		hc = c.httpClient
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("provider api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, URL: u}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Health probes /v1/health.json without authentication.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/v1/health.json", nil, false, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

type camerasPage struct {
	Cameras    []model.Camera `json:"cameras"`
	TotalPages int            `json:"total_pages"`
}

// AllCameras walks /v3/user/cameras.json until total_pages is exhausted.
// A missing total_pages means a single page.
func (c *Client) AllCameras(ctx context.Context) ([]model.Camera, error) {
	var cameras []model.Camera
	for page := 1; ; page++ {
		params := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.perPage)},
		}
		var p camerasPage
		if err := c.get(ctx, "/v3/user/cameras.json", params, true, &p); err != nil {
			return nil, fmt.Errorf("list cameras page %d: %w", page, err)
		}
		cameras = append(cameras, p.Cameras...)

		totalPages := p.TotalPages
		if totalPages < 1 {
			totalPages = 1
		}
		if page >= totalPages {
			break
		}
	}
	return cameras, nil
}

type fragmentsResponse struct {
	Fragments []model.Fragment `json:"fragments"`
}

// CameraFragments lists estore fragments for one camera within [since, till].
func (c *Client) CameraFragments(ctx context.Context, uid string, since, till int64) ([]model.Fragment, error) {
	params := url.Values{
		"since": {strconv.FormatInt(since, 10)},
		"till":  {strconv.FormatInt(till, 10)},
	}
	path := fmt.Sprintf("/v1/user/cameras/%s/estore_fragments.json", url.PathEscape(uid))
	var fr fragmentsResponse
	if err := c.get(ctx, path, params, true, &fr); err != nil {
		return nil, fmt.Errorf("list fragments for %s: %w", uid, err)
	}
	return fr.Fragments, nil
}

type bakedArchivesResponse struct {
	BakedArchives []model.BakedArchive `json:"baked_archives"`
	Archives      []model.BakedArchive `json:"archives"`
}

// BakedArchives lists archive exports sorted by updated_at desc unless the
// query says otherwise.
func (c *Client) BakedArchives(ctx context.Context, q ArchiveQuery) ([]model.BakedArchive, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.SortColumn == "" {
		q.SortColumn = "updated_at"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
	params := url.Values{
		"offset":      {strconv.Itoa(q.Offset)},
		"limit":       {strconv.Itoa(q.Limit)},
		"sort_column": {q.SortColumn},
		"sort_order":  {q.SortOrder},
	}
	var resp bakedArchivesResponse
	if err := c.get(ctx, "/v1/user/baked_archives.json", params, true, &resp); err != nil {
		return nil, fmt.Errorf("list baked archives: %w", err)
	}
	// Some deployments return the list under "archives".
	if resp.BakedArchives == nil {
		return resp.Archives, nil
	}
	return resp.BakedArchives, nil
}
