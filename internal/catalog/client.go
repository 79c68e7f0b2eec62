package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Paddy1981/larun-space/internal/cache"
	"go.uber.org/zap"
)

// Target holds the stellar parameters the analysis pipeline needs for a
// catalog entry.
type Target struct {
	ID        string  `json:"id"`
	RA        float64 `json:"ra"`
	Dec       float64 `json:"dec"`
	Magnitude float64 `json:"tess_mag"`
	Teff      float64 `json:"teff"`
	Radius    float64 `json:"radius_sun"`
	Mass      float64 `json:"mass_sun"`
	Distance  float64 `json:"distance_pc"`
	Sectors   []int   `json:"sectors"`
	Source    string  `json:"source"`
}

const (
	SourceMAST      = "mast"
	SourceSynthetic = "synthetic"
)

// Client resolves target identifiers against the MAST archive, degrading
// to a deterministic synthetic catalog when the archive is unreachable.
// Lookups go through the time-bounded cache so repeated queries within
// the TTL never refetch.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Store
	logger     *zap.Logger
}

// ------------------------------------------------------------------------------------------------------
// NewClient creates a catalog client backed by the given response cache
func NewClient(baseURL string, timeout time.Duration, cacheStore cache.Store, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:  cacheStore,
		logger: logger,
	}
}

// ------------------------------------------------------------------------------------------------------
// LookupKey composes the cache key for a lookup deterministically from
// its parameters, so identical queries hit the same slot.
func LookupKey(id string, radius float64) string {
	return fmt.Sprintf("target:%s:r%.2f", id, radius)
}

// ------------------------------------------------------------------------------------------------------
// Lookup returns the catalog entry for a target. Cache first; on a miss
// or expired entry it fetches from MAST, falling back to the synthetic
// generator, and stores the result.
func (c *Client) Lookup(ctx context.Context, id string, radius float64) (*Target, error) {
	key := LookupKey(id, radius)

	if data, ok := c.cache.Get(ctx, key); ok {
		var target Target
		if err := json.Unmarshal(data, &target); err == nil {
			return &target, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	}

	target, err := c.fetchMAST(ctx, id, radius)
	if err != nil {
		c.logger.Warn("MAST lookup failed, using synthetic catalog",
			zap.String("target", id),
			zap.Error(err),
		)
		target = SyntheticTarget(id)
	}

	if data, err := json.Marshal(target); err == nil {
		c.cache.Put(ctx, key, data)
	}

	return target, nil
}

// ------------------------------------------------------------------------------------------------------
func (c *Client) fetchMAST(ctx context.Context, id string, radius float64) (*Target, error) {
	url := fmt.Sprintf("%s/api/v0.1/catalogs/tic/%s?radius=%.2f", c.baseURL, id, radius)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query MAST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("MAST error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var payload struct {
		Data []Target `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode MAST response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("no catalog entry for target %s", id)
	}

	target := payload.Data[0]
	target.ID = id
	target.Source = SourceMAST
	return &target, nil
}
