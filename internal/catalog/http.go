package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/newsletter-dispatch/internal/config"
	"github.com/ignite/newsletter-dispatch/internal/domain"
	"github.com/ignite/newsletter-dispatch/internal/pkg/httpretry"
)

// HTTPClient fetches the catalog from the external product service over
// HTTP with retries. Errors are mapped to ErrUnavailable so callers never
// need to distinguish transport failures from an empty catalog.
type HTTPClient struct {
	baseURL string
	client  httpretry.Doer
}

// NewHTTPClient creates an HTTP catalog client for cfg.BaseURL.
func NewHTTPClient(cfg config.CatalogConfig) *HTTPClient {
	inner := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  httpretry.New(inner, cfg.MaxRetries),
	}
}

// FetchCatalog requests GET {base}/products and decodes the product list.
func (c *HTTPClient) FetchCatalog(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(payload.Products) == 0 {
		return nil, ErrUnavailable
	}
	return payload.Products, nil
}
