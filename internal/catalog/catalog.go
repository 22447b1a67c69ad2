// Package catalog provides access to the promotable product catalog.
//
// Two interchangeable implementations exist, selected by configuration:
// a static in-process list for development and testing, and an HTTP client
// for the external catalog service. The dispatcher performs the random
// product pick itself; clients only return the full catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/newsletter-dispatch/internal/config"
	"github.com/ignite/newsletter-dispatch/internal/domain"
)

// ErrUnavailable reports that the catalog could not be reached or returned
// no items. The dispatcher treats it as a recipient-scoped failure.
var ErrUnavailable = errors.New("product catalog unavailable")

// Client fetches the current set of promotable products.
type Client interface {
	FetchCatalog(ctx context.Context) ([]domain.Product, error)
}

// FromConfig builds the catalog client selected by cfg.Source.
func FromConfig(cfg config.CatalogConfig) (Client, error) {
	switch cfg.Source {
	case "static":
		return NewStaticClient(), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("catalog source %q requires base_url", cfg.Source)
		}
		return NewHTTPClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
