package catalog

import (
	"context"

	"github.com/ignite/newsletter-dispatch/internal/domain"
)

// StaticClient serves a fixed in-process product list. It stands in for the
// external catalog service in development and tests.
type StaticClient struct {
	products []domain.Product
}

// NewStaticClient creates a static catalog with the built-in product set.
func NewStaticClient() *StaticClient {
	return &StaticClient{products: defaultProducts}
}

// NewStaticClientWith creates a static catalog serving exactly the given
// products. An empty slice makes FetchCatalog return ErrUnavailable, which
// is how tests model a catalog outage.
func NewStaticClientWith(products []domain.Product) *StaticClient {
	return &StaticClient{products: products}
}

// FetchCatalog returns a copy of the product list.
func (c *StaticClient) FetchCatalog(_ context.Context) ([]domain.Product, error) {
	if len(c.products) == 0 {
		return nil, ErrUnavailable
	}
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

var defaultProducts = []domain.Product{
	{
		ID:          "OLJCESPC7Z",
		Name:        "Sunglasses",
		Description: "Add a modern touch to your outfits with these sleek aviator sunglasses.",
		Picture:     "/static/img/products/sunglasses.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 19, Nanos: 990000000},
		Categories:  []string{"accessories"},
	},
	{
		ID:          "66VCHSJNUP",
		Name:        "Tank Top",
		Description: "Perfectly cropped cotton tank, with a scooped neckline.",
		Picture:     "/static/img/products/tank-top.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 18, Nanos: 990000000},
		Categories:  []string{"clothing", "tops"},
	},
	{
		ID:          "1YMWWN1N4O",
		Name:        "Watch",
		Description: "This gold-tone stainless steel watch will work with most of your outfits.",
		Picture:     "/static/img/products/watch.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 109, Nanos: 990000000},
		Categories:  []string{"accessories"},
	},
	{
		ID:          "L9ECAV7KIM",
		Name:        "Loafers",
		Description: "A timeless design, our loafers are crafted from premium leather.",
		Picture:     "/static/img/products/loafers.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 89, Nanos: 990000000},
		Categories:  []string{"footwear"},
	},
	{
		ID:          "2ZYFJ3GM2N",
		Name:        "Hairdryer",
		Description: "This lightweight hairdryer has 3 heat and speed settings.",
		Picture:     "/static/img/products/hairdryer.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 24, Nanos: 990000000},
		Categories:  []string{"hair", "beauty"},
	},
	{
		ID:          "0PUK6V6EV0",
		Name:        "Candle Holder",
		Description: "This glass candle holder is perfect for any occasion.",
		Picture:     "/static/img/products/candle-holder.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 18, Nanos: 990000000},
		Categories:  []string{"decor", "home"},
	},
	{
		ID:          "LS4PSXUNUM",
		Name:        "Salt & Pepper Shakers",
		Description: "Add some flavor to your kitchen with these ceramic shakers.",
		Picture:     "/static/img/products/salt-and-pepper-shakers.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 18, Nanos: 490000000},
		Categories:  []string{"kitchen"},
	},
	{
		ID:          "9SIQT8TOJO",
		Name:        "Bamboo Glass Jar",
		Description: "This bamboo glass jar is perfect for storing your favorite snacks.",
		Picture:     "/static/img/products/bamboo-glass-jar.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 5, Nanos: 490000000},
		Categories:  []string{"kitchen"},
	},
	{
		ID:          "6E92ZMYYFZ",
		Name:        "Mug",
		Description: "A simple white mug that goes with everything.",
		Picture:     "/static/img/products/mug.jpg",
		Price:       domain.Money{CurrencyCode: "USD", Units: 8, Nanos: 990000000},
		Categories:  []string{"kitchen"},
	},
}
