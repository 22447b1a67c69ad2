package render

import (
	"strings"
	"testing"

	"github.com/ignite/newsletter-dispatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProduct = domain.Product{
	ID:          "6E92ZMYYFZ",
	Name:        "Mug",
	Description: "A simple mug with a mustard interior and handle, essentially a grown up sippy cup.",
	Price:       domain.Money{CurrencyCode: "USD", Units: 8, Nanos: 990000000},
}

var testSubscriber = domain.Subscriber{
	Email:     "alice@example.com",
	FirstName: "Alice",
	LastName:  "Johnson",
}

func TestNewsletterSubjectFormat(t *testing.T) {
	r := NewWithRand("https://shop.example.com", func(n int) int { return 0 })

	email, err := r.Newsletter(testSubscriber, testProduct)
	require.NoError(t, err)

	assert.Equal(t, "🌟 Exclusive Deal Just for You! - Mug", email.Subject)
}

func TestNewsletterSubjectVariesWithHook(t *testing.T) {
	for i := range hooks {
		i := i
		r := NewWithRand("https://shop.example.com", func(n int) int { return i })
		email, err := r.Newsletter(testSubscriber, testProduct)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(email.Subject, hooks[i]))
		assert.True(t, strings.HasSuffix(email.Subject, " - Mug"))
	}
}

func TestNewsletterBody(t *testing.T) {
	r := NewWithRand("https://shop.example.com", func(n int) int { return 2 })

	email, err := r.Newsletter(testSubscriber, testProduct)
	require.NoError(t, err)

	assert.Contains(t, email.Body, "Hi Alice Johnson,")
	assert.Contains(t, email.Body, "Mug")
	assert.Contains(t, email.Body, "USD $8.99")
	assert.Contains(t, email.Body, "https://shop.example.com/product/6E92ZMYYFZ")
	assert.Contains(t, email.Body, "Shop Now")
	assert.Contains(t, email.Body, "🎁 Special Pick of the Week!")
}

func TestNewsletterMissingFirstNameFallsBack(t *testing.T) {
	r := NewWithRand("https://shop.example.com", func(n int) int { return 0 })

	sub := domain.Subscriber{Email: "b@example.com", LastName: "Lee"}
	email, err := r.Newsletter(sub, testProduct)
	require.NoError(t, err)

	assert.Contains(t, email.Body, "Hi Friend Lee,")
}

func TestRendererCachesParsedTemplate(t *testing.T) {
	r := NewWithRand("https://shop.example.com", func(n int) int { return 0 })

	_, err := r.Newsletter(testSubscriber, testProduct)
	require.NoError(t, err)

	_, ok := r.cache.Load("newsletter")
	assert.True(t, ok)
}
