// Package render turns a subscriber and a featured product into a
// ready-to-send newsletter email using Liquid templates.
package render

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/newsletter-dispatch/internal/domain"
)

// hooks are the rotating subject-line openers. One is chosen at random
// per email and prefixed to the product name.
var hooks = []string{
	"🌟 Exclusive Deal Just for You!",
	"💎 Don't Miss This Amazing Offer!",
	"🎁 Special Pick of the Week!",
	"✨ Trending Now in Our Store!",
	"🔥 Hot Deal Alert!",
}

const newsletterTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #f9f9f9; padding: 30px; }
    .product { background: white; padding: 20px; margin: 20px 0; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
    .product-name { font-size: 24px; font-weight: bold; color: #667eea; }
    .price { font-size: 28px; font-weight: bold; color: #764ba2; margin: 15px 0; }
    .cta-button { display: inline-block; background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; }
    .footer { text-align: center; padding: 20px; color: #999; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{ hook }}</h1>
    </div>
    <div class="content">
      <p>Hi {{ first_name | default: "Friend" }} {{ last_name }},</p>
      <p>We've handpicked something special just for you!</p>

      <div class="product">
        <div class="product-name">{{ product_name }}</div>
        <p>{{ product_description }}</p>
        <div class="price">{{ price }}</div>
        <a href="{{ product_url }}" class="cta-button">Shop Now</a>
      </div>

      <p>Happy shopping! 🛍️</p>
      <p>- The Newsletter Team</p>
    </div>
    <div class="footer">
      <p>© 2024 IGNITE Media</p>
    </div>
  </div>
</body>
</html>`

// Email is a fully rendered message ready for a delivery gateway.
type Email struct {
	Subject string
	Body    string
}

// Renderer renders newsletter emails. Parsed templates are cached, so
// repeated renders of the batch template only parse once.
type Renderer struct {
	engine      *liquid.Engine
	cache       sync.Map // map[string]*liquid.Template
	shopBaseURL string
	intn        func(n int) int
}

// New creates a Renderer with the default random source.
func New(shopBaseURL string) *Renderer {
	return NewWithRand(shopBaseURL, rand.Intn)
}

// NewWithRand creates a Renderer with an injectable random source.
// Tests pass a deterministic intn to pin the chosen hook.
func NewWithRand(shopBaseURL string, intn func(n int) int) *Renderer {
	engine := liquid.NewEngine()

	r := &Renderer{
		engine:      engine,
		shopBaseURL: strings.TrimRight(shopBaseURL, "/"),
		intn:        intn,
	}

	r.registerFilters()

	return r
}

func (r *Renderer) registerFilters() {
	// Default value filter: {{ first_name | default: "Friend" }}
	r.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil || value == "" {
			return defaultVal
		}
		return value
	})
}

// Newsletter renders the subject and HTML body for one subscriber and
// one featured product.
func (r *Renderer) Newsletter(sub domain.Subscriber, product domain.Product) (Email, error) {
	hook := hooks[r.intn(len(hooks))]
	subject := fmt.Sprintf("%s - %s", hook, product.Name)

	body, err := r.render("newsletter", newsletterTemplate, map[string]interface{}{
		"hook":                hook,
		"first_name":          sub.FirstName,
		"last_name":           sub.LastName,
		"product_name":        product.Name,
		"product_description": product.Description,
		"price":               product.Price.Format(),
		"product_url":         fmt.Sprintf("%s/product/%s", r.shopBaseURL, product.ID),
	})
	if err != nil {
		return Email{}, fmt.Errorf("render newsletter: %w", err)
	}

	return Email{Subject: subject, Body: body}, nil
}

func (r *Renderer) render(cacheKey, templateStr string, ctx map[string]interface{}) (string, error) {
	if cached, ok := r.cache.Load(cacheKey); ok {
		tpl := cached.(*liquid.Template)
		return tpl.RenderString(ctx)
	}

	tpl, err := r.engine.ParseString(templateStr)
	if err != nil {
		log.Printf("Renderer: parse error: %v", err)
		return "", err
	}
	r.cache.Store(cacheKey, tpl)

	return tpl.RenderString(ctx)
}
