package domain

import "fmt"

// Money is the fixed-point price representation used by the product catalog.
// One unit equals 10^9 nanos.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Units        int64  `json:"units"`
	Nanos        int32  `json:"nanos"`
}

// Format renders the price for display as e.g. "USD $8.99".
// The fractional part is truncated to two digits, never rounded: a catalog
// price of 8 units / 990000000 nanos is exactly $8.99, and 8 units /
// 999999999 nanos is still $8.99.
func (m Money) Format() string {
	cents := m.Nanos / 10000000
	return fmt.Sprintf("%s $%d.%02d", m.CurrencyCode, m.Units, cents)
}

// Product is a promotable catalog item. Products are sourced from the
// catalog per dispatch attempt and never persisted; only the ID and name
// survive into the outcome record of a successful send.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Picture     string   `json:"picture"`
	Price       Money    `json:"price_usd"`
	Categories  []string `json:"categories"`
}
