// Package delivery abstracts the outbound email gateway. The dispatch
// pipeline hands a rendered message to a Gateway and only cares whether
// it was accepted.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/newsletter-dispatch/internal/config"
)

// ErrDeliveryFailed is returned when the gateway could not hand the
// message off. Callers treat it as a per-recipient failure, never as a
// batch-fatal condition.
var ErrDeliveryFailed = errors.New("email delivery failed")

// Message is a fully rendered email ready for the wire.
type Message struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	HTMLBody  string
}

// Result reports what the gateway did with a message.
type Result struct {
	MessageID string
}

// Gateway delivers a single email. Implementations must be safe for
// concurrent use.
type Gateway interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// FromConfig builds the gateway named by the delivery config.
func FromConfig(cfg config.DeliveryConfig) (Gateway, error) {
	switch cfg.Gateway {
	case "simulated", "":
		return NewSimulatedGateway(cfg.Simulated), nil
	case "ses":
		return NewSESGateway(cfg.SES)
	default:
		return nil, fmt.Errorf("unknown delivery gateway %q", cfg.Gateway)
	}
}
