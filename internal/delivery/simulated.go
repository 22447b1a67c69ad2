package delivery

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/newsletter-dispatch/internal/config"
	"github.com/ignite/newsletter-dispatch/internal/pkg/logger"
)

// SimulatedGateway mimics a mail provider for local development. It
// sleeps for a configured latency and fails a configured fraction of
// sends so the error path gets exercised.
type SimulatedGateway struct {
	latency     time.Duration
	failureRate float64
	randFloat   func() float64
}

// NewSimulatedGateway creates a simulated gateway from config.
func NewSimulatedGateway(cfg config.SimulatedConfig) *SimulatedGateway {
	return &SimulatedGateway{
		latency:     time.Duration(cfg.LatencyMS) * time.Millisecond,
		failureRate: cfg.FailureRate,
		randFloat:   rand.Float64,
	}
}

// Send pretends to deliver the message. The context is respected while
// waiting out the simulated latency.
func (g *SimulatedGateway) Send(ctx context.Context, msg Message) (Result, error) {
	if g.latency > 0 {
		select {
		case <-time.After(g.latency):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	if g.randFloat() < g.failureRate {
		log.Printf("[Simulated] Delivery failed for %s", logger.RedactEmail(msg.To))
		return Result{}, ErrDeliveryFailed
	}

	id := uuid.New().String()
	log.Printf("[Simulated] Sent to %s (id: %s)", logger.RedactEmail(msg.To), id)

	return Result{MessageID: id}, nil
}
