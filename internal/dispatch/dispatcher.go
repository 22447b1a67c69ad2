// Package dispatch runs the newsletter batch pipeline: pull active
// subscribers, pick a featured product per recipient, render, deliver,
// and record the outcome. A Scheduler drives runs on a cron cadence.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/ignite/newsletter-dispatch/internal/catalog"
	"github.com/ignite/newsletter-dispatch/internal/config"
	"github.com/ignite/newsletter-dispatch/internal/delivery"
	"github.com/ignite/newsletter-dispatch/internal/domain"
	"github.com/ignite/newsletter-dispatch/internal/pkg/logger"
	"github.com/ignite/newsletter-dispatch/internal/render"
	"github.com/ignite/newsletter-dispatch/internal/service/subscriber"
)

// failedSubject is recorded when a recipient fails before rendering
// produced a subject.
const failedSubject = "Failed"

// Dispatcher orchestrates one batch run over all active subscribers.
// Recipients are processed strictly in sequence; a failure for one
// recipient never aborts the batch.
type Dispatcher struct {
	repo      subscriber.Repository
	catalog   catalog.Client
	renderer  *render.Renderer
	gateway   delivery.Gateway
	fromName  string
	fromEmail string
	intn      func(n int) int
}

// NewDispatcher wires the batch pipeline collaborators together.
func NewDispatcher(repo subscriber.Repository, cat catalog.Client, renderer *render.Renderer, gw delivery.Gateway, cfg config.DispatchConfig) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		catalog:   cat,
		renderer:  renderer,
		gateway:   gw,
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
		intn:      rand.Intn,
	}
}

// RunOnce executes one full dispatch run. It returns an error only when
// the subscriber list cannot be read at all; every per-recipient fault
// is converted into a failed outcome and counted in the summary.
//
// An empty subscriber list yields an all-zero summary and touches
// neither the catalog nor the gateway.
func (d *Dispatcher) RunOnce(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{StartedAt: time.Now()}

	subs, err := d.repo.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("list active subscribers: %w", err)
	}

	summary.TotalRecipients = len(subs)
	if len(subs) == 0 {
		log.Printf("[Dispatcher] No active subscribers, nothing to send")
		return summary, nil
	}

	log.Printf("[Dispatcher] Processing %d subscribers", len(subs))

	for _, sub := range subs {
		d.processRecipient(ctx, sub, &summary)
	}

	log.Printf("[Dispatcher] Run complete: %d sent, %d failed, %d recording failures",
		summary.SuccessCount, summary.FailureCount, summary.RecordingFailures)

	return summary, nil
}

// processRecipient runs the per-recipient pipeline. Catalog, render and
// delivery faults become a failed outcome for this recipient only.
func (d *Dispatcher) processRecipient(ctx context.Context, sub domain.Subscriber, summary *domain.RunSummary) {
	products, err := d.catalog.FetchCatalog(ctx)
	if err != nil {
		log.Printf("[Dispatcher] Catalog unavailable for %s: %v", logger.RedactEmail(sub.Email), err)
		d.recordFailure(ctx, sub, failedSubject, summary)
		return
	}

	// Selection stays in the dispatcher so the pick is testable without
	// the catalog implementation cooperating.
	product := products[d.intn(len(products))]

	email, err := d.renderer.Newsletter(sub, product)
	if err != nil {
		log.Printf("[Dispatcher] Render failed for %s: %v", logger.RedactEmail(sub.Email), err)
		d.recordFailure(ctx, sub, failedSubject, summary)
		return
	}

	_, err = d.gateway.Send(ctx, delivery.Message{
		FromName:  d.fromName,
		FromEmail: d.fromEmail,
		To:        sub.Email,
		Subject:   email.Subject,
		HTMLBody:  email.Body,
	})
	if err != nil {
		log.Printf("[Dispatcher] Delivery failed for %s: %v", logger.RedactEmail(sub.Email), err)
		d.recordFailure(ctx, sub, email.Subject, summary)
		return
	}

	summary.SuccessCount++
	d.record(ctx, subscriber.OutcomeRecord{
		SubscriberID: sub.ID,
		Subject:      email.Subject,
		ProductID:    &product.ID,
		ProductName:  &product.Name,
		Status:       domain.OutcomeSent,
	}, summary)
}

func (d *Dispatcher) recordFailure(ctx context.Context, sub domain.Subscriber, subject string, summary *domain.RunSummary) {
	summary.FailureCount++
	d.record(ctx, subscriber.OutcomeRecord{
		SubscriberID: sub.ID,
		Subject:      subject,
		Status:       domain.OutcomeFailed,
	}, summary)
}

// record appends the outcome row. A write failure is logged and counted
// but never escalated; the audit trail is best-effort.
func (d *Dispatcher) record(ctx context.Context, rec subscriber.OutcomeRecord, summary *domain.RunSummary) {
	if _, err := d.repo.RecordOutcome(ctx, rec); err != nil {
		log.Printf("[Dispatcher] Could not record outcome for subscriber %s: %v", rec.SubscriberID, err)
		summary.RecordingFailures++
	}
}
