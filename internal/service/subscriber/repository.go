package subscriber

import (
	"context"

	"github.com/ignite/newsletter-dispatch/internal/domain"
)

// OutcomeRecord holds the fields for one email_history row. Product fields
// are nil when the attempt failed before a product was selected.
type OutcomeRecord struct {
	SubscriberID string
	Subject      string
	ProductID    *string
	ProductName  *string
	Status       domain.OutcomeStatus
}

// Repository defines the data access contract for subscribers and their
// delivery outcomes. Implementations must be safe for concurrent use.
type Repository interface {
	// ListActive returns all active subscribers ordered by ID.
	ListActive(ctx context.Context) ([]domain.Subscriber, error)

	// GetByEmail returns one subscriber (active or not).
	// Returns ErrNotFound if no row matches the normalized address.
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)

	// Upsert inserts a subscriber or, if the email already exists,
	// refreshes the name fields and reactivates the row.
	Upsert(ctx context.Context, email, firstName, lastName string) (*domain.Subscriber, error)

	// Deactivate soft-deletes by email. Returns false if no active row
	// matched; the row itself is never removed.
	Deactivate(ctx context.Context, email string) (bool, error)

	// RecordOutcome appends one audit row. It is never an upsert: two
	// identical calls produce two independent rows.
	RecordOutcome(ctx context.Context, rec OutcomeRecord) (*domain.EmailOutcome, error)

	// History returns the most recent outcomes for one subscriber,
	// newest first.
	History(ctx context.Context, subscriberID string, limit int) ([]domain.EmailOutcome, error)

	// Stats aggregates the history table.
	Stats(ctx context.Context) (*domain.EmailStats, error)
}
