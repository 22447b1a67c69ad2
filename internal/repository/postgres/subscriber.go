// Package postgres implements the subscriber.Repository contract against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/newsletter-dispatch/internal/domain"
	"github.com/ignite/newsletter-dispatch/internal/service/subscriber"
)

// SubscriberRepo implements subscriber.Repository against PostgreSQL.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

// EnsureSchema creates the subscribers and email_history tables if they do
// not exist. Called once at startup, before the scheduler is wired up.
func (r *SubscriberRepo) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS subscribers (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS email_history (
			id UUID PRIMARY KEY,
			subscriber_id UUID NOT NULL REFERENCES subscribers(id),
			subject VARCHAR(500) NOT NULL,
			product_id VARCHAR(255),
			product_name VARCHAR(255),
			sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status VARCHAR(50) NOT NULL DEFAULT 'sent'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_email_history_subscriber
			ON email_history (subscriber_id, sent_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *SubscriberRepo) ListActive(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, first_name, last_name, is_active, subscribed_at
		FROM subscribers
		WHERE is_active = true
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.FirstName, &s.LastName, &s.IsActive, &s.SubscribedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	s := &domain.Subscriber{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, is_active, subscribed_at
		FROM subscribers
		WHERE email = $1
	`, domain.NormalizeEmail(email)).Scan(
		&s.ID, &s.Email, &s.FirstName, &s.LastName, &s.IsActive, &s.SubscribedAt,
	)
	if err == sql.ErrNoRows {
		return nil, subscriber.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return s, nil
}

func (r *SubscriberRepo) Upsert(ctx context.Context, email, firstName, lastName string) (*domain.Subscriber, error) {
	s := &domain.Subscriber{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (id, email, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    is_active = true
		RETURNING id, email, first_name, last_name, is_active, subscribed_at
	`, uuid.New().String(), domain.NormalizeEmail(email), firstName, lastName).Scan(
		&s.ID, &s.Email, &s.FirstName, &s.LastName, &s.IsActive, &s.SubscribedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscriber: %w", err)
	}
	return s, nil
}

func (r *SubscriberRepo) Deactivate(ctx context.Context, email string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscribers SET is_active = false
		WHERE email = $1 AND is_active = true
	`, domain.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("deactivate subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate subscriber: %w", err)
	}
	return n > 0, nil
}

func (r *SubscriberRepo) RecordOutcome(ctx context.Context, rec subscriber.OutcomeRecord) (*domain.EmailOutcome, error) {
	o := &domain.EmailOutcome{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO email_history (id, subscriber_id, subject, product_id, product_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, subscriber_id, subject, product_id, product_name, sent_at, status
	`, uuid.New().String(), rec.SubscriberID, rec.Subject, rec.ProductID, rec.ProductName, rec.Status).Scan(
		&o.ID, &o.SubscriberID, &o.Subject, &o.ProductID, &o.ProductName, &o.SentAt, &o.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}
	return o, nil
}

func (r *SubscriberRepo) History(ctx context.Context, subscriberID string, limit int) ([]domain.EmailOutcome, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subscriber_id, subject, product_id, product_name, sent_at, status
		FROM email_history
		WHERE subscriber_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`, subscriberID, limit)
	if err != nil {
		return nil, fmt.Errorf("email history: %w", err)
	}
	defer rows.Close()

	var out []domain.EmailOutcome
	for rows.Next() {
		var o domain.EmailOutcome
		if err := rows.Scan(&o.ID, &o.SubscriberID, &o.Subject, &o.ProductID, &o.ProductName, &o.SentAt, &o.Status); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SubscriberRepo) Stats(ctx context.Context) (*domain.EmailStats, error) {
	stats := &domain.EmailStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT subscriber_id),
		       COUNT(CASE WHEN status = 'sent' THEN 1 END),
		       COUNT(CASE WHEN status = 'failed' THEN 1 END)
		FROM email_history
	`).Scan(&stats.TotalEmails, &stats.UniqueSubscribers, &stats.Successful, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("email stats: %w", err)
	}
	return stats, nil
}
