package subscriber

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ignite/newsletter-dispatch/internal/domain"
)

// Service implements subscription business logic. All public methods are
// safe for concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo Repository
}

// NewService creates a subscriber service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Subscribe validates the address and upserts the subscriber. Re-subscribing
// an unsubscribed address reactivates it and refreshes the name fields.
func (s *Service) Subscribe(ctx context.Context, email, firstName, lastName string) (*domain.Subscriber, error) {
	email = domain.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, ErrMissingName
	}

	sub, err := s.repo.Upsert(ctx, email, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	if err != nil {
		return nil, fmt.Errorf("upsert subscriber: %w", err)
	}
	return sub, nil
}

// Unsubscribe deactivates a subscriber. Returns false when the address was
// not found or was already inactive.
func (s *Service) Unsubscribe(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return false, err
	}
	return s.repo.Deactivate(ctx, email)
}

// History returns the most recent delivery outcomes for one subscriber.
// A non-positive limit defaults to 10.
func (s *Service) History(ctx context.Context, subscriberID string, limit int) ([]domain.EmailOutcome, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.History(ctx, subscriberID, limit)
}

// Stats aggregates the email history table.
func (s *Service) Stats(ctx context.Context) (*domain.EmailStats, error) {
	return s.repo.Stats(ctx)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	// mail.ParseAddress accepts local-only addresses like "user@host";
	// require a dot in the domain the way the public signup form does.
	at := strings.LastIndex(email, "@")
	if at < 0 || !strings.Contains(email[at+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}
