package domain

import (
	"strings"
	"time"
)

// Subscriber represents a single newsletter recipient.
//
// Subscribers are never physically deleted. Unsubscribing flips IsActive to
// false; re-subscribing through the upsert path reactivates the existing row
// and refreshes the name fields.
type Subscriber struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}

// FullName returns the display name used in newsletter greetings.
func (s Subscriber) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// NormalizeEmail lower-cases and trims an address. Every read and write of
// the subscribers table goes through this so the unique email constraint
// behaves case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
