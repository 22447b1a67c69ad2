package domain

import "time"

// OutcomeStatus is the terminal state of one delivery attempt.
type OutcomeStatus string

const (
	OutcomeSent   OutcomeStatus = "sent"
	OutcomeFailed OutcomeStatus = "failed"
)

// EmailOutcome is the durable audit record of one delivery attempt.
//
// The history table is append-only: recording the same outcome twice
// produces two independent rows, unlike the subscriber upsert. Item fields
// are nil for failed attempts (the failure may have happened before a
// product was ever selected).
type EmailOutcome struct {
	ID           string        `json:"id" db:"id"`
	SubscriberID string        `json:"subscriber_id" db:"subscriber_id"`
	Subject      string        `json:"subject" db:"subject"`
	ProductID    *string       `json:"product_id,omitempty" db:"product_id"`
	ProductName  *string       `json:"product_name,omitempty" db:"product_name"`
	SentAt       time.Time     `json:"sent_at" db:"sent_at"`
	Status       OutcomeStatus `json:"status" db:"status"`
}

// RunSummary reports one dispatch run. It is held in memory for logging and
// stats only, never persisted.
//
// SuccessCount+FailureCount always equals TotalRecipients. RecordingFailures
// counts outcome writes that were swallowed because the store was degraded;
// those recipients are still included in the success/failure counts, so the
// audit trail is best-effort while the summary stays authoritative.
type RunSummary struct {
	StartedAt         time.Time `json:"started_at"`
	TotalRecipients   int       `json:"total_recipients"`
	SuccessCount      int       `json:"success_count"`
	FailureCount      int       `json:"failure_count"`
	RecordingFailures int       `json:"recording_failures"`
}

// EmailStats aggregates the history table for the stats endpoint.
type EmailStats struct {
	TotalEmails       int `json:"total_emails"`
	UniqueSubscribers int `json:"unique_subscribers"`
	Successful        int `json:"successful"`
	Failed            int `json:"failed"`
}
