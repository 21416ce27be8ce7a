// Package newsletter turns one admin broadcast into per-recipient send jobs
// and tracks delivery counts on the issue record.
package newsletter

import (
	"encoding/json"
	"time"
)

const (
	TopicSendJobs = "newsletter.send"

	EventSendRequested = "NewsletterSendRequested"
)

const HistoryCollection = "newsletter_history"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // issue id
	Payload       json.RawMessage `json:"payload"`
}

// SendJobPayload is one email to one subscriber. Recipients are independent:
// a failure for one never affects the others.
type SendJobPayload struct {
	IssueID   string `json:"issue_id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
}

// Issue is the persisted newsletter_history record.
type Issue struct {
	ID              string    `json:"id,omitempty"`
	Subject         string    `json:"subject"`
	Content         string    `json:"content"`
	SentAt          time.Time `json:"sentAt"`
	RecipientsCount int       `json:"recipientsCount"`
	SentCount       int       `json:"sentCount"`
}

// PartitionKey groups all jobs of one issue on a single partition.
func PartitionKey(issueID string) []byte { return []byte(issueID) }
