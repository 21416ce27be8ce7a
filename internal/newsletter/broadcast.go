package newsletter

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/pixalium/backend/internal/kafka"
)

// Producer is satisfied by kafkax.Producer.
type Producer interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// RecordStore is the slice of the record store broadcasting needs.
type RecordStore interface {
	Patch(ctx context.Context, path string, fields map[string]any) error
}

var ErrNothingToSend = errors.New("missing subject, content or recipients")

type Broadcaster struct {
	Store    RecordStore
	Producer Producer
	Service  string
}

// Broadcast records the issue under newsletter_history and enqueues one send
// job per subscriber. No batching: each recipient is a separate job whose
// outcome is tracked independently by the mailer.
func (b *Broadcaster) Broadcast(ctx context.Context, subject, content string, recipients []string) (string, error) {
	if subject == "" || content == "" || len(recipients) == 0 {
		return "", ErrNothingToSend
	}

	issueID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	err := b.Store.Patch(ctx, HistoryCollection+"/"+issueID, map[string]any{
		"subject":         subject,
		"content":         content,
		"sentAt":          time.Now().UTC(),
		"recipientsCount": len(recipients),
		"sentCount":       0,
	})
	if err != nil {
		return "", err
	}

	for _, to := range recipients {
		ev := Envelope{
			EventID:       uuid.NewString(),
			EventType:     EventSendRequested,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      b.Service,
			CorrelationID: issueID,
			Payload: kafkax.MustMarshal(SendJobPayload{
				IssueID:   issueID,
				Recipient: to,
				Subject:   subject,
				Content:   content,
			}),
		}
		b.Producer.Publish(PartitionKey(issueID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(EventSendRequested)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	log.Info().Str("issue", issueID).Int("recipients", len(recipients)).Msg("newsletter broadcast queued")
	return issueID, nil
}
