package newsletter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/pixalium/backend/internal/kafka"
	"github.com/pixalium/backend/internal/redisx"
)

// Sender sends one email to one recipient. Satisfied by email.Service.
type Sender interface {
	Send(to, subject, body string) error
}

// Mailer is the consumer-side service: dedup, send, count. Per-recipient
// failures are logged and counted as misses, never retried; the offset is
// committed regardless so one bad address cannot wedge the topic.
type Mailer struct {
	Store  RecordStore
	Redis  *redis.Client
	Sender Sender
}

// HandleSendJob is installed as the consumer handler for TopicSendJobs.
func (m *Mailer) HandleSendJob(ctx context.Context, msg kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return err
	}
	if env.EventType != EventSendRequested {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyMailDedup, env.EventID)
	if seen, _ := redisx.Exists(ctx, m.Redis, dkey); seen {
		return nil
	}
	_ = m.Redis.Set(ctx, dkey, "1", redisx.TTLMailDedup).Err()

	job, err := kafkax.UnwrapPayload[SendJobPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := m.Sender.Send(job.Recipient, job.Subject, job.Content); err != nil {
		log.Error().Err(err).Str("issue", job.IssueID).Str("to", job.Recipient).Msg("newsletter send failed")
		return nil
	}

	m.recordSent(ctx, job.IssueID)
	log.Info().Str("issue", job.IssueID).Str("to", job.Recipient).Msg("newsletter sent")
	return nil
}

// recordSent aggregates per-recipient successes into the issue's sentCount.
// The counter lives in Redis so concurrent workers increment atomically; the
// record patch writes the running total.
func (m *Mailer) recordSent(ctx context.Context, issueID string) {
	key := fmt.Sprintf(redisx.KeyNewsletterSent, issueID)
	n, err := m.Redis.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Str("issue", issueID).Msg("sent counter increment failed")
		return
	}
	_ = m.Redis.Expire(ctx, key, redisx.TTLNewsletterSent).Err()
	if err := m.Store.Patch(ctx, HistoryCollection+"/"+issueID, map[string]any{"sentCount": n}); err != nil {
		log.Warn().Err(err).Str("issue", issueID).Msg("sent count not persisted")
	}
}
