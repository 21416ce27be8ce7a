package newsletter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/pixalium/backend/internal/kafka"
)

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) Send(to, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func newTestMailer(t *testing.T) (*Mailer, *patchStore, *fakeSender) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	st := &patchStore{}
	snd := &fakeSender{}
	return &Mailer{Store: st, Redis: rdb, Sender: snd}, st, snd
}

func sendJobMessage(t *testing.T, eventID, issueID, to string) kafkago.Message {
	t.Helper()
	env := Envelope{
		EventID:       eventID,
		EventType:     EventSendRequested,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "pixalium-api",
		CorrelationID: issueID,
		Payload: kafkax.MustMarshal(SendJobPayload{
			IssueID:   issueID,
			Recipient: to,
			Subject:   "Nouveautés",
			Content:   "Voici nos offres.",
		}),
	}
	return kafkago.Message{Key: PartitionKey(issueID), Value: kafkax.MustMarshal(env)}
}

func TestHandleSendJob(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers and counts", func(t *testing.T) {
		m, st, snd := newTestMailer(t)
		msg := sendJobMessage(t, uuid.NewString(), "1756000000000", "a@example.com")
		if err := m.HandleSendJob(ctx, msg); err != nil {
			t.Fatal(err)
		}
		if len(snd.sent) != 1 || snd.sent[0] != "a@example.com" {
			t.Fatalf("sent = %v", snd.sent)
		}
		issue := st.patches[HistoryCollection+"/1756000000000"]
		if issue["sentCount"] != int64(1) {
			t.Errorf("sentCount = %v", issue["sentCount"])
		}
	})

	t.Run("duplicate event id is delivered once", func(t *testing.T) {
		m, _, snd := newTestMailer(t)
		msg := sendJobMessage(t, uuid.NewString(), "1756000000001", "a@example.com")
		if err := m.HandleSendJob(ctx, msg); err != nil {
			t.Fatal(err)
		}
		if err := m.HandleSendJob(ctx, msg); err != nil {
			t.Fatal(err)
		}
		if len(snd.sent) != 1 {
			t.Fatalf("sent %d times, want 1", len(snd.sent))
		}
	})

	t.Run("send failure commits without counting", func(t *testing.T) {
		m, st, snd := newTestMailer(t)
		snd.err = errors.New("smtp unavailable")
		msg := sendJobMessage(t, uuid.NewString(), "1756000000002", "a@example.com")
		if err := m.HandleSendJob(ctx, msg); err != nil {
			t.Fatalf("send failures must not bounce the message, got %v", err)
		}
		if _, ok := st.patches[HistoryCollection+"/1756000000002"]; ok {
			t.Error("failed send should not bump sentCount")
		}
	})

	t.Run("foreign event type is skipped", func(t *testing.T) {
		m, _, snd := newTestMailer(t)
		env := Envelope{EventID: uuid.NewString(), EventType: "SomethingElse"}
		if err := m.HandleSendJob(ctx, kafkago.Message{Value: kafkax.MustMarshal(env)}); err != nil {
			t.Fatal(err)
		}
		if len(snd.sent) != 0 {
			t.Fatalf("sent = %v", snd.sent)
		}
	})

	t.Run("malformed message bounces", func(t *testing.T) {
		m, _, _ := newTestMailer(t)
		if err := m.HandleSendJob(ctx, kafkago.Message{Value: []byte("not json")}); err == nil {
			t.Fatal("expected decode error")
		}
	})
}
