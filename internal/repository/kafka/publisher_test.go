package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	communitydomain "coinvest-go/internal/domain/community"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishKeysByCommunity(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &Publisher{writer: writer}

	event := communitydomain.Event{
		Type:        communitydomain.EventOrderExecuted,
		CommunityID: "comm-1",
		ActorID:     "user-1",
		EntityID:    "order-1",
		OccurredAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Data:        map[string]string{"order_type": "buy"},
	}
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "comm-1" {
		t.Fatalf("expected key comm-1, got %q", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(communitydomain.EventOrderExecuted) {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if decoded["type"] != string(communitydomain.EventOrderExecuted) || decoded["entity_id"] != "order-1" {
		t.Fatalf("unexpected payload %v", decoded)
	}
}

func TestPublishReturnsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	publisher := &Publisher{writer: &fakeWriter{err: boom}}

	err := publisher.Publish(context.Background(), communitydomain.Event{Type: communitydomain.EventVoteCast})
	if !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
}

func TestCloseClosesWriter(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &Publisher{writer: writer}
	if err := publisher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !writer.closed {
		t.Fatalf("writer not closed")
	}

	var nilPublisher *Publisher
	if err := nilPublisher.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
