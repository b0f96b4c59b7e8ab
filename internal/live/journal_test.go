package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"huddle/pkg/kafka"
	"huddle/pkg/logger"
)

type mockPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
	block    chan struct{}
	closed   bool
}

func (m *mockPublisher) Publish(_ context.Context, msg kafka.Message) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPublisher) Close() error {
	m.closed = true
	return nil
}

func TestKafkaJournal_WritesKeyedMessages(t *testing.T) {
	publisher := &mockPublisher{}
	journal := NewKafkaJournal(publisher, "huddle-lobbies", 8, time.Second, logger.Discard())

	event := NewEvent(EventBlockDeleted, "ABC234", map[string]string{"id": "b1"})
	event.CorrelationID = "req-1"
	if err := journal.Append(event); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if len(publisher.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(publisher.messages))
	}
	msg := publisher.messages[0]
	if msg.Key != "ABC234" {
		t.Errorf("key = %q, want the lobby code", msg.Key)
	}
	if msg.GetEventType() != EventBlockDeleted || msg.GetCorrelationID() != "req-1" {
		t.Errorf("headers = %v", msg.Headers)
	}
	var decoded Event
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if decoded.Type != EventBlockDeleted || decoded.LobbyCode != "ABC234" {
		t.Errorf("decoded = %+v", decoded)
	}
	if !publisher.closed {
		t.Error("Close() should close the producer")
	}
}

func TestKafkaJournal_FullQueueDoesNotBlock(t *testing.T) {
	publisher := &mockPublisher{block: make(chan struct{})}
	journal := NewKafkaJournal(publisher, "huddle-lobbies", 1, time.Second, logger.Discard())

	var full bool
	for i := 0; i < 4; i++ {
		if err := journal.Append(NewEvent(EventRefresh, "ABC234", nil)); errors.Is(err, ErrJournalFull) {
			full = true
		}
	}
	if !full {
		t.Error("Append() should report a full queue instead of blocking")
	}

	close(publisher.block)
	if err := journal.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := journal.Append(NewEvent(EventRefresh, "ABC234", nil)); !errors.Is(err, ErrJournalClosed) {
		t.Errorf("Append() after Close error = %v, want ErrJournalClosed", err)
	}
}
