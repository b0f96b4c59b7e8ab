package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"huddle/pkg/kafka"
	"huddle/pkg/logger"
)

var (
	ErrJournalFull   = errors.New("journal queue is full")
	ErrJournalClosed = errors.New("journal is closed")
)

const journalSchemaVersion = "1"

// Journal is a durable secondary sink for lobby events. Append must not block.
type Journal interface {
	Append(event Event) error
	Close() error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaJournal queues events and writes them to Kafka from a single worker,
// keyed by lobby code so each lobby's events stay ordered.
type KafkaJournal struct {
	producer       messagePublisher
	source         string
	publishTimeout time.Duration
	log            *logger.Logger

	mu     sync.RWMutex
	queue  chan Event
	closed bool
	wg     sync.WaitGroup
}

func NewKafkaJournal(producer messagePublisher, source string, queueSize int, publishTimeout time.Duration, log *logger.Logger) *KafkaJournal {
	if queueSize <= 0 {
		queueSize = 256
	}
	j := &KafkaJournal{
		producer:       producer,
		source:         source,
		publishTimeout: publishTimeout,
		log:            log,
		queue:          make(chan Event, queueSize),
	}

	j.wg.Add(1)
	go j.run()

	return j
}

func (j *KafkaJournal) Append(event Event) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return ErrJournalClosed
	}
	select {
	case j.queue <- event:
		return nil
	default:
		return ErrJournalFull
	}
}

func (j *KafkaJournal) run() {
	defer j.wg.Done()

	for event := range j.queue {
		j.write(event)
	}
}

func (j *KafkaJournal) write(event Event) {
	msg, err := kafka.NewMessage().
		WithKey(event.LobbyCode).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(event.CorrelationID).
		WithSchemaVersion(journalSchemaVersion).
		WithSource(j.source).
		WithTimestamp(event.Timestamp).
		Build()
	if err != nil {
		j.log.Error("Failed to encode lobby event", "event_type", event.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.publishTimeout)
	defer cancel()

	// failures are logged by the producer middleware
	_ = j.producer.Publish(ctx, msg)
}

// Close stops accepting events, drains the queue and closes the producer.
func (j *KafkaJournal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()

	j.wg.Wait()
	return j.producer.Close()
}
