package live

import (
	"errors"
	"sync"

	"huddle/pkg/logger"
)

var ErrBrokerClosed = errors.New("broker is closed")

// Subscriber receives a lobby's events on a buffered channel. The channel is
// closed when the subscriber is removed for any reason.
type Subscriber struct {
	lobbyCode string
	events    chan Event
}

func (s *Subscriber) Events() <-chan Event {
	return s.events
}

func (s *Subscriber) LobbyCode() string {
	return s.lobbyCode
}

// Broker fans lobby events out to in-process subscribers. Publish never blocks:
// a subscriber that has fallen a full buffer behind is dropped.
type Broker struct {
	mu      sync.RWMutex
	lobbies map[string]map[*Subscriber]struct{}
	buffer  int
	closed  bool
	journal Journal
	log     *logger.Logger
}

type Option func(*Broker)

// WithJournal mirrors every published event to j.
func WithJournal(j Journal) Option {
	return func(b *Broker) {
		b.journal = j
	}
}

func NewBroker(buffer int, log *logger.Logger, opts ...Option) *Broker {
	if buffer <= 0 {
		buffer = 1
	}
	b := &Broker{
		lobbies: make(map[string]map[*Subscriber]struct{}),
		buffer:  buffer,
		log:     log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Broker) Subscribe(lobbyCode string) (*Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrokerClosed
	}

	sub := &Subscriber{
		lobbyCode: lobbyCode,
		events:    make(chan Event, b.buffer),
	}
	subs, ok := b.lobbies[lobbyCode]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		b.lobbies[lobbyCode] = subs
	}
	subs[sub] = struct{}{}

	return sub, nil
}

// Unsubscribe removes sub and closes its channel. Removing a subscriber that
// is already gone is a no-op.
func (b *Broker) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(sub)
}

func (b *Broker) removeLocked(sub *Subscriber) {
	subs, ok := b.lobbies[sub.lobbyCode]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.events)
	if len(subs) == 0 {
		delete(b.lobbies, sub.lobbyCode)
	}
}

// Publish delivers event to every subscriber of lobbyCode and returns how many
// received it.
func (b *Broker) Publish(lobbyCode string, event Event) int {
	event.LobbyCode = lobbyCode

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0
	}

	delivered := 0
	var dropped []*Subscriber
	for sub := range b.lobbies[lobbyCode] {
		select {
		case sub.events <- event:
			delivered++
		default:
			dropped = append(dropped, sub)
		}
	}
	for _, sub := range dropped {
		b.removeLocked(sub)
	}
	b.mu.Unlock()

	if len(dropped) > 0 {
		b.log.Warn("Dropped slow subscribers",
			"lobby_code", lobbyCode,
			"event_type", event.Type,
			"dropped", len(dropped),
		)
	}

	if b.journal != nil {
		if err := b.journal.Append(event); err != nil {
			b.log.Warn("Failed to journal lobby event",
				"lobby_code", lobbyCode,
				"event_type", event.Type,
				"error", err,
			)
		}
	}

	return delivered
}

func (b *Broker) SubscriberCount(lobbyCode string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lobbies[lobbyCode])
}

// Close ends every subscription, then flushes and closes the journal.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, subs := range b.lobbies {
		for sub := range subs {
			close(sub.events)
		}
	}
	b.lobbies = make(map[string]map[*Subscriber]struct{})
	b.mu.Unlock()

	if b.journal != nil {
		return b.journal.Close()
	}
	return nil
}
