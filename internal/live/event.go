package live

import "time"

const (
	EventConnected    = "connected"
	EventRefresh      = "refresh"
	EventBlockAdded   = "block-added"
	EventBlockUpdated = "block-updated"
	EventBlockDeleted = "block-deleted"
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
)

// Event is a change notification for one lobby. Data is whatever record the
// change produced; clients treat every event as a cue to refetch.
type Event struct {
	Type          string    `json:"type"`
	LobbyCode     string    `json:"lobby_code"`
	Data          any       `json:"data,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"-"`
}

func NewEvent(eventType, lobbyCode string, data any) Event {
	return Event{
		Type:      eventType,
		LobbyCode: lobbyCode,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
