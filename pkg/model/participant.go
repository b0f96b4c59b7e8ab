package model

import "time"

// Colors is the palette offered to joining participants.
var Colors = []string{
	"#ef4444",
	"#f97316",
	"#eab308",
	"#22c55e",
	"#06b6d4",
	"#3b82f6",
	"#8b5cf6",
	"#ec4899",
}

type Participant struct {
	ID         string    `json:"id" bson:"participant_id" db:"id"`
	LobbyCode  string    `json:"lobby_code" bson:"lobby_code" db:"lobby_code"`
	Name       string    `json:"name" bson:"name" db:"name"`
	Color      string    `json:"color" bson:"color" db:"color"`
	UserCode   string    `json:"user_code" bson:"user_code" db:"user_code"`
	IsActive   bool      `json:"is_active" bson:"is_active" db:"is_active"`
	JoinedAt   time.Time `json:"joined_at" bson:"joined_at" db:"joined_at"`
	LastSeenAt time.Time `json:"last_seen_at" bson:"last_seen_at" db:"last_seen_at"`
}

// JoinRequest creates a participant, or reactivates one when ID is known.
type JoinRequest struct {
	ID    string `json:"id" validate:"omitempty,uuid"`
	Name  string `json:"name" validate:"required,min=1,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type LinkRequest struct {
	UserCode string `json:"user_code" validate:"required,user_code"`
}

type LeaveRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}
