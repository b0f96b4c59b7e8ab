package model

import "time"

type Lobby struct {
	Code      string    `json:"code" bson:"_id" db:"code"`
	Name      string    `json:"name" bson:"name" db:"name"`
	TimeZone  string    `json:"time_zone" bson:"time_zone" db:"time_zone"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

type CreateLobbyRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	TimeZone string `json:"time_zone" validate:"omitempty,timezone"`
}

// LobbySnapshot is everything a client needs to render a lobby. Participants
// holds active members only; TimeBlocks is ordered by start.
type LobbySnapshot struct {
	Lobby        Lobby         `json:"lobby"`
	Participants []Participant `json:"participants"`
	TimeBlocks   []TimeBlock   `json:"time_blocks"`
}
