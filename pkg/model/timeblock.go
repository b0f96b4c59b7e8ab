package model

import "time"

const (
	BlockAvailable = "available"
	BlockBusy      = "busy"
)

type TimeBlock struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	LobbyCode string    `json:"lobby_code" bson:"lobby_code" db:"lobby_code"`
	OwnerID   string    `json:"owner_id" bson:"owner_id" db:"owner_id"`
	Start     time.Time `json:"start" bson:"start" db:"start_time"`
	End       time.Time `json:"end" bson:"end" db:"end_time"`
	BlockType string    `json:"block_type" bson:"block_type" db:"block_type"`
	AllDay    bool      `json:"all_day" bson:"all_day" db:"all_day"`
	Title     string    `json:"title,omitempty" bson:"title,omitempty" db:"title"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty" db:"note"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// CreateBlockRequest may carry a client-generated ID so optimistic clients can
// reconcile the stored record with the one they drew.
type CreateBlockRequest struct {
	ID        string    `json:"id" validate:"omitempty,uuid"`
	OwnerID   string    `json:"owner_id" validate:"required,uuid"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required"`
	BlockType string    `json:"block_type" validate:"omitempty,oneof=available busy"`
	AllDay    bool      `json:"all_day"`
	Title     string    `json:"title" validate:"omitempty,max=100"`
	Note      string    `json:"note" validate:"omitempty,max=1000"`
}

// UpdateBlockRequest is a partial update; nil fields are left unchanged.
type UpdateBlockRequest struct {
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	BlockType *string    `json:"block_type,omitempty" validate:"omitempty,oneof=available busy"`
	AllDay    *bool      `json:"all_day,omitempty"`
	Title     *string    `json:"title,omitempty" validate:"omitempty,max=100"`
	Note      *string    `json:"note,omitempty" validate:"omitempty,max=1000"`
}

func (r UpdateBlockRequest) IsEmpty() bool {
	return r.Start == nil && r.End == nil && r.BlockType == nil &&
		r.AllDay == nil && r.Title == nil && r.Note == nil
}
