package errors

import "errors"

var (
	ErrLobbyNotFound = errors.New("lobby not found")

	ErrParticipantNotFound = errors.New("participant not found")

	ErrBlockNotFound = errors.New("time block not found")

	ErrCodeTaken = errors.New("lobby code already in use")

	ErrUserCodeTaken = errors.New("user code already in use")

	ErrBlockExists = errors.New("time block id already in use")
)
