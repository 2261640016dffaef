package rooms

import "errors"

// Domain errors. The event-channel dispatcher maps these to client-facing
// messages; anything not listed here is treated as an internal fault and
// hidden behind a generic message.
var (
	ErrRoomNotFound    = errors.New("rooms: room not found")
	ErrRoomExists      = errors.New("rooms: room already exists")
	ErrAlreadyWaiting  = errors.New("rooms: user already in waiting room")
	ErrAlreadyMember   = errors.New("rooms: user already a member")
	ErrNotAdmin        = errors.New("rooms: connection is not the room admin")
	ErrWaitingNotFound = errors.New("rooms: waiting entry not found")
	ErrNotAccepted     = errors.New("rooms: join request not accepted")
	ErrInvalidInput    = errors.New("rooms: invalid input")
)
