package rooms

import (
	"context"

	"github.com/pairpad/coordinator/internal/models"
)

// Repository is the shared state store for rooms and waiting lists. The Redis
// implementation lives in internal/store; tests use an in-memory fake.
//
// Each method is an atomic single-key operation. Sequences that span the room
// hash and the waiting list (accept, finalize, reject) are not atomic at this
// layer; the Coordinator serializes them per room.
type Repository interface {
	// SaveRoom creates or overwrites the room record.
	SaveRoom(ctx context.Context, room *models.Room) error
	// RoomExists reports whether a room record exists for roomID.
	RoomExists(ctx context.Context, roomID string) (bool, error)
	// RoomByID returns ErrRoomNotFound if the record is absent.
	RoomByID(ctx context.Context, roomID string) (*models.Room, error)
	// RoomByInviteCode scans all live rooms for a matching invite code and
	// returns ErrRoomNotFound on no match. Linear in the number of rooms.
	RoomByInviteCode(ctx context.Context, code string) (*models.Room, error)
	// Rooms returns every live room record.
	Rooms(ctx context.Context) ([]*models.Room, error)
	// SetMembers replaces the room's roster. ErrRoomNotFound if absent.
	SetMembers(ctx context.Context, roomID string, members []models.Member) error
	// DeleteRoom removes the room record and its waiting list.
	DeleteRoom(ctx context.Context, roomID string) error

	// WaitingList returns the room's pending entries in request order.
	WaitingList(ctx context.Context, roomID string) ([]models.WaitingEntry, error)
	// AppendWaiting adds an entry to the end of the waiting list.
	AppendWaiting(ctx context.Context, roomID string, entry models.WaitingEntry) error
	// RemoveWaiting deletes an exact entry; ErrWaitingNotFound if absent.
	RemoveWaiting(ctx context.Context, roomID string, entry models.WaitingEntry) error
	// ReplaceWaiting swaps an exact entry for an updated one.
	ReplaceWaiting(ctx context.Context, roomID string, old, updated models.WaitingEntry) error
}
