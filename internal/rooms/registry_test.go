package rooms_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairpad/coordinator/internal/models"
	"github.com/pairpad/coordinator/internal/rooms"
)

func TestCreateRoom(t *testing.T) {
	coord, _, notifier := newTestCoordinator()
	ctx := context.Background()

	room, err := coord.CreateRoom(ctx, "conn-1", "u1", "User One", "u1.png")
	require.NoError(t, err)

	assert.NotEmpty(t, room.ID)
	assert.Len(t, room.InviteCode, 6)
	assert.Equal(t, strings.ToUpper(room.InviteCode), room.InviteCode)
	assert.Equal(t, "conn-1", room.AdminConnectionID)

	members, err := coord.ListMembers(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "u1", members[0].UserID)
	assert.Equal(t, "conn-1", members[0].ConnectionID)

	assert.True(t, notifier.subscribedTo("conn-1", room.ID))
}

func TestCreateRoom_MissingUserID(t *testing.T) {
	coord, _, _ := newTestCoordinator()

	_, err := coord.CreateRoom(context.Background(), "conn-1", "", "", "")
	assert.ErrorIs(t, err, rooms.ErrInvalidInput)
}

func TestCreateRoom_InviteCodesUnique(t *testing.T) {
	coord, _, _ := newTestCoordinator()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := coord.CreateRoom(ctx, "conn", "user", "", "")
		require.NoError(t, err)
		assert.False(t, seen[room.InviteCode], "invite code %s issued twice", room.InviteCode)
		seen[room.InviteCode] = true
	}
}

func TestFindRoomByInviteCode(t *testing.T) {
	coord, _, _ := newTestCoordinator()
	ctx := context.Background()

	created, err := coord.CreateRoom(ctx, "conn-1", "u1", "", "")
	require.NoError(t, err)

	found, err := coord.FindRoomByInviteCode(ctx, created.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = coord.FindRoomByInviteCode(ctx, "NOPE99")
	assert.ErrorIs(t, err, rooms.ErrRoomNotFound)

	_, err = coord.FindRoomByInviteCode(ctx, "")
	assert.ErrorIs(t, err, rooms.ErrInvalidInput)
}

func TestListMembers_RoomNotFound(t *testing.T) {
	coord, _, _ := newTestCoordinator()

	_, err := coord.ListMembers(context.Background(), "missing")
	assert.ErrorIs(t, err, rooms.ErrRoomNotFound)
}

func TestAppendMember_Idempotent(t *testing.T) {
	coord, _, _ := newTestCoordinator()
	ctx := context.Background()

	room, err := coord.CreateRoom(ctx, "conn-1", "u1", "", "")
	require.NoError(t, err)

	member := models.Member{UserID: "u2", Fullname: "User Two", ConnectionID: "conn-2"}

	updated, err := coord.AppendMember(ctx, room.ID, member)
	require.NoError(t, err)
	assert.Len(t, updated.Members, 2)

	// Appending the same userId again is a no-op.
	updated, err = coord.AppendMember(ctx, room.ID, member)
	require.NoError(t, err)
	assert.Len(t, updated.Members, 2)
}

func TestAppendMember_RoomNotFound(t *testing.T) {
	coord, _, _ := newTestCoordinator()

	_, err := coord.AppendMember(context.Background(), "missing", models.Member{UserID: "u2"})
	assert.ErrorIs(t, err, rooms.ErrRoomNotFound)
}
