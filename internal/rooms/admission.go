package rooms

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/internal/models"
)

// The admission flow per (room, userId) pair:
//
//	NONE -> WAITING -> accepted -> MEMBER
//	              \-> rejected -> NONE
//
// Accept marks the waiting entry; the requester then finalizes with a
// JOIN_ROOM request, which is the point where it actually subscribes to the
// room group and lands on the roster. Splitting accept from finalize lets the
// joining client decide when it starts receiving room traffic.
//
// All mutations for one room run under that room's lock, and state is re-read
// from the store inside the critical section. In-memory snapshots are never
// trusted for authorization or membership decisions.

// RequestJoin puts a user on a room's waiting list and notifies the admin.
func (c *Coordinator) RequestJoin(ctx context.Context, connectionID string, p models.RequestJoinPayload) error {
	if p.InviteCode == "" || p.UserID == "" {
		return ErrInvalidInput
	}

	room, err := c.repo.RoomByInviteCode(ctx, p.InviteCode)
	if err != nil {
		return err
	}

	lock := c.roomLock(room.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read now that we hold the lock; the scan above was unserialized.
	room, err = c.repo.RoomByID(ctx, room.ID)
	if err != nil {
		return err
	}

	waiting, err := c.repo.WaitingList(ctx, room.ID)
	if err != nil {
		return err
	}
	for _, entry := range waiting {
		if entry.UserID == p.UserID {
			return ErrAlreadyWaiting
		}
	}
	if room.HasMember(p.UserID) {
		return ErrAlreadyMember
	}

	entry := models.WaitingEntry{
		ConnectionID: connectionID,
		UserID:       p.UserID,
		Fullname:     p.Fullname,
		ProfileImg:   p.ProfileImg,
	}
	if err := c.repo.AppendWaiting(ctx, room.ID, entry); err != nil {
		return err
	}

	waiting = append(waiting, entry)
	c.notifier.SendToConnection(room.AdminConnectionID, models.ServerMessage{
		Type: models.EventSendJoinRequest,
		Payload: models.JoinRequestNotice{
			UserID:      p.UserID,
			Fullname:    p.Fullname,
			ProfileImg:  p.ProfileImg,
			RoomID:      room.ID,
			WaitingRoom: waiting,
		},
	})

	logrus.WithFields(logrus.Fields{
		"room_id": room.ID,
		"user_id": p.UserID,
	}).Info("Join requested")

	return nil
}

// AcceptJoin marks a waiting entry accepted and tells the requester to
// finalize. Only the room admin's connection may call this.
func (c *Coordinator) AcceptJoin(ctx context.Context, actingConnectionID, userID, roomID string) error {
	if userID == "" || roomID == "" {
		return ErrInvalidInput
	}

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, entry, err := c.waitingEntry(ctx, actingConnectionID, userID, roomID)
	if err != nil {
		return err
	}

	if !entry.Accepted {
		accepted := entry
		accepted.Accepted = true
		if err := c.repo.ReplaceWaiting(ctx, roomID, entry, accepted); err != nil {
			return err
		}
	}

	c.notifier.SendToConnection(entry.ConnectionID, models.ServerMessage{
		Type: models.EventJoinRequestResult,
		Payload: models.JoinRequestResult{
			JoinRequestAccepted: true,
			UserID:              entry.UserID,
			RoomID:              room.ID,
		},
	})

	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"user_id": userID,
	}).Info("Join request accepted")

	return nil
}

// RejectJoin discards a waiting entry and informs the requester. Only the
// room admin's connection may call this.
func (c *Coordinator) RejectJoin(ctx context.Context, actingConnectionID, userID, roomID string) error {
	if userID == "" || roomID == "" {
		return ErrInvalidInput
	}

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	_, entry, err := c.waitingEntry(ctx, actingConnectionID, userID, roomID)
	if err != nil {
		return err
	}

	if err := c.repo.RemoveWaiting(ctx, roomID, entry); err != nil {
		return err
	}

	c.notifier.SendToConnection(entry.ConnectionID, models.ServerMessage{
		Type:    models.EventJoinRequestResult,
		Payload: models.JoinRequestResult{JoinRequestAccepted: false},
	})

	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"user_id": userID,
	}).Info("Join request rejected")

	return nil
}

// FinalizeJoin moves an accepted waiting entry onto the roster, subscribes
// the requester's connection to the room group, and pushes the refreshed
// roster to everyone in the room.
func (c *Coordinator) FinalizeJoin(ctx context.Context, connectionID, userID, roomID string) (*models.Room, error) {
	if userID == "" || roomID == "" {
		return nil, ErrInvalidInput
	}

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.repo.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HasMember(userID) {
		return nil, ErrAlreadyMember
	}

	entry, err := c.findWaiting(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !entry.Accepted {
		return nil, ErrNotAccepted
	}

	// The finalizing connection may differ from the one that requested the
	// join (reconnects); always record the current one.
	member := models.Member{
		UserID:       entry.UserID,
		Fullname:     entry.Fullname,
		ProfileImg:   entry.ProfileImg,
		ConnectionID: connectionID,
	}
	room.Members = append(room.Members, member)
	if err := c.repo.SetMembers(ctx, roomID, room.Members); err != nil {
		return nil, err
	}
	if err := c.repo.RemoveWaiting(ctx, roomID, entry); err != nil {
		return nil, err
	}

	c.notifier.Subscribe(connectionID, roomID)
	c.notifier.SendToRoom(roomID, models.ServerMessage{
		Type: models.EventUpdatedRoomMembers,
		Payload: models.UpdatedRoomMembers{
			Message:     "Updated room members successfully",
			RoomMembers: room.Members,
		},
	})

	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"user_id": userID,
	}).Info("Member joined room")

	return room, nil
}

// GetMembers is the read-only roster projection.
func (c *Coordinator) GetMembers(ctx context.Context, roomID string) ([]models.Member, error) {
	return c.ListMembers(ctx, roomID)
}

// HandleDisconnect removes the dropped connection's membership and any
// pending waiting entries, and pushes the refreshed roster to the rooms it
// left. Runs under the same per-room locks as every other mutation.
func (c *Coordinator) HandleDisconnect(ctx context.Context, connectionID string) {
	all, err := c.repo.Rooms(ctx)
	if err != nil {
		logrus.WithError(err).Error("Disconnect sweep failed to list rooms")
		return
	}

	for _, snapshot := range all {
		c.dropConnection(ctx, snapshot.ID, connectionID)
	}
}

func (c *Coordinator) dropConnection(ctx context.Context, roomID, connectionID string) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.repo.RoomByID(ctx, roomID)
	if err != nil {
		return
	}

	changed := false
	members := room.Members[:0:0]
	for _, m := range room.Members {
		if m.ConnectionID == connectionID {
			changed = true
			continue
		}
		members = append(members, m)
	}
	if changed {
		if err := c.repo.SetMembers(ctx, roomID, members); err != nil {
			logrus.WithError(err).WithField("room_id", roomID).Error("Failed to remove disconnected member")
			return
		}
		room.Members = members
	}

	waiting, err := c.repo.WaitingList(ctx, roomID)
	if err == nil {
		for _, entry := range waiting {
			if entry.ConnectionID == connectionID {
				if err := c.repo.RemoveWaiting(ctx, roomID, entry); err != nil {
					logrus.WithError(err).WithField("room_id", roomID).Warn("Failed to drop waiting entry on disconnect")
				}
			}
		}
	}

	c.notifier.Unsubscribe(connectionID, roomID)

	// Tear down the room once the last member is gone, like any other
	// abandoned session.
	if changed && len(room.Members) == 0 {
		if err := c.repo.DeleteRoom(ctx, roomID); err != nil {
			logrus.WithError(err).WithField("room_id", roomID).Warn("Failed to delete empty room")
			return
		}
		logrus.WithField("room_id", roomID).Info("Removed empty room")
		return
	}

	if changed {
		c.notifier.SendToRoom(roomID, models.ServerMessage{
			Type: models.EventUpdatedRoomMembers,
			Payload: models.UpdatedRoomMembers{
				Message:     "Updated room members successfully",
				RoomMembers: room.Members,
			},
		})
		logrus.WithFields(logrus.Fields{
			"room_id":       roomID,
			"connection_id": connectionID,
		}).Info("Removed disconnected member")
	}
}

// waitingEntry runs the shared accept/reject guard chain: room exists, caller
// is admin, target is not already a member, and a waiting entry exists.
// Caller must hold the room lock.
func (c *Coordinator) waitingEntry(ctx context.Context, actingConnectionID, userID, roomID string) (*models.Room, models.WaitingEntry, error) {
	room, err := c.repo.RoomByID(ctx, roomID)
	if err != nil {
		return nil, models.WaitingEntry{}, err
	}
	if room.AdminConnectionID != actingConnectionID {
		return nil, models.WaitingEntry{}, ErrNotAdmin
	}
	if room.HasMember(userID) {
		return nil, models.WaitingEntry{}, ErrAlreadyMember
	}
	entry, err := c.findWaiting(ctx, roomID, userID)
	if err != nil {
		return nil, models.WaitingEntry{}, err
	}
	return room, entry, nil
}

func (c *Coordinator) findWaiting(ctx context.Context, roomID, userID string) (models.WaitingEntry, error) {
	waiting, err := c.repo.WaitingList(ctx, roomID)
	if err != nil {
		return models.WaitingEntry{}, err
	}
	for _, entry := range waiting {
		if entry.UserID == userID {
			return entry, nil
		}
	}
	return models.WaitingEntry{}, ErrWaitingNotFound
}
