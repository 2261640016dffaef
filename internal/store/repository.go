// Package store implements the rooms.Repository on Redis.
//
// Key layout:
//
//	rooms:<roomId>        hash  {admin, roomId, inviteCode, members}
//	waitingRooms:<roomId> list  of JSON waiting entries
//
// members is a JSON array inside the hash so the whole roster is replaced in
// one HSET. Redis gives per-key atomicity only; the Coordinator's per-room
// locks provide the cross-key ordering.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/internal/models"
	"github.com/pairpad/coordinator/internal/rooms"
)

const (
	roomKeyPrefix    = "rooms:"
	waitingKeyPrefix = "waitingRooms:"

	// Rooms are ephemeral sessions; let abandoned ones expire.
	roomTTL = 24 * time.Hour
)

type Repository struct {
	rdb *redis.Client
}

var _ rooms.Repository = (*Repository)(nil)

func NewRepository(rdb *redis.Client) *Repository {
	return &Repository{rdb: rdb}
}

func roomKey(roomID string) string    { return roomKeyPrefix + roomID }
func waitingKey(roomID string) string { return waitingKeyPrefix + roomID }

func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	membersData, err := json.Marshal(room.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}

	key := roomKey(room.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"admin":      room.AdminConnectionID,
		"roomId":     room.ID,
		"inviteCode": room.InviteCode,
		"members":    string(membersData),
	})
	pipe.Expire(ctx, key, roomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save room %s: %w", room.ID, err)
	}
	return nil
}

func (r *Repository) RoomExists(ctx context.Context, roomID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, roomKey(roomID)).Result()
	if err != nil {
		return false, fmt.Errorf("room exists %s: %w", roomID, err)
	}
	return n > 0, nil
}

func (r *Repository) RoomByID(ctx context.Context, roomID string) (*models.Room, error) {
	fields, err := r.rdb.HGetAll(ctx, roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomID, err)
	}
	if len(fields) == 0 {
		return nil, rooms.ErrRoomNotFound
	}
	return roomFromHash(roomID, fields)
}

// RoomByInviteCode scans every room key and compares invite codes. O(n) in
// live rooms, which is fine at this scale; a code->id index would remove the
// scan if it ever matters.
func (r *Repository) RoomByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	iter := r.rdb.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		got, err := r.rdb.HGet(ctx, key, "inviteCode").Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan invite codes: %w", err)
		}
		if got == code {
			return r.RoomByID(ctx, strings.TrimPrefix(key, roomKeyPrefix))
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan rooms: %w", err)
	}
	return nil, rooms.ErrRoomNotFound
}

func (r *Repository) Rooms(ctx context.Context) ([]*models.Room, error) {
	var out []*models.Room
	iter := r.rdb.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		roomID := strings.TrimPrefix(iter.Val(), roomKeyPrefix)
		room, err := r.RoomByID(ctx, roomID)
		if errors.Is(err, rooms.ErrRoomNotFound) {
			// Expired between scan and read.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan rooms: %w", err)
	}
	return out, nil
}

func (r *Repository) SetMembers(ctx context.Context, roomID string, members []models.Member) error {
	exists, err := r.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return rooms.ErrRoomNotFound
	}

	data, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	if err := r.rdb.HSet(ctx, roomKey(roomID), "members", string(data)).Err(); err != nil {
		return fmt.Errorf("set members %s: %w", roomID, err)
	}
	return nil
}

func (r *Repository) DeleteRoom(ctx context.Context, roomID string) error {
	if err := r.rdb.Del(ctx, roomKey(roomID), waitingKey(roomID)).Err(); err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	return nil
}

func (r *Repository) WaitingList(ctx context.Context, roomID string) ([]models.WaitingEntry, error) {
	raw, err := r.rdb.LRange(ctx, waitingKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("waiting list %s: %w", roomID, err)
	}
	entries := make([]models.WaitingEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.WaitingEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// Skip corrupted entries rather than failing the whole list.
			logrus.WithError(err).WithField("room_id", roomID).Warn("Corrupted waiting entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Repository) AppendWaiting(ctx context.Context, roomID string, entry models.WaitingEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal waiting entry: %w", err)
	}
	key := waitingKey(roomID)
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.Expire(ctx, key, roomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append waiting %s: %w", roomID, err)
	}
	return nil
}

func (r *Repository) RemoveWaiting(ctx context.Context, roomID string, entry models.WaitingEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal waiting entry: %w", err)
	}
	removed, err := r.rdb.LRem(ctx, waitingKey(roomID), 0, string(data)).Result()
	if err != nil {
		return fmt.Errorf("remove waiting %s: %w", roomID, err)
	}
	if removed == 0 {
		return rooms.ErrWaitingNotFound
	}
	return nil
}

// ReplaceWaiting removes the old entry and appends the updated one. The
// entry's position in the list changes, but waiting-list order is not an
// invariant anyone relies on.
func (r *Repository) ReplaceWaiting(ctx context.Context, roomID string, old, updated models.WaitingEntry) error {
	oldData, err := json.Marshal(old)
	if err != nil {
		return fmt.Errorf("marshal waiting entry: %w", err)
	}
	newData, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("marshal waiting entry: %w", err)
	}

	key := waitingKey(roomID)
	pipe := r.rdb.TxPipeline()
	rem := pipe.LRem(ctx, key, 0, string(oldData))
	pipe.RPush(ctx, key, string(newData))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace waiting %s: %w", roomID, err)
	}
	if rem.Val() == 0 {
		// The old entry vanished under us; drop the duplicate we pushed.
		_ = r.rdb.LRem(ctx, key, 0, string(newData))
		return rooms.ErrWaitingNotFound
	}
	return nil
}

func roomFromHash(roomID string, fields map[string]string) (*models.Room, error) {
	room := &models.Room{
		ID:                roomID,
		InviteCode:        fields["inviteCode"],
		AdminConnectionID: fields["admin"],
		Members:           []models.Member{},
	}
	if raw := fields["members"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &room.Members); err != nil {
			return nil, fmt.Errorf("unmarshal members for %s: %w", roomID, err)
		}
	}
	return room, nil
}
