package rooms_test

import (
	"context"
	"sync"

	"github.com/pairpad/coordinator/internal/models"
	"github.com/pairpad/coordinator/internal/rooms"
)

// memRepo is an in-memory rooms.Repository with the same per-call semantics
// as the Redis implementation.
type memRepo struct {
	mu      sync.Mutex
	rooms   map[string]*models.Room
	waiting map[string][]models.WaitingEntry
}

func newMemRepo() *memRepo {
	return &memRepo{
		rooms:   make(map[string]*models.Room),
		waiting: make(map[string][]models.WaitingEntry),
	}
}

func copyRoom(room *models.Room) *models.Room {
	dup := *room
	dup.Members = append([]models.Member{}, room.Members...)
	return &dup
}

func (r *memRepo) SaveRoom(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = copyRoom(room)
	return nil
}

func (r *memRepo) RoomExists(_ context.Context, roomID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[roomID]
	return ok, nil
}

func (r *memRepo) RoomByID(_ context.Context, roomID string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, rooms.ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (r *memRepo) RoomByInviteCode(_ context.Context, code string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.InviteCode == code {
			return copyRoom(room), nil
		}
	}
	return nil, rooms.ErrRoomNotFound
}

func (r *memRepo) Rooms(_ context.Context) ([]*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, copyRoom(room))
	}
	return out, nil
}

func (r *memRepo) SetMembers(_ context.Context, roomID string, members []models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return rooms.ErrRoomNotFound
	}
	room.Members = append([]models.Member{}, members...)
	return nil
}

func (r *memRepo) DeleteRoom(_ context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomID)
	delete(r.waiting, roomID)
	return nil
}

func (r *memRepo) WaitingList(_ context.Context, roomID string) ([]models.WaitingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WaitingEntry{}, r.waiting[roomID]...), nil
}

func (r *memRepo) AppendWaiting(_ context.Context, roomID string, entry models.WaitingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiting[roomID] = append(r.waiting[roomID], entry)
	return nil
}

func (r *memRepo) RemoveWaiting(_ context.Context, roomID string, entry models.WaitingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.waiting[roomID]
	for i, candidate := range list {
		if candidate == entry {
			r.waiting[roomID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return rooms.ErrWaitingNotFound
}

func (r *memRepo) ReplaceWaiting(_ context.Context, roomID string, old, updated models.WaitingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.waiting[roomID]
	for i, candidate := range list {
		if candidate == old {
			list[i] = updated
			return nil
		}
	}
	return rooms.ErrWaitingNotFound
}

// spyNotifier records subscriptions and every message sent.
type spyNotifier struct {
	mu     sync.Mutex
	subs   map[string][]string // connection id -> room ids
	toConn map[string][]models.ServerMessage
	toRoom map[string][]models.ServerMessage
}

func newSpyNotifier() *spyNotifier {
	return &spyNotifier{
		subs:   make(map[string][]string),
		toConn: make(map[string][]models.ServerMessage),
		toRoom: make(map[string][]models.ServerMessage),
	}
}

func (n *spyNotifier) Subscribe(connectionID, roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs[connectionID] = append(n.subs[connectionID], roomID)
}

func (n *spyNotifier) Unsubscribe(connectionID, roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.subs[connectionID][:0]
	for _, id := range n.subs[connectionID] {
		if id != roomID {
			kept = append(kept, id)
		}
	}
	n.subs[connectionID] = kept
}

func (n *spyNotifier) SendToConnection(connectionID string, msg models.ServerMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toConn[connectionID] = append(n.toConn[connectionID], msg)
}

func (n *spyNotifier) SendToRoom(roomID string, msg models.ServerMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toRoom[roomID] = append(n.toRoom[roomID], msg)
}

func (n *spyNotifier) subscribedTo(connectionID, roomID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, id := range n.subs[connectionID] {
		if id == roomID {
			return true
		}
	}
	return false
}

func (n *spyNotifier) lastToConnection(connectionID string) (models.ServerMessage, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.toConn[connectionID]
	if len(msgs) == 0 {
		return models.ServerMessage{}, false
	}
	return msgs[len(msgs)-1], true
}

func (n *spyNotifier) lastToRoom(roomID string) (models.ServerMessage, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.toRoom[roomID]
	if len(msgs) == 0 {
		return models.ServerMessage{}, false
	}
	return msgs[len(msgs)-1], true
}

func newTestCoordinator() (*rooms.Coordinator, *memRepo, *spyNotifier) {
	repo := newMemRepo()
	notifier := newSpyNotifier()
	return rooms.NewCoordinator(repo, notifier), repo, notifier
}
