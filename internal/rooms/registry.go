package rooms

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/internal/models"
)

// Notifier delivers server-initiated events. The WebSocket hub implements it;
// tests use a spy.
type Notifier interface {
	Subscribe(connectionID, roomID string)
	Unsubscribe(connectionID, roomID string)
	SendToConnection(connectionID string, msg models.ServerMessage)
	SendToRoom(roomID string, msg models.ServerMessage)
}

const maxCodeAttempts = 10

// Coordinator owns room lifecycle and the admission protocol. All state lives
// in the Repository; the Coordinator holds only per-room mutexes so that
// read-decide-write sequences on one room are serialized. Requests for
// different rooms never contend.
type Coordinator struct {
	repo     Repository
	notifier Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(repo Repository, notifier Notifier) *Coordinator {
	return &Coordinator{
		repo:     repo,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

// roomLock returns the mutex for roomID, creating it on first use. Locks are
// never removed; the per-room footprint is a single mutex and rooms are
// bounded by the store's TTL.
func (c *Coordinator) roomLock(roomID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[roomID] = l
	}
	return l
}

// CreateRoom persists a new room with the creator as admin and sole member,
// and subscribes the creating connection to the room group.
func (c *Coordinator) CreateRoom(ctx context.Context, connectionID, userID, fullname, profileImg string) (*models.Room, error) {
	if connectionID == "" || userID == "" {
		return nil, ErrInvalidInput
	}

	inviteCode, err := c.generateUniqueInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	// UUID collisions are astronomically unlikely but cheap to rule out;
	// regenerate instead of failing the caller.
	var roomID string
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		roomID = uuid.New().String()
		exists, err := c.repo.RoomExists(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		roomID = ""
	}
	if roomID == "" {
		return nil, ErrRoomExists
	}

	room := &models.Room{
		ID:                roomID,
		InviteCode:        inviteCode,
		AdminConnectionID: connectionID,
		Members: []models.Member{{
			UserID:       userID,
			Fullname:     fullname,
			ProfileImg:   profileImg,
			ConnectionID: connectionID,
		}},
	}

	if err := c.repo.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.notifier.Subscribe(connectionID, roomID)

	logrus.WithFields(logrus.Fields{
		"room_id":     roomID,
		"invite_code": inviteCode,
		"user_id":     userID,
	}).Info("Room created")

	return room, nil
}

// FindRoomByInviteCode resolves an invite code to its room.
func (c *Coordinator) FindRoomByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	if code == "" {
		return nil, ErrInvalidInput
	}
	return c.repo.RoomByInviteCode(ctx, code)
}

// FindRoomByID looks a room up by its id.
func (c *Coordinator) FindRoomByID(ctx context.Context, roomID string) (*models.Room, error) {
	if roomID == "" {
		return nil, ErrInvalidInput
	}
	return c.repo.RoomByID(ctx, roomID)
}

// ListMembers returns the room's roster, never nil.
func (c *Coordinator) ListMembers(ctx context.Context, roomID string) ([]models.Member, error) {
	room, err := c.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Members == nil {
		return []models.Member{}, nil
	}
	return room.Members, nil
}

// AppendMember adds a member to the roster. Appending a userId that is
// already present is a no-op, not an error.
func (c *Coordinator) AppendMember(ctx context.Context, roomID string, member models.Member) (*models.Room, error) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.repo.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HasMember(member.UserID) {
		return room, nil
	}
	room.Members = append(room.Members, member)
	if err := c.repo.SetMembers(ctx, roomID, room.Members); err != nil {
		return nil, err
	}
	return room, nil
}

// generateUniqueInviteCode draws codes until one does not collide with a live
// room. Each check is a scan over room keys; acceptable at this scale and
// bounded by maxCodeAttempts.
func (c *Coordinator) generateUniqueInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := newInviteCode()
		_, err := c.repo.RoomByInviteCode(ctx, code)
		if errors.Is(err, ErrRoomNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		logrus.WithField("invite_code", code).Warn("Invite code collision, regenerating")
	}
	return "", ErrRoomExists
}
