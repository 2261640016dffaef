package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/pairpad/coordinator/internal/models"
	"github.com/pairpad/coordinator/internal/rooms"
)

const internalErrorMessage = "An error occurred. Please try again."

// dispatch routes one inbound frame by type. Every request that carries a
// requestId gets exactly one CALLBACK reply; domain errors become structured
// messages, internal faults become a generic one. Unknown types and malformed
// frames are dropped without touching the connection.
func (c *Client) dispatch(raw []byte) {
	var req models.ClientMessage
	if err := json.Unmarshal(raw, &req); err != nil {
		logrus.WithError(err).WithField("connection_id", c.ID).Warn("Failed to parse message")
		return
	}

	ctx := context.Background()

	switch req.Type {
	case models.EventCreateRoom:
		c.handleCreateRoom(ctx, req)
	case models.EventRequestJoinRoom:
		c.handleRequestJoin(ctx, req)
	case models.EventAcceptJoinRequest:
		c.handleAcceptJoin(ctx, req)
	case models.EventRejectJoinRequest:
		c.handleRejectJoin(ctx, req)
	case models.EventJoinRoom:
		c.handleJoinRoom(ctx, req)
	case models.EventGetRoomMembers:
		c.handleGetMembers(ctx, req)
	default:
		logrus.WithFields(logrus.Fields{
			"connection_id": c.ID,
			"type":          req.Type,
		}).Debug("Ignoring unknown message type")
	}
}

func (c *Client) handleCreateRoom(ctx context.Context, req models.ClientMessage) {
	var p models.CreateRoomPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil || p.UserID == "" {
		c.reply(req.RequestID, models.CreateRoomResult{Success: false, Message: "Invalid create room request"})
		return
	}

	room, err := c.coord.CreateRoom(ctx, c.ID, p.UserID, p.Fullname, p.ProfileImg)
	if err != nil {
		c.reply(req.RequestID, models.CreateRoomResult{Success: false, Message: clientMessage(err)})
		return
	}
	c.reply(req.RequestID, models.CreateRoomResult{
		Success:    true,
		RoomID:     room.ID,
		InviteCode: room.InviteCode,
	})
}

func (c *Client) handleRequestJoin(ctx context.Context, req models.ClientMessage) {
	var p models.RequestJoinPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil || p.InviteCode == "" {
		c.reply(req.RequestID, models.MessageResult{Message: "Invalid invite code"})
		return
	}

	if err := c.coord.RequestJoin(ctx, c.ID, p); err != nil {
		c.reply(req.RequestID, models.MessageResult{Message: clientMessage(err)})
		return
	}
	c.reply(req.RequestID, models.MessageResult{Message: "Join request sent"})
}

func (c *Client) handleAcceptJoin(ctx context.Context, req models.ClientMessage) {
	var p models.AdmissionPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil || p.UserID == "" || p.RoomID == "" {
		c.reply(req.RequestID, models.MessageResult{Message: "Invalid join request"})
		return
	}

	if err := c.coord.AcceptJoin(ctx, c.ID, p.UserID, p.RoomID); err != nil {
		c.reply(req.RequestID, models.MessageResult{Message: admissionMessage(err)})
		return
	}
	c.reply(req.RequestID, models.MessageResult{Message: "Join request accepted successfully"})
}

func (c *Client) handleRejectJoin(ctx context.Context, req models.ClientMessage) {
	var p models.AdmissionPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil || p.UserID == "" || p.RoomID == "" {
		c.reply(req.RequestID, models.MessageResult{Message: "Invalid reject request"})
		return
	}

	if err := c.coord.RejectJoin(ctx, c.ID, p.UserID, p.RoomID); err != nil {
		c.reply(req.RequestID, models.MessageResult{Message: admissionMessage(err)})
		return
	}
	c.reply(req.RequestID, models.MessageResult{Message: "Join request rejected successfully"})
}

func (c *Client) handleJoinRoom(ctx context.Context, req models.ClientMessage) {
	var p models.AdmissionPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil || p.UserID == "" || p.RoomID == "" {
		c.reply(req.RequestID, models.JoinRoomResult{Message: "Invalid join request"})
		return
	}

	room, err := c.coord.FinalizeJoin(ctx, c.ID, p.UserID, p.RoomID)
	if err != nil {
		c.reply(req.RequestID, models.JoinRoomResult{Message: clientMessage(err)})
		return
	}
	c.reply(req.RequestID, models.JoinRoomResult{
		Message: "Join request accepted successfully",
		RoomID:  room.ID,
	})
}

func (c *Client) handleGetMembers(ctx context.Context, req models.ClientMessage) {
	var p models.RoomMembersPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil || p.RoomID == "" {
		c.reply(req.RequestID, models.MessageResult{Message: "Invalid room request"})
		return
	}

	members, err := c.coord.GetMembers(ctx, p.RoomID)
	if err != nil {
		c.reply(req.RequestID, models.MessageResult{Message: clientMessage(err)})
		return
	}
	c.reply(req.RequestID, models.RoomMembersResult{
		Message:     "Room members retrieved successfully",
		RoomMembers: members,
	})
}

// reply sends the CALLBACK response for a request. Requests without a
// requestId asked for no reply.
func (c *Client) reply(requestID string, payload any) {
	if requestID == "" {
		return
	}
	data, err := json.Marshal(models.ServerMessage{
		Type:      models.EventCallback,
		RequestID: requestID,
		Payload:   payload,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal callback")
		return
	}
	c.enqueue(data)
}

// clientMessage maps a domain error to its client-facing text. Unclassified
// errors are logged with full detail and hidden behind a generic message.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return "Room does not exist"
	case errors.Is(err, rooms.ErrRoomExists):
		return "Room already exists"
	case errors.Is(err, rooms.ErrAlreadyWaiting):
		return "You have already requested to join this room"
	case errors.Is(err, rooms.ErrAlreadyMember):
		return "You have already joined this room"
	case errors.Is(err, rooms.ErrNotAdmin):
		return "You are not the admin of this room"
	case errors.Is(err, rooms.ErrWaitingNotFound):
		return "User not found in waiting room"
	case errors.Is(err, rooms.ErrNotAccepted):
		return "Join request not yet accepted"
	case errors.Is(err, rooms.ErrInvalidInput):
		return "Invalid request"
	default:
		logrus.WithError(err).Error("Internal error handling request")
		return internalErrorMessage
	}
}

// admissionMessage is clientMessage with the admin's-eye phrasing for a
// target user that already joined.
func admissionMessage(err error) string {
	if errors.Is(err, rooms.ErrAlreadyMember) {
		return "User already in room"
	}
	return clientMessage(err)
}
