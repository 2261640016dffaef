package models

import "encoding/json"

// EventType tags every message on the event channel, both directions.
type EventType string

// Requests from clients.
const (
	EventCreateRoom        EventType = "CREATE_ROOM"
	EventRequestJoinRoom   EventType = "REQUEST_JOIN_ROOM"
	EventAcceptJoinRequest EventType = "ACCEPT_JOIN_REQUEST"
	EventRejectJoinRequest EventType = "REJECT_JOIN_REQUEST"
	EventJoinRoom          EventType = "JOIN_ROOM"
	EventGetRoomMembers    EventType = "GET_ROOM_MEMBERS"
)

// Server-initiated events.
const (
	// EventCallback carries the direct reply to a request, correlated by
	// requestId.
	EventCallback EventType = "CALLBACK"
	// EventSendJoinRequest notifies the room admin of a new waiting entry.
	EventSendJoinRequest EventType = "SEND_JOIN_REQUEST"
	// EventJoinRequestResult tells a requester whether the admin accepted.
	EventJoinRequestResult EventType = "JOIN_REQUEST_RESULT"
	// EventUpdatedRoomMembers pushes the refreshed roster to a room group.
	EventUpdatedRoomMembers EventType = "UPDATED_ROOM_MEMBERS"
)

// ClientMessage is the envelope for inbound requests. Payload stays raw until
// the dispatcher knows the type. A non-empty RequestID means the client wants
// a CALLBACK reply.
type ClientMessage struct {
	Type      EventType       `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is the envelope for callback replies and pushes.
type ServerMessage struct {
	Type      EventType `json:"type"`
	RequestID string    `json:"requestId,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// Request payloads.

type CreateRoomPayload struct {
	UserID     string `json:"userId"`
	Fullname   string `json:"fullname"`
	ProfileImg string `json:"profileImg"`
}

type RequestJoinPayload struct {
	InviteCode string `json:"inviteCode"`
	UserID     string `json:"userId"`
	Fullname   string `json:"fullname"`
	ProfileImg string `json:"profileImg"`
}

// AdmissionPayload is shared by ACCEPT_JOIN_REQUEST, REJECT_JOIN_REQUEST and
// JOIN_ROOM.
type AdmissionPayload struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

type RoomMembersPayload struct {
	RoomID string `json:"roomId"`
}

// Callback payloads.

type CreateRoomResult struct {
	Success    bool   `json:"success"`
	RoomID     string `json:"roomId,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
	Message    string `json:"message,omitempty"`
}

type MessageResult struct {
	Message string `json:"message"`
}

type JoinRoomResult struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId,omitempty"`
}

type RoomMembersResult struct {
	Message     string   `json:"message"`
	RoomMembers []Member `json:"roomMembers"`
}

// Push payloads.

// JoinRequestNotice goes to the admin and carries the full waiting list so
// the admin UI can render it without a follow-up fetch.
type JoinRequestNotice struct {
	UserID      string         `json:"userId"`
	Fullname    string         `json:"fullname"`
	ProfileImg  string         `json:"profileImg"`
	RoomID      string         `json:"roomId"`
	WaitingRoom []WaitingEntry `json:"waitingRoom"`
}

type JoinRequestResult struct {
	JoinRequestAccepted bool   `json:"joinRequestAccepted"`
	UserID              string `json:"userId,omitempty"`
	RoomID              string `json:"roomId,omitempty"`
}

type UpdatedRoomMembers struct {
	Message     string   `json:"message"`
	RoomMembers []Member `json:"roomMembers"`
}
