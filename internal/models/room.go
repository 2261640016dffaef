package models

// Member is a participant admitted to a room. UserID is the stable identity
// from the auth token; ConnectionID is the transport-level id of the member's
// current WebSocket and is rewritten whenever the member reconnects.
type Member struct {
	UserID       string `json:"userId"`
	Fullname     string `json:"fullname"`
	ProfileImg   string `json:"profileImg"`
	ConnectionID string `json:"connectionId"`
}

// Room is a collaborative session. The creating connection is the admin for
// the room's whole life; there is no admin transfer.
type Room struct {
	ID                string   `json:"roomId"`
	InviteCode        string   `json:"inviteCode"`
	AdminConnectionID string   `json:"admin"`
	Members           []Member `json:"members"`
}

// HasMember reports whether userID is already on the roster.
func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// WaitingEntry is a pending join request. At most one entry per userId per
// room. Accepted is flipped by the admin's accept; a requester can only
// finalize an accepted entry.
type WaitingEntry struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	Fullname     string `json:"fullname"`
	ProfileImg   string `json:"profileImg"`
	Accepted     bool   `json:"accepted,omitempty"`
}
