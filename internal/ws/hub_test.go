package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairpad/coordinator/internal/models"
)

// receive pops one frame off the client's send buffer, or fails.
func receive(t *testing.T, c *Client) models.ServerMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg models.ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	default:
		t.Fatal("expected a message, send buffer is empty")
		return models.ServerMessage{}
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected message: %s", data)
	default:
	}
}

func TestHub_SendToConnection(t *testing.T) {
	hub := NewHub()
	client := NewClient("conn-1", "u1", hub, nil, nil)
	hub.register(client)

	hub.SendToConnection("conn-1", models.ServerMessage{
		Type:    models.EventJoinRequestResult,
		Payload: models.JoinRequestResult{JoinRequestAccepted: true},
	})

	msg := receive(t, client)
	assert.Equal(t, models.EventJoinRequestResult, msg.Type)
}

func TestHub_SendToConnection_Unknown(t *testing.T) {
	hub := NewHub()
	// Sending to a connection this instance doesn't hold must be a no-op.
	hub.SendToConnection("elsewhere", models.ServerMessage{Type: models.EventCallback})
}

func TestHub_SendToRoom_OnlySubscribers(t *testing.T) {
	hub := NewHub()
	subscribed := NewClient("conn-1", "u1", hub, nil, nil)
	bystander := NewClient("conn-2", "u2", hub, nil, nil)
	hub.register(subscribed)
	hub.register(bystander)
	hub.Subscribe("conn-1", "room-1")

	hub.SendToRoom("room-1", models.ServerMessage{Type: models.EventUpdatedRoomMembers})

	msg := receive(t, subscribed)
	assert.Equal(t, models.EventUpdatedRoomMembers, msg.Type)
	assertNoMessage(t, bystander)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	client := NewClient("conn-1", "u1", hub, nil, nil)
	hub.register(client)
	hub.Subscribe("conn-1", "room-1")
	hub.Unsubscribe("conn-1", "room-1")

	hub.SendToRoom("room-1", models.ServerMessage{Type: models.EventUpdatedRoomMembers})
	assertNoMessage(t, client)
}

func TestHub_UnregisterLeavesGroups(t *testing.T) {
	hub := NewHub()
	client := NewClient("conn-1", "u1", hub, nil, nil)
	hub.register(client)
	hub.Subscribe("conn-1", "room-1")
	hub.unregister(client)

	hub.SendToRoom("room-1", models.ServerMessage{Type: models.EventUpdatedRoomMembers})
	assertNoMessage(t, client)
}
