package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lanchat/domain/event"
)

func TestToEnvelope(t *testing.T) {
	at := time.Date(2026, 8, 28, 9, 30, 15, 0, time.UTC)

	tests := []struct {
		name     string
		event    event.DomainEvent
		wantType string
		want     any
	}{
		{
			"user joined", event.UserJoined{Username: "alice"},
			"user_joined", userPayload{Username: "alice"},
		},
		{
			"user left", event.UserLeft{Username: "alice"},
			"user_left", userPayload{Username: "alice"},
		},
		{
			"presence", event.PresenceChanged{Online: []string{"alice", "bob"}},
			"update_presence", presencePayload{OnlineUsers: []string{"alice", "bob"}},
		},
		{
			"message", event.MessageReceived{Seq: 7, Username: "alice", Message: "hi", At: at},
			"receive_message", messagePayload{ID: 7, Username: "alice", Message: "hi", Timestamp: "09:30:15"},
		},
		{
			"file", event.FileShared{Filename: "notes.txt", Username: "alice"},
			"file_uploaded", filePayload{Filename: "notes.txt", Username: "alice"},
		},
		{
			"soft error", event.ErrorMessage{Reason: "Empty message."},
			"error_message", errorPayload{Error: "Empty message."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := toEnvelope(tt.event)
			require.Equal(t, tt.wantType, env.Type)
			require.Equal(t, tt.want, env.Payload)
		})
	}
}
