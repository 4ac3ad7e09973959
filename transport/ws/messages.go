package ws

import (
	"lanchat/domain/event"
)

// Envelope is the wire frame for every server-to-client event.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Inbound is the only frame clients send over the channel.
type Inbound struct {
	Message string `json:"message"`
}

type userPayload struct {
	Username string `json:"username"`
}

type presencePayload struct {
	OnlineUsers []string `json:"online_users"`
}

type messagePayload struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type filePayload struct {
	Filename string `json:"filename"`
	Username string `json:"username"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// toEnvelope maps a domain event onto its wire shape. The envelope type
// string is the event name clients subscribe to.
func toEnvelope(e event.DomainEvent) Envelope {
	env := Envelope{Type: e.Name()}
	switch evt := e.(type) {
	case event.UserJoined:
		env.Payload = userPayload{Username: evt.Username}
	case event.UserLeft:
		env.Payload = userPayload{Username: evt.Username}
	case event.PresenceChanged:
		env.Payload = presencePayload{OnlineUsers: evt.Online}
	case event.MessageReceived:
		env.Payload = messagePayload{
			ID:        evt.Seq,
			Username:  evt.Username,
			Message:   evt.Message,
			Timestamp: evt.At.Format("15:04:05"),
		}
	case event.FileShared:
		env.Payload = filePayload{Filename: evt.Filename, Username: evt.Username}
	case event.ErrorMessage:
		env.Payload = errorPayload{Error: evt.Reason}
	default:
		env.Payload = struct{}{}
	}
	return env
}
