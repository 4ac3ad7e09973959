// Package event defines the domain events delivered by the fanout bus.
// Event names match the wire-level event types sent to clients.
package event

import "time"

// DomainEvent is implemented by every event the fanout bus can deliver.
type DomainEvent interface {
	Name() string
}

// UserJoined is emitted after a successful login.
type UserJoined struct {
	Username string
}

func (UserJoined) Name() string { return "user_joined" }

// UserLeft is emitted after a logout.
type UserLeft struct {
	Username string
}

func (UserLeft) Name() string { return "user_left" }

// PresenceChanged carries the full presence snapshot taken at the moment
// a connection was admitted or removed.
type PresenceChanged struct {
	Online []string
}

func (PresenceChanged) Name() string { return "update_presence" }

// MessageReceived is emitted strictly after the message has been persisted.
type MessageReceived struct {
	Seq      uint64
	Username string
	Message  string
	At       time.Time
}

func (MessageReceived) Name() string { return "receive_message" }

// FileShared is emitted after a completed upload.
type FileShared struct {
	Filename string
	Username string
}

func (FileShared) Name() string { return "file_uploaded" }

// ErrorMessage is a soft error delivered only to the offending sender,
// never broadcast.
type ErrorMessage struct {
	Reason string
}

func (ErrorMessage) Name() string { return "error_message" }
