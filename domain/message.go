// Package domain contains core concepts of the chat room.
// This file defines the immutable message record.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Message is a chat record as stored in the durable log.
// Seq is assigned by the store and defines the replay order.
type Message struct {
	Seq    uint64
	Author string
	Body   string
	At     time.Time
}
