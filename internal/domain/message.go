// Package domain contains core business types and interfaces.
//
// This file defines the chat Message type. Messages live only in the
// in-memory conversation state of a chat session and are never persisted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies which side of the conversation produced a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Valid checks if the role is one of the known message roles.
func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single turn in a conversation.
//
// Role is immutable after creation; ordering within a conversation is
// insertion order.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	FromCache bool        `json:"from_cache,omitempty"` // Assistant reply served from the response cache
	CreatedAt time.Time   `json:"created_at"`
}

// NewMessage creates a message with a fresh identifier and timestamp.
func NewMessage(role MessageRole, content string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
