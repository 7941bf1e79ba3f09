package models

import (
	"time"
)

// ConversationType distinguishes direct threads from group threads
type ConversationType string

const (
	ConversationTypeDirect ConversationType = "direct"
	ConversationTypeGroup  ConversationType = "group"
)

// Conversation represents a messaging thread between users.
// For direct conversations the ID is derived from the participant pair
// (see chat.DirectConversationID), so the same two users always share
// one thread no matter who messages first.
type Conversation struct {
	ID        string           `gorm:"primaryKey;size:100" json:"id"`
	Type      ConversationType `gorm:"size:20;default:'direct'" json:"type"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`

	// Relations
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

// ConversationParticipant links a user to a conversation.
// Unique on (conversationId, userId).
type ConversationParticipant struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"size:100;uniqueIndex:idx_conversation_user" json:"conversationId"`
	UserID         string    `gorm:"size:36;uniqueIndex:idx_conversation_user;index" json:"userId"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
