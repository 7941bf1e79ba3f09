package models

import (
	"time"
)

// Message represents a single message within a conversation.
// SenderName is a snapshot of the sender's display name at send time,
// so message history keeps rendering after a rename.
type Message struct {
	BaseModel
	ConversationID string `gorm:"size:100;index" json:"conversationId"`
	SenderID       string `gorm:"size:36;index" json:"senderId"`
	SenderName     string `gorm:"size:100" json:"senderName"`
	Content        string `gorm:"type:text" json:"content"`
	// Column named is_read because READ is reserved in MySQL.
	Read bool `gorm:"column:is_read;default:false;index" json:"read"`

	// Relations
	Sender       User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

// ReadReceipt records that a user has observed a message.
// Unique on (messageId, userId); inserted idempotently when a batch of
// messages is marked read.
type ReadReceipt struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID string    `gorm:"size:36;uniqueIndex:idx_message_reader" json:"messageId"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_message_reader;index" json:"userId"`
	ReadAt    time.Time `gorm:"autoCreateTime" json:"readAt"`
}
