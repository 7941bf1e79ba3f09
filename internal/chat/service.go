package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"utility-hub-server/internal/models"
)

// SentMessage is the normalized result of a send, enriched with the
// recipient's display name for rendering.
type SentMessage struct {
	Message       models.Message `json:"message"`
	RecipientID   string         `json:"recipientId"`
	RecipientName string         `json:"recipientName"`
}

// ConversationSummary is one entry of a user's conversation list.
type ConversationSummary struct {
	ConversationID string                `json:"conversationId"`
	Type           string                `json:"type"`
	Partner        *models.UserSanitized `json:"partner,omitempty"`
	LastMessage    *models.Message       `json:"lastMessage,omitempty"`
	LastActivityAt time.Time             `json:"lastActivityAt"`
	UnreadCount    int64                 `json:"unreadCount"`
}

// Service orchestrates conversations, messages and the block list.
type Service struct {
	db            *gorm.DB
	Conversations *ConversationService
	Messages      *MessageStore
	Blocks        *BlockService
}

// NewService creates the messaging service and its sub-services.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:            db,
		Conversations: NewConversationService(db),
		Messages:      NewMessageStore(db),
		Blocks:        NewBlockService(db),
	}
}

// SendMessage delivers a direct message from sender to recipient, lazily
// creating their conversation on first contact. Sends are rejected when a
// block exists in either direction between the pair.
func (s *Service) SendMessage(ctx context.Context, senderID, senderName, recipientID, content string) (*SentMessage, error) {
	if senderID == recipientID {
		return nil, ErrSelfSend
	}
	// Validate content before any row is written, so a rejected send cannot
	// leave behind an empty conversation.
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	var recipient models.User
	if err := s.db.WithContext(ctx).First(&recipient, "id = ?", recipientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	blocked, err := s.Blocks.IsBlockedEither(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	conv, err := s.Conversations.GetOrCreateDirect(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	message, err := s.Messages.Append(ctx, conv.ID, senderID, senderName, content)
	if err != nil {
		return nil, err
	}

	if err := s.Conversations.Touch(ctx, conv.ID); err != nil {
		// Ordering of the conversation list degrades; the send itself is durable.
		slog.Warn("could not touch conversation", "conversation", conv.ID, "error", err)
	}

	return &SentMessage{
		Message:       *message,
		RecipientID:   recipientID,
		RecipientName: recipient.DisplayName,
	}, nil
}

// MarkConversationRead marks every unread message addressed to the reader
// in the conversation as read and records receipts for them.
func (s *Service) MarkConversationRead(ctx context.Context, conversationID, readerUserID string) error {
	isParticipant, err := s.Conversations.IsParticipant(ctx, conversationID, readerUserID)
	if err != nil {
		return err
	}
	if !isParticipant {
		return ErrNotParticipant
	}

	ids, err := s.Messages.UnreadIDs(ctx, conversationID, readerUserID)
	if err != nil {
		return err
	}
	return s.Messages.MarkRead(ctx, ids, readerUserID)
}

// ListConversationsFor returns the user's conversations newest activity
// first, each with the direct-chat partner, last message preview and the
// user's unread count.
func (s *Service) ListConversationsFor(ctx context.Context, userID string) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	err := s.db.WithContext(ctx).
		Joins("JOIN conversation_participants p ON p.conversation_id = conversations.id").
		Where("p.user_id = ?", userID).
		Order("conversations.updated_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary := ConversationSummary{
			ConversationID: conv.ID,
			Type:           string(conv.Type),
			LastActivityAt: conv.UpdatedAt,
		}

		if conv.Type == models.ConversationTypeDirect {
			var partner models.User
			err := s.db.WithContext(ctx).
				Joins("JOIN conversation_participants p ON p.user_id = users.id").
				Where("p.conversation_id = ? AND p.user_id != ?", conv.ID, userID).
				First(&partner).Error
			if err == nil {
				sanitized := partner.Sanitize()
				summary.Partner = &sanitized
			} else if err != gorm.ErrRecordNotFound {
				return nil, err
			}
		}

		last, err := s.Messages.LastMessage(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		summary.LastMessage = last

		unread, err := s.Messages.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = unread

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// PurgeUserData removes a departing user's messaging footprint: authored
// messages first, then read receipts, participant rows and block relations.
// The first failing step aborts the rest so a partial cascade is visible.
func (s *Service) PurgeUserData(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sender_id = ?", userID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.ReadReceipt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.ConversationParticipant{}).Error; err != nil {
			return err
		}
		return tx.Where("blocker_id = ? OR blocked_id = ?", userID, userID).
			Delete(&models.BlockRelation{}).Error
	})
}
