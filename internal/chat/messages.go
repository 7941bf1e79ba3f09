package chat

import (
	"context"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"utility-hub-server/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// MessageStore is the append-only store of messages within conversations.
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append stores a new unread message in the conversation. Content that is
// empty after trimming is rejected, as is an unknown conversation or a
// sender who is not a participant.
func (s *MessageStore) Append(ctx context.Context, conversationID, senderID, senderName, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	var conv models.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var isMember int64
	err := s.db.WithContext(ctx).Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, senderID).
		Count(&isMember).Error
	if err != nil {
		return nil, err
	}
	if isMember == 0 {
		return nil, ErrNotParticipant
	}

	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Content:        content,
		Read:           false,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByConversation returns messages ordered oldest first, paginated so
// long histories are never loaded wholesale.
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips the given messages to read on behalf of readerUserID and
// records a read receipt per message. Messages authored by the reader,
// messages already read and messages in conversations the reader does not
// belong to are skipped, so re-marking is always safe and a stranger cannot
// consume someone else's unread state.
// Receipt insertion is best-effort: the read-state update is the durable
// outcome and a receipt failure only logs.
func (s *MessageStore) MarkRead(ctx context.Context, messageIDs []string, readerUserID string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	readerConversations := s.db.Model(&models.ConversationParticipant{}).
		Select("conversation_id").
		Where("user_id = ?", readerUserID)

	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id IN ? AND sender_id != ? AND is_read = ? AND conversation_id IN (?)",
			messageIDs, readerUserID, false, readerConversations).
		Update("is_read", true).Error
	if err != nil {
		return err
	}

	var readable []models.Message
	err = s.db.WithContext(ctx).Select("id").
		Where("id IN ? AND sender_id != ? AND conversation_id IN (?)",
			messageIDs, readerUserID, readerConversations).
		Find(&readable).Error
	if err != nil {
		slog.Warn("could not load messages for read receipts", "reader", readerUserID, "error", err)
		return nil
	}

	receipts := make([]models.ReadReceipt, len(readable))
	for i, msg := range readable {
		receipts[i] = models.ReadReceipt{MessageID: msg.ID, UserID: readerUserID}
	}
	if len(receipts) > 0 {
		err = s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&receipts).Error
		if err != nil {
			slog.Warn("could not record read receipts", "reader", readerUserID, "count", len(receipts), "error", err)
		}
	}
	return nil
}

// UnreadIDs returns the IDs of unread messages in the conversation that
// were not sent by the given user.
func (s *MessageStore) UnreadIDs(ctx context.Context, conversationID, excludingSenderID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, excludingSenderID, false).
		Pluck("id", &ids).Error
	return ids, err
}

// CountUnread counts unread messages in the conversation not sent by the
// given user.
func (s *MessageStore) CountUnread(ctx context.Context, conversationID, excludingSenderID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, excludingSenderID, false).
		Count(&count).Error
	return count, err
}

// LastMessage returns the most recent message of a conversation, or nil
// when the conversation has none.
func (s *MessageStore) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	var message models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at desc").
		First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}
