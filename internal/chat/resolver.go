package chat

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"utility-hub-server/internal/models"
)

// conversationIDPrefix namespaces derived conversation IDs.
const conversationIDPrefix = "conv_"

// DirectConversationID derives the stable ID for a direct conversation
// between two users. The pair is sorted lexicographically before joining,
// so the result is the same no matter which participant initiates.
func DirectConversationID(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%s%s_%s", conversationIDPrefix, userA, userB)
}

// ConversationService resolves and creates conversations.
type ConversationService struct {
	db *gorm.DB
}

// NewConversationService creates a new ConversationService.
func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// GetOrCreateDirect returns the direct conversation between two users,
// creating it (with both participant rows) on first contact. Creation is
// conflict-tolerant: two racing first messages both converge on the row
// keyed by the derived ID instead of one of them failing.
func (s *ConversationService) GetOrCreateDirect(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if userA == userB {
		return nil, ErrSelfSend
	}

	convID := DirectConversationID(userA, userB)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := models.Conversation{
			ID:   convID,
			Type: models.ConversationTypeDirect,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&conv).Error; err != nil {
			return err
		}
		participants := []models.ConversationParticipant{
			{ConversationID: convID, UserID: userA},
			{ConversationID: convID, UserID: userB},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}

	var conv models.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", convID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// Get returns a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// IsParticipant reports whether the user belongs to the conversation.
func (s *ConversationService) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

// Touch bumps the conversation's UpdatedAt so recently active threads sort
// first in the conversation list.
func (s *ConversationService) Touch(ctx context.Context, conversationID string) error {
	return s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", time.Now()).Error
}
