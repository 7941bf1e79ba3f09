package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"utility-hub-server/internal/models"
)

// BlockedUser is a list entry returned by ListBlockedBy.
type BlockedUser struct {
	User      models.UserSanitized `json:"user"`
	BlockedAt time.Time            `json:"blockedAt"`
}

// BlockService manages the directed block list.
type BlockService struct {
	db *gorm.DB
}

// NewBlockService creates a new BlockService.
func NewBlockService(db *gorm.DB) *BlockService {
	return &BlockService{db: db}
}

// Block records that blockerID blocks blockedID. Re-blocking an already
// blocked user is a no-op; existing message history is untouched.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", blockedID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrUserNotFound
		}
		return err
	}

	relation := models.BlockRelation{
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&relation).Error
}

// Unblock removes the relation if present; a missing relation is not an error.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.BlockRelation{}).Error
}

// IsBlocked reports whether blockerID has blocked blockedID.
func (s *BlockService) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.BlockRelation{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// IsBlockedEither reports whether a block exists in either direction
// between the two users. New sends are suppressed both ways.
func (s *BlockService) IsBlockedEither(ctx context.Context, userA, userB string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.BlockRelation{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

// ListBlockedBy returns the users blocked by blockerID, most recent first.
func (s *BlockService) ListBlockedBy(ctx context.Context, blockerID string) ([]BlockedUser, error) {
	var relations []models.BlockRelation
	err := s.db.WithContext(ctx).Preload("Blocked").
		Where("blocker_id = ?", blockerID).
		Order("created_at desc").
		Find(&relations).Error
	if err != nil {
		return nil, err
	}

	blocked := make([]BlockedUser, len(relations))
	for i, rel := range relations {
		blocked[i] = BlockedUser{
			User:      rel.Blocked.Sanitize(),
			BlockedAt: rel.CreatedAt,
		}
	}
	return blocked, nil
}
