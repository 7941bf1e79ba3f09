package handlers

import (
	"errors"

	"utility-hub-server/internal/chat"
	"utility-hub-server/internal/middleware"
	"utility-hub-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BlockHandler handles block list requests.
type BlockHandler struct {
	DB     *gorm.DB
	Blocks *chat.BlockService
}

// NewBlockHandler creates a new BlockHandler.
func NewBlockHandler(db *gorm.DB, blocks *chat.BlockService) *BlockHandler {
	return &BlockHandler{DB: db, Blocks: blocks}
}

// BlockUserRequest represents the request body for blocking a user.
type BlockUserRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// BlockUser handles blocking another user. Blocking twice is a no-op.
func (h *BlockHandler) BlockUser(c *gin.Context) {
	var req BlockUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	blockerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Blocks.Block(c.Request.Context(), blockerID, req.UserID); err != nil {
		switch {
		case errors.Is(err, chat.ErrSelfBlock):
			utils.BadRequest(c, "You cannot block yourself.")
		case errors.Is(err, chat.ErrUserNotFound):
			utils.NotFound(c, "User to block not found")
		default:
			utils.InternalServerError(c, "Failed to block user")
		}
		return
	}

	utils.Success(c, "User blocked successfully", nil)
}

// UnblockUser handles removing a block. Unblocking a user who was never
// blocked succeeds quietly.
func (h *BlockHandler) UnblockUser(c *gin.Context) {
	blockerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	blockedID := c.Param("userId")
	if err := h.Blocks.Unblock(c.Request.Context(), blockerID, blockedID); err != nil {
		utils.InternalServerError(c, "Failed to unblock user")
		return
	}

	utils.Success(c, "User unblocked successfully", nil)
}

// GetBlockedUsers handles fetching the current user's block list.
func (h *BlockHandler) GetBlockedUsers(c *gin.Context) {
	blockerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	blocked, err := h.Blocks.ListBlockedBy(c.Request.Context(), blockerID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch blocked users")
		return
	}

	utils.Success(c, "Blocked users fetched successfully", blocked)
}
