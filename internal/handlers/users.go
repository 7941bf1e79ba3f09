package handlers

import (
	"utility-hub-server/internal/chat"
	"utility-hub-server/internal/middleware"
	"utility-hub-server/internal/models"
	"utility-hub-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler handles user lookup and account removal.
type UserHandler struct {
	DB   *gorm.DB
	Chat *chat.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, chatService *chat.Service) *UserHandler {
	return &UserHandler{DB: db, Chat: chatService}
}

// SearchUsers handles finding users by display name or email, used when
// starting a new conversation.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.BadRequest(c, "Query parameter 'q' is required")
		return
	}

	currentUserID, _ := middleware.GetUserIDFromContext(c)

	var users []models.User
	like := "%" + query + "%"
	err := h.DB.Where("(display_name LIKE ? OR email LIKE ?) AND id != ?", like, like, currentUserID).
		Limit(20).
		Find(&users).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to search users")
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetUserByID handles fetching a single user's public profile.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// DeleteAccount handles removing the current user's account. The cascade
// runs in order: messaging data, then refresh tokens, then the account
// record itself. A failing step aborts the remaining ones.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	if err := h.Chat.PurgeUserData(c.Request.Context(), userID); err != nil {
		utils.InternalServerError(c, "Failed to delete messaging data")
		return
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete sessions")
		return
	}

	if err := h.DB.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete account")
		return
	}

	utils.Success(c, "Account deleted successfully", nil)
}
