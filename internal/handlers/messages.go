package handlers

import (
	"errors"
	"strconv"

	"utility-hub-server/internal/chat"
	"utility-hub-server/internal/middleware"
	"utility-hub-server/internal/models"
	"utility-hub-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MessageHandler handles messaging related requests.
type MessageHandler struct {
	DB   *gorm.DB
	Chat *chat.Service
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB, chatService *chat.Service) *MessageHandler {
	return &MessageHandler{DB: db, Chat: chatService}
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	RecipientID string `json:"recipientId" binding:"required,uuid"`
	Content     string `json:"content" binding:"required"`
}

// SendMessage handles sending a new direct message.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	senderID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Sender ID not found in token")
		return
	}

	// Snapshot the sender's current display name onto the message
	var sender models.User
	if err := h.DB.First(&sender, "id = ?", senderID).Error; err != nil {
		utils.Unauthorized(c, "Sender account not found")
		return
	}

	sent, err := h.Chat.SendMessage(c.Request.Context(), senderID, sender.DisplayName, req.RecipientID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrSelfSend):
			utils.BadRequest(c, "Cannot send a message to yourself.")
		case errors.Is(err, chat.ErrEmptyContent):
			utils.BadRequest(c, "Message content cannot be empty.")
		case errors.Is(err, chat.ErrBlocked):
			utils.Forbidden(c, "You cannot message this user.")
		case errors.Is(err, chat.ErrUserNotFound):
			utils.NotFound(c, "Recipient user not found")
		default:
			utils.InternalServerError(c, "Failed to send message")
		}
		return
	}

	utils.Created(c, "Message sent successfully", sent)
}

// GetConversations handles fetching the conversation list for the user,
// most recently active first, with last message and unread count.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	summaries, err := h.Chat.ListConversationsFor(c.Request.Context(), userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch conversations")
		return
	}

	utils.Success(c, "Conversations fetched successfully", summaries)
}

// GetConversationMessages handles fetching one conversation's messages,
// oldest first, paginated via limit/offset query params.
func (h *MessageHandler) GetConversationMessages(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	conversationID := c.Param("conversationId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	isParticipant, err := h.Chat.Conversations.IsParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to check conversation membership")
		return
	}
	if !isParticipant {
		utils.Forbidden(c, "You are not a participant of this conversation.")
		return
	}

	messages, err := h.Chat.Messages.ListByConversation(c.Request.Context(), conversationID, limit, offset)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch messages")
		return
	}

	utils.Success(c, "Messages fetched successfully", messages)
}

// MarkReadRequest represents the request body for marking messages read.
type MarkReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required,min=1"`
}

// MarkMessagesRead handles marking a batch of messages as read for the
// current user. Already-read messages are unaffected.
func (h *MessageHandler) MarkMessagesRead(c *gin.Context) {
	var req MarkReadRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Chat.Messages.MarkRead(c.Request.Context(), req.MessageIDs, userID); err != nil {
		utils.InternalServerError(c, "Failed to mark messages as read")
		return
	}

	utils.Success(c, "Messages marked as read", nil)
}

// MarkConversationRead handles marking every unread message addressed to
// the current user in a conversation as read.
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	conversationID := c.Param("conversationId")
	if err := h.Chat.MarkConversationRead(c.Request.Context(), conversationID, userID); err != nil {
		switch {
		case errors.Is(err, chat.ErrNotParticipant):
			utils.Forbidden(c, "You are not a participant of this conversation.")
		case errors.Is(err, chat.ErrConversationNotFound):
			utils.NotFound(c, "Conversation not found")
		default:
			utils.InternalServerError(c, "Failed to mark conversation as read")
		}
		return
	}

	utils.Success(c, "Conversation marked as read", nil)
}

// GetUnreadCount handles fetching the current user's unread count for a
// single conversation.
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	conversationID := c.Param("conversationId")
	count, err := h.Chat.Messages.CountUnread(c.Request.Context(), conversationID, userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to count unread messages")
		return
	}

	utils.Success(c, "Unread count fetched successfully", gin.H{"unreadCount": count})
}
