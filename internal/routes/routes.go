package routes

import (
	"utility-hub-server/internal/chat"
	"utility-hub-server/internal/config"
	"utility-hub-server/internal/handlers"
	"utility-hub-server/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize services and handlers
	chatService := chat.NewService(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, chatService)
	messageHandler := handlers.NewMessageHandler(db, chatService)
	blockHandler := handlers.NewBlockHandler(db, chatService.Blocks)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User lookup and account removal
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/search", userHandler.SearchUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.DELETE("/me", userHandler.DeleteAccount)
		}

		// Messaging routes
		messageRoutes := private.Group("/messages")
		{
			messageRoutes.POST("/send", messageHandler.SendMessage)
			messageRoutes.POST("/read", messageHandler.MarkMessagesRead)
		}

		conversationRoutes := private.Group("/conversations")
		{
			conversationRoutes.GET("", messageHandler.GetConversations)
			conversationRoutes.GET("/:conversationId/messages", messageHandler.GetConversationMessages)
			conversationRoutes.GET("/:conversationId/unread-count", messageHandler.GetUnreadCount)
			conversationRoutes.PATCH("/:conversationId/read", messageHandler.MarkConversationRead)
		}

		// Block list routes
		blockRoutes := private.Group("/blocks")
		{
			blockRoutes.POST("", blockHandler.BlockUser)
			blockRoutes.DELETE("/:userId", blockHandler.UnblockUser)
			blockRoutes.GET("", blockHandler.GetBlockedUsers)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
