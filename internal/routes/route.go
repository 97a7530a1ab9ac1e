package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meshup-app/server/internal/container"
	"github.com/meshup-app/server/internal/handlers"
	"github.com/meshup-app/server/internal/helpers"
	"github.com/meshup-app/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	// Set Gin mode for production
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "meshup-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.CreateUser(container.UserService))
		v1.POST("/login", handlers.AuthenticateUser(container.UserService))
		v1.POST("/logout", handlers.Logout())
		v1.GET("/auth/google", handlers.GoogleAuth(container.UserService))
		v1.GET("/auth/callback", handlers.GoogleAuthCallback(container.UserService))

		// Tap flows resolve identities without a session
		v1.GET("/nfc/verify", handlers.VerifyNfc(container.AttendeeService))
		v1.GET("/users/address/:address", handlers.GetUserByAddress(container.UserService))

		v1.GET("/events", handlers.ListEvents(container.EventService))
		v1.GET("/events/highlights", handlers.EventHighlights(container.EventService))
		v1.GET("/events/:slug", handlers.GetEvent(container.EventService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.SupabaseClient, container.UserService, container.Logger))

	userRoutes := protected.Group("/users")
	{
		protected.GET("/profile", func(c *gin.Context) {
			user, exist := c.Get("user")
			if !exist {
				c.JSON(401, gin.H{"error": "Unauthorized"})
				return
			}

			// Cast to EnhancedClaims to access role and other profile data
			enhancedClaims, ok := user.(*helpers.EnhancedClaims)
			if !ok {
				c.JSON(500, gin.H{"error": "Invalid user claims format"})
				return
			}

			c.JSON(200, gin.H{
				"status":   "OK",
				"user_id":  enhancedClaims.UserID,
				"email":    enhancedClaims.Email,
				"role":     enhancedClaims.Role,
				"address":  enhancedClaims.Address,
				"is_admin": enhancedClaims.IsAdmin(),
			})
		})

		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.PATCH("/:id/avatar", handlers.UploadAvatar(container.UserService))
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("/", handlers.CreateEvent(container.EventService))
		eventRoutes.PATCH("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.PATCH("/:id/image", handlers.UpdateEventImage(container.EventService))
		eventRoutes.GET("/:slug/dashboard", handlers.EventDashboard(container.EventService))
		eventRoutes.GET("/:slug/statistics", handlers.EventStatistics(container.EventService))
		eventRoutes.DELETE("/organizers/:organizerId", handlers.RemoveOrganizer(container.EventService))

		eventRoutes.POST("/:id/questions/generate", handlers.GenerateEventQuestions(container.QuestService, container.Runner))
		eventRoutes.POST("/:id/quests/assign", handlers.AssignQuests(container.AssignService, container.Runner))
	}

	attendeeRoutes := protected.Group("/attendees")
	{
		attendeeRoutes.POST("/", handlers.RegisterAttendee(container.AttendeeService))
		attendeeRoutes.PATCH("/:id/status", handlers.UpdateAttendeeStatus(container.AttendeeService))
		attendeeRoutes.DELETE("/:eventId/:userId", handlers.RemoveAttendee(container.AttendeeService))
		attendeeRoutes.POST("/nfc", handlers.RegisterNfc(container.AttendeeService))
	}

	questRoutes := protected.Group("/questions")
	{
		questRoutes.POST("/:eventUserId/generate", handlers.GenerateQuestions(container.QuestService, container.Runner))
		questRoutes.GET("/:eventUserId/status", handlers.GenerationStatus(container.QuestService, container.JobRepo))
		questRoutes.GET("/:eventUserId/board", handlers.GetQuestBoard(container.QuestService))
	}

	protected.POST("/quests/:questId/verify", handlers.VerifyQuest(container.VerifyService))

	connectionRoutes := protected.Group("/connections")
	{
		connectionRoutes.POST("/", handlers.SendConnectionRequest(container.ConnectionService))
		connectionRoutes.GET("/:eventUserId/pending", handlers.ListPendingConnections(container.ConnectionService))
		connectionRoutes.GET("/:eventUserId/recent", handlers.ListRecentConnections(container.ConnectionService))
		connectionRoutes.PATCH("/:id", handlers.UpdateConnectionStatus(container.ConnectionService))
	}

	return r
}
