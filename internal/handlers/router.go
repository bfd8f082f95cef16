package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFest-2025/event-service/internal/config"
	"github.com/UniFest-2025/event-service/internal/events"
	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
	"github.com/UniFest-2025/event-service/internal/services"
	"github.com/UniFest-2025/event-service/internal/utils"
	"github.com/UniFest-2025/event-service/internal/validator"
)

type HandlerManager struct {
	eventHandler        *EventHandler
	registrationHandler *RegistrationHandler
	ticketHandler       *TicketHandler
	merchHandler        *MerchHandler
	discussionHandler   *DiscussionHandler
	feedbackHandler     *FeedbackHandler
	accountHandler      *AccountHandler
	adminHandler        *AdminHandler
	analyticsHandler    *AnalyticsHandler
	authMiddleware      *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
	publisher events.EventPublisher,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		eventHandler:        NewEventHandler(serviceManager.Event(), validator, logger),
		registrationHandler: NewRegistrationHandler(serviceManager.Registration(), validator, logger),
		ticketHandler:       NewTicketHandler(serviceManager.Ticket(), validator, logger),
		merchHandler:        NewMerchHandler(serviceManager.Merch(), validator, logger),
		discussionHandler:   NewDiscussionHandler(serviceManager.Discussion(), publisher, validator, logger),
		feedbackHandler:     NewFeedbackHandler(serviceManager.Feedback(), validator, logger),
		accountHandler:      NewAccountHandler(serviceManager.Account(), validator, logger),
		adminHandler:        NewAdminHandler(serviceManager.Admin(), validator, logger),
		analyticsHandler:    NewAnalyticsHandler(serviceManager.Analytics(), serviceManager.Export(), logger),
		authMiddleware:      authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	public := router.Group("/api/v1")
	{
		public.POST("/auth/signup", hm.accountHandler.Signup)
		public.GET("/events/:id/rating", hm.feedbackHandler.GetEventRating)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware()) // Apply authentication to all API routes
	{
		organizerOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleOrganizer)
		adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

		// Event routes
		events := v1.Group("/events")
		{
			// Create/modify events - Organizers only
			events.POST("", organizerOnly, hm.eventHandler.CreateEvent)
			events.PUT("/:id", organizerOnly, hm.eventHandler.UpdateEvent)
			events.PATCH("/:id", organizerOnly, hm.eventHandler.UpdatePublishedEvent)
			events.PUT("/:id/form", organizerOnly, hm.eventHandler.UpdateCustomForm)
			events.DELETE("/:id", organizerOnly, hm.eventHandler.DeleteEvent)

			// Lifecycle transitions - Organizers only
			events.POST("/:id/publish", organizerOnly, hm.eventHandler.PublishEvent)
			events.POST("/:id/start", organizerOnly, hm.eventHandler.StartEvent)
			events.POST("/:id/close", organizerOnly, hm.eventHandler.CloseEvent)

			// View events - All authenticated users
			events.GET("", hm.eventHandler.ListEvents)
			events.GET("/search", hm.eventHandler.SearchEvents)
			events.GET("/trending", hm.registrationHandler.GetTrendingEvents)
			events.GET("/mine", organizerOnly, hm.eventHandler.GetMyEvents)
			events.GET("/:id", hm.eventHandler.GetEvent)
			events.GET("/:id/details", hm.eventHandler.GetEventWithDetails)

			// Registration and purchase - Participants
			events.POST("/:id/register", hm.registrationHandler.Register)
			events.DELETE("/:id/register", hm.registrationHandler.Cancel)
			events.POST("/:id/purchase", hm.merchHandler.Purchase)
			events.POST("/:id/orders", hm.merchHandler.PlaceOrder)

			// Organizer views
			events.GET("/:id/registrations", organizerOnly, hm.registrationHandler.GetEventRegistrations)
			events.GET("/:id/orders", organizerOnly, hm.merchHandler.ListOrders)
			events.GET("/:id/tickets", organizerOnly, hm.ticketHandler.ListEventTickets)
			events.GET("/:id/stats", organizerOnly, hm.analyticsHandler.GetEventStats)
			events.GET("/:id/export", organizerOnly, hm.analyticsHandler.ExportAttendance)

			// Discussion
			events.POST("/:id/discussion", hm.discussionHandler.PostMessage)
			events.GET("/:id/discussion", hm.discussionHandler.GetThread)
			events.GET("/:id/discussion/stream", hm.discussionHandler.StreamDiscussion)

			// Feedback
			events.POST("/:id/feedback", hm.feedbackHandler.SubmitFeedback)
			events.GET("/:id/feedback", organizerOnly, hm.feedbackHandler.ListFeedback)
		}

		// Registration routes
		registrations := v1.Group("/registrations")
		{
			registrations.GET("/mine", hm.registrationHandler.GetMyRegistrations)
			registrations.GET("/:id", hm.registrationHandler.GetRegistration)
			registrations.GET("/:id/ticket", hm.ticketHandler.GetTicket)
			registrations.PUT("/:id/attendance", organizerOnly, hm.ticketHandler.OverrideAttendance)
		}

		// Ticket gate routes - Organizers only
		tickets := v1.Group("/tickets")
		{
			tickets.POST("/scan", organizerOnly, hm.ticketHandler.ScanTicket)
			tickets.POST("/verify", organizerOnly, hm.ticketHandler.VerifyTicket)
		}

		// Order approval queue - Organizers only
		orders := v1.Group("/orders")
		{
			orders.POST("/:id/approve", organizerOnly, hm.merchHandler.ApproveOrder)
			orders.POST("/:id/reject", organizerOnly, hm.merchHandler.RejectOrder)
		}

		// Discussion message routes
		messages := v1.Group("/discussion/messages")
		{
			messages.POST("/:message_id/pin", organizerOnly, hm.discussionHandler.PinMessage)
			messages.DELETE("/:message_id/pin", organizerOnly, hm.discussionHandler.UnpinMessage)
			messages.DELETE("/:message_id", hm.discussionHandler.DeleteMessage)
			messages.POST("/:message_id/react", hm.discussionHandler.React)
		}

		// Account routes
		account := v1.Group("/account")
		{
			account.GET("/profile", hm.accountHandler.GetProfile)
			account.PUT("/profile/participant", hm.accountHandler.UpdateParticipantProfile)
			account.PUT("/profile/organizer", organizerOnly, hm.accountHandler.UpdateOrganizerProfile)
			account.POST("/password-reset", organizerOnly, hm.accountHandler.RequestPasswordReset)
		}

		// Follow routes
		v1.POST("/organizers/:organizer_id/follow", hm.accountHandler.FollowOrganizer)
		v1.DELETE("/organizers/:organizer_id/follow", hm.accountHandler.UnfollowOrganizer)

		// Organizer dashboard
		v1.GET("/dashboard/stats", organizerOnly, hm.analyticsHandler.GetOrganizerStats)

		// Admin routes - Admins only
		admin := v1.Group("/admin")
		admin.Use(adminOnly)
		{
			admin.POST("/organizers", hm.adminHandler.CreateOrganizer)
			admin.GET("/organizers", hm.adminHandler.ListOrganizers)
			admin.POST("/organizers/:organizer_id/disable", hm.adminHandler.DisableOrganizer)
			admin.POST("/organizers/:organizer_id/enable", hm.adminHandler.EnableOrganizer)
			admin.POST("/organizers/:organizer_id/archive", hm.adminHandler.ArchiveOrganizer)
			admin.POST("/organizers/:organizer_id/restore", hm.adminHandler.RestoreOrganizer)
			admin.DELETE("/organizers/:organizer_id", hm.adminHandler.DeleteOrganizer)

			admin.GET("/stats", hm.analyticsHandler.GetPlatformStats)

			admin.GET("/password-resets", hm.adminHandler.ListResetRequests)
			admin.POST("/password-resets/:id/approve", hm.adminHandler.ApproveResetRequest)
			admin.POST("/password-resets/:id/reject", hm.adminHandler.RejectResetRequest)
		}
	}
}
