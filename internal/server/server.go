// Package server assembles services, handlers and routes into the HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"finaudy/internal/ai"
	"finaudy/internal/config"
	"finaudy/internal/handlers"
	"finaudy/internal/jobs"
	"finaudy/internal/middleware"
	"finaudy/internal/push"
	"finaudy/internal/services"
)

// Services holds every application service.
type Services struct {
	Users         services.UserServicer
	Categories    services.CategoryServicer
	Transactions  services.TransactionServicer
	Budgets       services.BudgetServicer
	Subscriptions services.SubscriptionServicer
	Installments  services.InstallmentServicer
	Reminders     services.BillReminderServicer
	Notifications services.NotificationServicer
	Sharing       services.SharingServicer
	Entitlements  services.EntitlementServicer
	Audit         services.AuditServicer
}

// NewServices builds the services over db. Dates are reasoned about in loc.
func NewServices(db *gorm.DB, loc *time.Location, freeFeatureLimit int, messenger push.Messenger) *Services {
	sharing := services.NewSharingService(db)
	return &Services{
		Users:         services.NewUserService(db),
		Categories:    services.NewCategoryService(db),
		Transactions:  services.NewTransactionService(db, loc),
		Budgets:       services.NewBudgetService(db, loc),
		Subscriptions: services.NewSubscriptionService(db, loc),
		Installments:  services.NewInstallmentService(db, loc),
		Reminders:     services.NewBillReminderService(db, loc),
		Notifications: services.NewNotificationService(db, sharing, messenger, loc),
		Sharing:       sharing,
		Entitlements:  services.NewEntitlementService(db, freeFeatureLimit),
		Audit:         services.NewAuditService(db),
	}
}

// Checker returns the periodic account checks over the services.
func (s *Services) Checker() *jobs.Checker {
	return &jobs.Checker{
		Users:         s.Users,
		Budgets:       s.Budgets,
		Subscriptions: s.Subscriptions,
		Installments:  s.Installments,
		Reminders:     s.Reminders,
		Notifications: s.Notifications,
	}
}

// Options are the collaborators of the router that live outside the services.
type Options struct {
	Capturer  ai.Capturer
	Scheduler handlers.JobTrigger
	Checker   handlers.AccountChecker
	Swagger   bool
}

// NewRouter registers every route on a new gin engine.
func NewRouter(cfg *config.Config, svc *Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Categories, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Entitlements, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	subscriptionHandler := handlers.NewSubscriptionHandler(svc.Subscriptions, svc.Audit)
	installmentHandler := handlers.NewInstallmentHandler(svc.Installments, svc.Audit)
	reminderHandler := handlers.NewBillReminderHandler(svc.Reminders, svc.Audit)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	sharingHandler := handlers.NewSharingHandler(svc.Sharing, svc.Notifications, svc.Audit)
	entitlementHandler := handlers.NewEntitlementHandler(svc.Entitlements, svc.Audit)
	auditHandler := handlers.NewAuditHandler(svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Caller-scoped routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.GetNotifications)
	notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	protected.POST("/devices", notificationHandler.RegisterDevice)
	protected.DELETE("/devices", notificationHandler.UnregisterDevice)

	sharing := protected.Group("/sharing")
	sharing.POST("/invites", sharingHandler.Invite)
	sharing.GET("/invites", sharingHandler.GetPendingInvites)
	sharing.POST("/invites/:id/accept", sharingHandler.AcceptInvite)
	sharing.POST("/invites/:id/decline", sharingHandler.DeclineInvite)
	sharing.GET("/owned", sharingHandler.GetOwnedShares)
	sharing.GET("/accounts", sharingHandler.GetAccessibleAccounts)
	sharing.DELETE("/:id", sharingHandler.RevokeShare)

	// Account-scoped routes, optionally acting on a shared account
	account := protected.Group("/")
	account.Use(middleware.AccountContext(svc.Sharing))

	categories := account.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := account.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := account.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/overview", budgetHandler.GetBudgetOverview)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	subscriptions := account.Group("/subscriptions")
	subscriptions.POST("", subscriptionHandler.CreateSubscription)
	subscriptions.GET("", subscriptionHandler.GetSubscriptions)
	subscriptions.GET("/overview", subscriptionHandler.GetSubscriptionOverview)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.DeleteSubscription)
	subscriptions.POST("/:id/pay", subscriptionHandler.MarkSubscriptionPaid)

	installments := account.Group("/installments")
	installments.POST("", installmentHandler.CreatePurchase)
	installments.GET("", installmentHandler.GetPurchases)
	installments.DELETE("", installmentHandler.DeletePurchase)
	installments.GET("/debt", installmentHandler.GetDebt)
	installments.PUT("/:id/paid", installmentHandler.SetInstallmentPaid)

	reminders := account.Group("/reminders")
	reminders.POST("", reminderHandler.CreateBillReminder)
	reminders.GET("", reminderHandler.GetBillReminders)
	reminders.GET("/:id", reminderHandler.GetBillReminder)
	reminders.PUT("/:id", reminderHandler.UpdateBillReminder)
	reminders.DELETE("/:id", reminderHandler.DeleteBillReminder)

	account.GET("/premium/status", entitlementHandler.GetStatus)
	account.GET("/audit", auditHandler.GetAuditLog)

	if opts.Capturer != nil {
		captureHandler := handlers.NewCaptureHandler(opts.Capturer, svc.Categories, svc.Entitlements, cfg.Location)
		capture := account.Group("/ai")
		capture.POST("/voice", captureHandler.CaptureVoice)
		capture.POST("/receipt", captureHandler.CaptureReceipt)
	}

	// Operator routes
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.InternalAPIKey))
	internal.PUT("/subscribers/:user_id", entitlementHandler.UpsertSubscriber)
	if opts.Scheduler != nil && opts.Checker != nil {
		schedulerHandler := handlers.NewSchedulerHandler(opts.Scheduler, opts.Checker)
		internal.POST("/scheduler/trigger", schedulerHandler.Trigger)
		internal.POST("/scheduler/accounts/:account_id/checks/:check", schedulerHandler.RunCheck)
	}

	return router
}
