package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"equiptrack/internal/auth"
	"equiptrack/internal/database"
	"equiptrack/internal/handlers"
	"equiptrack/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env in development; production sets real environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	db := database.GetDB()
	reminderStore := database.NewReminderStore(db)
	notificationStore := database.NewNotificationStore(db)
	accountStore := database.NewAccountStore(db)
	equipmentStore := database.NewEquipmentStore(db)

	notificationService := services.NewNotificationService(notificationStore, accountStore)
	reminderService := services.NewReminderService(
		reminderStore, equipmentStore, accountStore, notificationService, services.FirstAdminPolicy{})

	var mailer *services.EmailService
	if os.Getenv("SENDGRID_API_KEY") != "" {
		mailer = services.NewEmailService()
	}
	escalationService := services.NewEscalationService(
		reminderStore, notificationService, accountStore, mailer, time.Hour)

	handlers.Init(reminderService, notificationService, escalationService)

	// The sweep is normally driven by an external scheduler hitting the
	// sweep endpoint; the in-process worker covers deployments without one
	if os.Getenv("ESCALATION_WORKER") == "enabled" {
		escalationService.Start()
		log.Println("In-process escalation worker started")
	}

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("FRONTEND_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", auth.IdentityHeader},
		AllowCredentials: true,
	}))
	router.Use(auth.IdentityMiddleware())

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Account routes
	router.POST("/api/accounts", handlers.CreateAccount)
	router.GET("/api/accounts/:username", handlers.GetAccount)

	// Sweep trigger for the external scheduler (token-authenticated)
	router.POST("/api/internal/sweep", handlers.RunSweep)

	// Protected routes (resolved identity required)
	protected := router.Group("/api")
	protected.Use(auth.RequireUser())
	{
		protected.GET("/notifications", handlers.GetNotifications)
		protected.POST("/notifications/:notification_id/read", handlers.MarkNotificationRead)
		protected.POST("/notifications/read-all", handlers.MarkAllNotificationsRead)
		protected.DELETE("/notifications/:notification_id", handlers.DeleteNotification)
		protected.DELETE("/notifications/read", handlers.DeleteReadNotifications)

		protected.POST("/items", handlers.CreateItem)
		protected.POST("/calibrations", handlers.CreateCalibration)
		protected.POST("/calibrations/:calibration_id/complete", handlers.CompleteCalibration)
		protected.POST("/rentals", handlers.CreateRental)
		protected.POST("/maintenance", handlers.CreateMaintenance)
		protected.POST("/schedules", handlers.CreateSchedule)
	}

	// Admin-only routes
	admin := router.Group("/api")
	admin.Use(auth.RequireAdmin())
	{
		admin.GET("/reminders", handlers.GetReminders)
		admin.POST("/reminders/:reminder_id/acknowledge", handlers.AcknowledgeReminder)
		admin.POST("/rentals/:rental_id/approve", handlers.ApproveRental)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
