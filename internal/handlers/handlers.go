package handlers

import (
	"log"
	"net/http"

	"equiptrack/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	reminderService     *services.ReminderService
	notificationService *services.NotificationService
	escalationService   *services.EscalationService
)

// Init wires the service layer into the handler package
func Init(reminders *services.ReminderService, notifications *services.NotificationService, escalation *services.EscalationService) {
	reminderService = reminders
	notificationService = notifications
	escalationService = escalation
}

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Equiptrack!")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
