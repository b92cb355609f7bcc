package handlers

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"equiptrack/internal/models"
	"equiptrack/internal/services"
	"equiptrack/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetReminders lists reminders for the admin dashboard with filtering and pagination
func GetReminders(c *gin.Context) {
	filter := services.ReminderFilter{
		Status: models.ReminderStatus(c.Query("status")),
		Type:   models.ReminderType(c.Query("type")),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	reminders, total, err := reminderService.ListReminders(c.Request.Context(), filter)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch reminders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": reminders,
		"total":     total,
		"page":      filter.Page,
		"limit":     filter.Limit,
	})
}

// AcknowledgeReminder terminally closes a reminder on behalf of the
// authenticated admin
func AcknowledgeReminder(c *gin.Context) {
	reminderID := c.Param("reminder_id")
	username := c.GetString("username")

	reminder, err := reminderService.Acknowledge(c.Request.Context(), reminderID, username)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to acknowledge reminder", err)
		return
	}
	if reminder == nil {
		// Deleted between read and write; already gone is not an error
		c.JSON(http.StatusOK, gin.H{"message": "Reminder no longer exists"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// RunSweep triggers the escalation sweep. It is meant to be hit by an
// external scheduler; a matching SWEEP_TOKEN header stands in for an admin
// identity so cron does not need a session.
func RunSweep(c *gin.Context) {
	token := os.Getenv("SWEEP_TOKEN")
	if c.GetString("role") != string(models.RoleAdmin) {
		if token == "" || c.GetHeader("X-Sweep-Token") != token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized to trigger sweep"})
			return
		}
	}

	force := c.Query("force") == "true"
	log.Printf("Escalation sweep triggered from %s (force=%v)", utils.GetRealClientIP(c), force)

	results, err := escalationService.RunSweep(c.Request.Context(), force)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to run escalation sweep", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"processed": len(results),
		"results":   results,
	})
}
