package handlers

import (
	"net/http"
	"strconv"

	"equiptrack/internal/models"
	"equiptrack/internal/services"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the authenticated user's notifications with
// pagination and optional type/overdue filters
func GetNotifications(c *gin.Context) {
	filter := services.NotificationFilter{
		Username:    c.GetString("username"),
		Type:        models.ReminderType(c.Query("type")),
		OverdueOnly: c.Query("overdue_only") == "true",
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	notifications, total, err := notificationService.ListForUser(c.Request.Context(), filter)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"page":          filter.Page,
		"limit":         filter.Limit,
	})
}

// MarkNotificationRead marks one notification as read
func MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid notification id", err)
		return
	}

	found, err := notificationService.MarkRead(c.Request.Context(), uint(id), c.GetString("username"))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to mark notification read", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

// MarkAllNotificationsRead marks every unread notification for the user as read
func MarkAllNotificationsRead(c *gin.Context) {
	count, err := notificationService.MarkAllRead(c.Request.Context(), c.GetString("username"))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to mark notifications read", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked_read": count})
}

// DeleteNotification removes one notification
func DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid notification id", err)
		return
	}

	found, err := notificationService.Delete(c.Request.Context(), uint(id), c.GetString("username"))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete notification", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// DeleteReadNotifications removes all of the user's read notifications
func DeleteReadNotifications(c *gin.Context) {
	count, err := notificationService.DeleteRead(c.Request.Context(), c.GetString("username"))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete read notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": count})
}
