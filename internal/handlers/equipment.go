package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"equiptrack/internal/database"
	"equiptrack/internal/models"

	"github.com/gin-gonic/gin"
)

// notifyReminder runs the reminder pipeline for a domain event. Reminder
// failures must never abort the business action that triggered them, so the
// outcome is only logged and returned for the response body.
func notifyReminder(c *gin.Context, rtype models.ReminderType, entityID uint) string {
	status, err := reminderService.NotifyForDomainEvent(c.Request.Context(), rtype, entityID)
	if err != nil {
		log.Printf("Warning: Reminder pipeline failed for %s %d: %v", rtype, entityID, err)
	}
	return status
}

// CreateItem registers a new equipment item
func CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	item := models.Item{
		Serial:   req.Serial,
		Name:     req.Name,
		Category: req.Category,
	}

	db := database.GetDB()
	if err := db.Create(&item).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create item", err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// CreateCalibration opens a calibration job for an item. No reminder is
// created yet; that happens on completion.
func CreateCalibration(c *gin.Context) {
	var req models.CreateCalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var item models.Item
	if err := db.Where("serial = ?", req.ItemSerial).First(&item).Error; err != nil {
		handleError(c, http.StatusNotFound, "Item not found", err)
		return
	}

	cal := models.Calibration{
		ItemSerial:      req.ItemSerial,
		Status:          models.CalibrationInProgress,
		CalibrationDate: req.CalibrationDate,
		Vendor:          req.Vendor,
		CreatedBy:       c.GetString("username"),
	}
	if err := db.Create(&cal).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create calibration", err)
		return
	}

	c.JSON(http.StatusCreated, cal)
}

// CompleteCalibration marks a calibration job completed and fires the
// CALIBRATION reminder event
func CompleteCalibration(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("calibration_id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid calibration id", err)
		return
	}

	var req models.CompleteCalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var cal models.Calibration
	if err := db.Where("id = ?", id).First(&cal).Error; err != nil {
		handleError(c, http.StatusNotFound, "Calibration not found", err)
		return
	}

	cal.Status = models.CalibrationCompleted
	if req.CalibrationDate != nil {
		cal.CalibrationDate = req.CalibrationDate
	}
	if cal.CalibrationDate == nil {
		now := time.Now()
		cal.CalibrationDate = &now
	}
	if req.ValidUntil != nil {
		cal.ValidUntil = req.ValidUntil
	}
	cal.UpdatedAt = time.Now()
	if err := db.Save(&cal).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to complete calibration", err)
		return
	}

	status := notifyReminder(c, models.ReminderCalibration, cal.ID)
	c.JSON(http.StatusOK, gin.H{"calibration": cal, "reminder": status})
}

// CreateRental records a rental request. The RENTAL reminder event fires on
// approval, not creation.
func CreateRental(c *gin.Context) {
	var req models.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var item models.Item
	if err := db.Where("serial = ?", req.ItemSerial).First(&item).Error; err != nil {
		handleError(c, http.StatusNotFound, "Item not found", err)
		return
	}

	rental := models.Rental{
		ItemSerial: req.ItemSerial,
		RenterName: req.RenterName,
		Status:     models.RentalPending,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CreatedBy:  c.GetString("username"),
	}
	if err := db.Create(&rental).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create rental", err)
		return
	}

	c.JSON(http.StatusCreated, rental)
}

// ApproveRental approves a rental and fires the RENTAL reminder event
func ApproveRental(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("rental_id"), 10, 32)
	if err != nil {
		handleError(c, http.StatusBadRequest, "Invalid rental id", err)
		return
	}

	db := database.GetDB()
	var rental models.Rental
	if err := db.Where("id = ?", id).First(&rental).Error; err != nil {
		handleError(c, http.StatusNotFound, "Rental not found", err)
		return
	}

	if rental.Status == models.RentalApproved {
		c.JSON(http.StatusConflict, gin.H{"error": "Rental already approved"})
		return
	}

	rental.Status = models.RentalApproved
	rental.UpdatedAt = time.Now()
	if err := db.Save(&rental).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to approve rental", err)
		return
	}

	status := notifyReminder(c, models.ReminderRental, rental.ID)
	c.JSON(http.StatusOK, gin.H{"rental": rental, "reminder": status})
}

// CreateMaintenance opens a maintenance job and fires the MAINTENANCE
// reminder event
func CreateMaintenance(c *gin.Context) {
	var req models.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var item models.Item
	if err := db.Where("serial = ?", req.ItemSerial).First(&item).Error; err != nil {
		handleError(c, http.StatusNotFound, "Item not found", err)
		return
	}

	m := models.Maintenance{
		ItemSerial:  req.ItemSerial,
		Description: req.Description,
		Technician:  req.Technician,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   c.GetString("username"),
	}
	if err := db.Create(&m).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create maintenance", err)
		return
	}

	status := notifyReminder(c, models.ReminderMaintenance, m.ID)
	c.JSON(http.StatusCreated, gin.H{"maintenance": m, "reminder": status})
}

// CreateSchedule records an inventory check and fires the SCHEDULE reminder event
func CreateSchedule(c *gin.Context) {
	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	sched := models.InventorySchedule{
		Title:         req.Title,
		Location:      req.Location,
		ScheduledDate: req.ScheduledDate,
		CreatedBy:     c.GetString("username"),
	}

	db := database.GetDB()
	if err := db.Create(&sched).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create schedule", err)
		return
	}

	status := notifyReminder(c, models.ReminderSchedule, sched.ID)
	c.JSON(http.StatusCreated, gin.H{"schedule": sched, "reminder": status})
}
