package handlers

import (
	"errors"
	"net/http"
	"time"

	"cohabit-backend/database"
	"cohabit-backend/models"
	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /api/notifications
func GetNotifications(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	pagination, ok := bindPagination(c)
	if !ok {
		return
	}

	var notifications []models.Notification
	err := database.DB.WithContext(c.Request.Context()).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&notifications).Error
	if err != nil {
		utils.InternalError(c, "Failed to load notifications")
		return
	}

	now := time.Now()
	responses := make([]models.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, models.NotificationResponse{
			Notification: n,
			TimeAgo:      utils.TimeAgo(n.CreatedAt, now),
		})
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// PUT /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	notification, ok := ownNotification(c)
	if !ok {
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(&notification).Update("read", true).Error; err != nil {
		utils.InternalError(c, "Failed to update notification")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

// PUT /api/notifications/:id/respond
func RespondToRequest(c *gin.Context) {
	ctx := c.Request.Context()
	notification, ok := ownNotification(c)
	if !ok {
		return
	}

	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if notification.Type != models.NotificationRoommateRequest || notification.HouseholdID == nil {
		utils.BadRequest(c, "Only roommate requests can be answered")
		return
	}
	if notification.Status != models.RequestPending {
		utils.BadRequest(c, "Request already answered")
		return
	}

	status := models.RequestDeclined
	if req.Action == "accept" {
		status = models.RequestAccepted
		if _, err := services.GetHousehold(ctx, *notification.HouseholdID); err != nil {
			utils.HandleError(c, err)
			return
		}
		if err := services.JoinHousehold(ctx, *notification.HouseholdID, notification.RecipientID); err != nil {
			utils.HandleError(c, err)
			return
		}
	}

	err := database.DB.WithContext(ctx).Model(&notification).
		Updates(map[string]interface{}{"status": status, "read": true}).Error
	if err != nil {
		utils.InternalError(c, "Failed to update notification")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Request "+status, gin.H{"status": status, "household_id": notification.HouseholdID})
}

func ownNotification(c *gin.Context) (models.Notification, bool) {
	var notification models.Notification
	id, ok := utils.ParamUUID(c, "id", "notification ID")
	if !ok {
		return notification, false
	}

	err := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND recipient_id = ?", id, utils.GetCurrentUserID(c)).
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.NotFound(c, "Notification not found")
		return notification, false
	}
	if err != nil {
		utils.InternalError(c, "Failed to load notification")
		return notification, false
	}
	return notification, true
}
