package handlers

import (
	"errors"
	"io"
	"net/http"

	"cohabit-backend/models"
	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GET /api/users/me
func GetProfile(c *gin.Context) {
	user, err := services.GetUser(c.Request.Context(), utils.GetCurrentUserID(c))
	if errors.Is(err, models.ErrNotFound) {
		utils.NotFound(c, "Profile not found")
		return
	}
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", user.ToResponse())
}

// PUT /api/users/me
func UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	user, err := services.SaveProfile(c.Request.Context(), utils.GetCurrentUserID(c), utils.GetCurrentEmail(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile updated", user.ToResponse())
}

// PUT /api/users/me/fcm-token
func UpdateFCMToken(c *gin.Context) {
	var req models.UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := services.SaveFCMToken(c.Request.Context(), utils.GetCurrentUserID(c), utils.GetCurrentEmail(c), req.Token); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "FCM token updated", nil)
}

// GET /api/users/search?q=&availability=
func SearchUsers(c *gin.Context) {
	var query models.SearchUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	users, err := services.SearchUsers(c.Request.Context(), utils.GetCurrentUserID(c), query.Query, query.Availability)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// POST /api/users/:id/roommate-request
func SendRoommateRequest(c *gin.Context) {
	recipientID, ok := utils.ParamUUID(c, "id", "user ID")
	if !ok {
		return
	}

	var req models.RoommateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, err.Error())
		return
	}
	var householdID *uuid.UUID
	if req.HouseholdID != "" {
		id, err := uuid.Parse(req.HouseholdID)
		if err != nil {
			utils.BadRequest(c, "Invalid household ID")
			return
		}
		householdID = &id
	}

	sender, ok := currentUser(c)
	if !ok {
		return
	}
	household, err := services.SendRoommateRequest(c.Request.Context(), sender, recipientID, householdID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Roommate request sent", gin.H{"household_id": household.ID})
}

// currentUser is the caller's profile, or a stub built from the token.
func currentUser(c *gin.Context) (models.User, bool) {
	user, err := services.CurrentUser(c.Request.Context(), utils.GetCurrentUserID(c), utils.GetCurrentEmail(c))
	if err != nil {
		utils.HandleError(c, err)
		return user, false
	}
	return user, true
}

// memberHousehold loads the household named by the :id param and checks
// that the caller belongs to it.
func memberHousehold(c *gin.Context) (models.Household, bool) {
	householdID, ok := utils.ParamUUID(c, "id", "household ID")
	if !ok {
		return models.Household{}, false
	}
	household, err := services.RequireMember(c.Request.Context(), householdID, utils.GetCurrentUserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return household, false
	}
	return household, true
}

func bindPagination(c *gin.Context) (utils.PaginationQuery, bool) {
	var pagination utils.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		utils.BadRequest(c, err.Error())
		return pagination, false
	}
	return pagination, true
}
