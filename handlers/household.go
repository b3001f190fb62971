package handlers

import (
	"log/slog"
	"net/http"

	"cohabit-backend/models"
	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
)

// POST /api/households
func CreateHousehold(c *gin.Context) {
	ctx := c.Request.Context()
	userID := utils.GetCurrentUserID(c)

	var req models.CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	household, err := services.CreateHousehold(ctx, req.Name, userID)
	if err != nil {
		slog.Error("Create household failed", "user_id", userID, "error", err)
		utils.InternalError(c, "Failed to create household")
		return
	}
	if err := services.SetActiveHousehold(ctx, userID, household.ID); err != nil {
		slog.Warn("Set active household failed", "user_id", userID, "error", err)
	}

	respondHousehold(c, http.StatusCreated, "Household created", household)
}

// GET /api/households
func GetHouseholds(c *gin.Context) {
	households, err := services.UserHouseholds(c.Request.Context(), utils.GetCurrentUserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	responses := make([]models.HouseholdResponse, 0, len(households))
	for _, h := range households {
		members, err := services.MemberDirectory(c.Request.Context(), h)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		responses = append(responses, householdResponse(h, members))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// GET /api/households/:id
func GetHousehold(c *gin.Context) {
	household, ok := memberHousehold(c)
	if !ok {
		return
	}
	respondHousehold(c, http.StatusOK, "", household)
}

// PUT /api/households/:id
func UpdateHousehold(c *gin.Context) {
	household, ok := creatorHousehold(c)
	if !ok {
		return
	}

	var req models.UpdateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	household.Name = req.Name
	if err := services.RenameHousehold(c.Request.Context(), &household); err != nil {
		utils.HandleError(c, err)
		return
	}

	respondHousehold(c, http.StatusOK, "Household updated", household)
}

// POST /api/households/join
func JoinHousehold(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.JoinHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	household, err := services.FindByInviteCode(ctx, req.InviteCode)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := services.JoinHousehold(ctx, household.ID, utils.GetCurrentUserID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}

	respondHousehold(c, http.StatusOK, "Joined household", household)
}

// POST /api/households/:id/invite-code
func RegenerateInviteCode(c *gin.Context) {
	household, ok := creatorHousehold(c)
	if !ok {
		return
	}

	if err := services.RegenerateInviteCode(c.Request.Context(), &household); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invite code regenerated", gin.H{"invite_code": household.InviteCode})
}

// POST /api/households/:id/switch
func SwitchHousehold(c *gin.Context) {
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	if err := services.SetActiveHousehold(c.Request.Context(), utils.GetCurrentUserID(c), household.ID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Active household switched", gin.H{"household_id": household.ID})
}

// DELETE /api/households/:id/members/:uid
func RemoveMember(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	household, ok := memberHousehold(c)
	if !ok {
		return
	}
	targetID, ok := utils.ParamUUID(c, "uid", "user ID")
	if !ok {
		return
	}

	// Creator can remove anyone; others can only leave
	if household.CreatedBy != userID && targetID != userID {
		utils.Forbidden(c, "Only the household creator can remove other members")
		return
	}

	if err := services.RemoveMember(c.Request.Context(), household.ID, targetID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Member removed", nil)
}

// POST /api/households/:id/invite
func InviteToHousehold(c *gin.Context) {
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	inviter, ok := currentUser(c)
	if !ok {
		return
	}
	if err := services.InviteToHousehold(c.Request.Context(), household, inviter, req.Email); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invitation sent", nil)
}

func creatorHousehold(c *gin.Context) (models.Household, bool) {
	household, ok := memberHousehold(c)
	if !ok {
		return household, false
	}
	if household.CreatedBy != utils.GetCurrentUserID(c) {
		utils.Forbidden(c, "Only the household creator can do this")
		return household, false
	}
	return household, true
}

func respondHousehold(c *gin.Context, status int, message string, household models.Household) {
	members, err := services.MemberDirectory(c.Request.Context(), household)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, status, message, householdResponse(household, members))
}

func householdResponse(h models.Household, members []models.MemberResponse) models.HouseholdResponse {
	if members == nil {
		members = []models.MemberResponse{}
	}
	return models.HouseholdResponse{
		ID:         h.ID,
		Name:       h.Name,
		InviteCode: h.InviteCode,
		CreatedBy:  h.CreatedBy,
		Members:    members,
		CreatedAt:  h.CreatedAt,
	}
}
