package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cohabit-backend/database"
	"cohabit-backend/models"
	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/households/:id/chores
func CreateChore(c *gin.Context) {
	ctx := c.Request.Context()
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	var req models.CreateChoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if _, err := utils.ParseDueDate(req.DueDate); err != nil {
		utils.BadRequest(c, "due_date must be YYYY-MM-DD")
		return
	}

	actor, ok := currentUser(c)
	if !ok {
		return
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = "once"
	}
	chore := models.Chore{
		HouseholdID:  household.ID,
		Name:         req.Name,
		AssigneeName: req.AssigneeName,
		Frequency:    frequency,
		DueDate:      req.DueDate,
		CreatedBy:    actor.ID,
	}

	assignee, ok := resolveAssignee(c, household, req.AssigneeID)
	if !ok {
		return
	}
	if assignee != nil {
		chore.AssigneeID = &assignee.ID
		if chore.AssigneeName == "" {
			chore.AssigneeName = assignee.Name()
		}
	}

	if err := database.DB.WithContext(ctx).Create(&chore).Error; err != nil {
		utils.InternalError(c, "Failed to create chore")
		return
	}

	if assignee != nil {
		if err := services.GetNotificationService().NotifyChoreAssigned(ctx, household, chore, actor, *assignee); err != nil {
			slog.Warn("Chore notification failed", "chore_id", chore.ID, "error", err)
		}
	}

	utils.SuccessResponse(c, http.StatusCreated, "Chore created", chore)
}

// GET /api/households/:id/chores?filter=all|pending|completed|due_soon|overdue&assignee=<uuid>
func GetHouseholdChores(c *gin.Context) {
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	filter := c.Query("filter")
	if !services.ValidChoreFilter(filter) {
		utils.BadRequest(c, "Unknown filter")
		return
	}

	var assignee *uuid.UUID
	if raw := c.Query("assignee"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequest(c, "Invalid assignee ID")
			return
		}
		assignee = &id
	}

	chores, err := services.ListChores(c.Request.Context(), household.ID, filter, assignee, nowUTC())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if chores == nil {
		chores = []models.Chore{}
	}

	utils.SuccessResponse(c, http.StatusOK, "", chores)
}

// PUT /api/chores/:id
func UpdateChore(c *gin.Context) {
	ctx := c.Request.Context()
	chore, household, ok := memberChore(c)
	if !ok {
		return
	}

	var req models.UpdateChoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Name) != "" {
		updates["name"] = req.Name
	}
	if req.Frequency != "" {
		updates["frequency"] = req.Frequency
	}
	if req.DueDate != "" {
		if _, err := utils.ParseDueDate(req.DueDate); err != nil {
			utils.BadRequest(c, "due_date must be YYYY-MM-DD")
			return
		}
		updates["due_date"] = req.DueDate
	}
	if req.AssigneeName != "" {
		updates["assignee_name"] = req.AssigneeName
	}

	assignee, ok := resolveAssignee(c, household, req.AssigneeID)
	if !ok {
		return
	}
	reassigned := assignee != nil && (chore.AssigneeID == nil || *chore.AssigneeID != assignee.ID)
	if assignee != nil {
		updates["assignee_id"] = assignee.ID
		if req.AssigneeName == "" {
			updates["assignee_name"] = assignee.Name()
		}
	}

	if len(updates) > 0 {
		if err := database.DB.WithContext(ctx).Model(&chore).Updates(updates).Error; err != nil {
			utils.InternalError(c, "Failed to update chore")
			return
		}
	}

	updated, err := services.GetChore(ctx, chore.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if reassigned {
		actor, ok := currentUser(c)
		if !ok {
			return
		}
		if err := services.GetNotificationService().NotifyChoreAssigned(ctx, household, updated, actor, *assignee); err != nil {
			slog.Warn("Chore notification failed", "chore_id", chore.ID, "error", err)
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Chore updated", updated)
}

// PUT /api/chores/:id/done
func ToggleChore(c *gin.Context) {
	ctx := c.Request.Context()
	chore, _, ok := memberChore(c)
	if !ok {
		return
	}

	var req models.ToggleChoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := services.SetChoreDone(ctx, &chore, *req.Done, utils.GetCurrentUserID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	updated, err := services.GetChore(ctx, chore.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Chore updated", updated)
}

// DELETE /api/chores/:id
func DeleteChore(c *gin.Context) {
	chore, _, ok := memberChore(c)
	if !ok {
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Where("id = ?", chore.ID).Delete(&models.Chore{}).Error; err != nil {
		utils.InternalError(c, "Failed to delete chore")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Chore deleted", nil)
}

// DELETE /api/households/:id/chores/completed
func ClearCompletedChores(c *gin.Context) {
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	n, err := services.ClearCompletedChores(c.Request.Context(), household.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Completed chores cleared", gin.H{"deleted": n})
}

func memberChore(c *gin.Context) (models.Chore, models.Household, bool) {
	ctx := c.Request.Context()
	choreID, ok := utils.ParamUUID(c, "id", "chore ID")
	if !ok {
		return models.Chore{}, models.Household{}, false
	}
	chore, err := services.GetChore(ctx, choreID)
	if err != nil {
		utils.HandleError(c, err)
		return chore, models.Household{}, false
	}
	household, err := services.RequireMember(ctx, chore.HouseholdID, utils.GetCurrentUserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return chore, household, false
	}
	return chore, household, true
}

// resolveAssignee returns nil when raw is empty. Assignees must be members.
func resolveAssignee(c *gin.Context, household models.Household, raw string) (*models.User, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.BadRequest(c, "Invalid assignee ID")
		return nil, false
	}

	ctx := c.Request.Context()
	member, err := services.IsMember(ctx, household.ID, id)
	if err != nil {
		utils.HandleError(c, err)
		return nil, false
	}
	if !member {
		utils.BadRequest(c, "Assignee is not a member of this household")
		return nil, false
	}

	user, err := services.CurrentUser(ctx, id, "")
	if err != nil {
		utils.HandleError(c, err)
		return nil, false
	}
	return &user, true
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
