package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"cohabit-backend/models"
	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
)

// POST /api/households/:id/settlements
//
// Confirms that a suggested payment was made. The payment is recorded as a
// settlement expense so the next balance read nets it out.
func ConfirmSettlement(c *gin.Context) {
	ctx := c.Request.Context()
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	var req models.ConfirmSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	actor, ok := currentUser(c)
	if !ok {
		return
	}

	settlement := req.ToSettlement()
	expense, err := services.RecordSettlement(ctx, household.ID, actor.ID, settlement)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := services.GetNotificationService().NotifySettlement(ctx, household, expense, settlement, actor); err != nil {
		slog.Warn("Settlement notification failed", "expense_id", expense.ID, "error", err)
	}

	utils.SuccessResponse(c, http.StatusCreated, "Settlement recorded", expense.ToResponse(utils.TimeAgo(expense.CreatedAt, time.Now())))
}
