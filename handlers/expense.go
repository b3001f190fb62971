package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"cohabit-backend/finance"
	"cohabit-backend/models"
	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
)

// POST /api/households/:id/expenses
func CreateExpense(c *gin.Context) {
	ctx := c.Request.Context()
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	actor, ok := currentUser(c)
	if !ok {
		return
	}

	expense, err := services.AddExpense(ctx, household.ID, actor.ID, finance.Expense{
		Description:  req.Description,
		Amount:       utils.RoundToTwo(req.Amount),
		PaidBy:       req.PaidBy,
		Participants: req.Participants,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := services.GetNotificationService().NotifyExpenseAdded(ctx, household, expense, actor); err != nil {
		slog.Warn("Expense notification failed", "expense_id", expense.ID, "error", err)
	}

	utils.SuccessResponse(c, http.StatusCreated, "Expense added", expense.ToResponse(utils.TimeAgo(expense.CreatedAt, time.Now())))
}

// GET /api/households/:id/expenses
func GetHouseholdExpenses(c *gin.Context) {
	household, ok := memberHousehold(c)
	if !ok {
		return
	}
	pagination, ok := bindPagination(c)
	if !ok {
		return
	}

	expenses, err := services.HouseholdExpenses(c.Request.Context(), household.ID, false, pagination.Page, pagination.Limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	now := time.Now()
	responses := make([]models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		responses = append(responses, expenses[i].ToResponse(utils.TimeAgo(expenses[i].CreatedAt, now)))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// DELETE /api/expenses/:id
func DeleteExpense(c *gin.Context) {
	ctx := c.Request.Context()
	expenseID, ok := utils.ParamUUID(c, "id", "expense ID")
	if !ok {
		return
	}

	expense, err := services.GetExpense(ctx, expenseID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if _, err := services.RequireMember(ctx, expense.HouseholdID, utils.GetCurrentUserID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := services.DeleteExpense(ctx, expense); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Expense deleted", nil)
}
