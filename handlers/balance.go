package handlers

import (
	"net/http"

	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/households/:id/balances
func GetHouseholdBalances(c *gin.Context) {
	household, ok := memberHousehold(c)
	if !ok {
		return
	}

	summary, err := services.BalanceSummary(c.Request.Context(), household)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}
