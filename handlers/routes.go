package handlers

import (
	"net/http"

	"cohabit-backend/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine with middleware and every route.
func SetupRouter(appName, jwtSecret string, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORSMiddleware(corsOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": appName,
		})
	})

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired(jwtSecret))
	{
		// User
		api.GET("/users/me", GetProfile)
		api.PUT("/users/me", UpdateProfile)
		api.PUT("/users/me/fcm-token", UpdateFCMToken)
		api.GET("/users/search", SearchUsers)
		api.POST("/users/:id/roommate-request", SendRoommateRequest)

		// Households
		api.POST("/households", CreateHousehold)
		api.GET("/households", GetHouseholds)
		api.POST("/households/join", JoinHousehold)
		api.GET("/households/:id", GetHousehold)
		api.PUT("/households/:id", UpdateHousehold)
		api.POST("/households/:id/invite-code", RegenerateInviteCode)
		api.POST("/households/:id/switch", SwitchHousehold)
		api.DELETE("/households/:id/members/:uid", RemoveMember)
		api.POST("/households/:id/invite", InviteToHousehold)

		// Expenses
		api.POST("/households/:id/expenses", CreateExpense)
		api.GET("/households/:id/expenses", GetHouseholdExpenses)
		api.DELETE("/expenses/:id", DeleteExpense)

		// Balances and settlements
		api.GET("/households/:id/balances", GetHouseholdBalances)
		api.POST("/households/:id/settlements", ConfirmSettlement)

		// Chores
		api.POST("/households/:id/chores", CreateChore)
		api.GET("/households/:id/chores", GetHouseholdChores)
		api.DELETE("/households/:id/chores/completed", ClearCompletedChores)
		api.PUT("/chores/:id", UpdateChore)
		api.PUT("/chores/:id/done", ToggleChore)
		api.DELETE("/chores/:id", DeleteChore)

		// Notifications
		api.GET("/notifications", GetNotifications)
		api.PUT("/notifications/:id/read", MarkNotificationRead)
		api.PUT("/notifications/:id/respond", RespondToRequest)
	}

	return r
}
