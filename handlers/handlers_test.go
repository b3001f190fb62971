package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cohabit-backend/database"
	"cohabit-backend/finance"
	"cohabit-backend/models"
	"cohabit-backend/services"
	"cohabit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type roommate struct {
	ID    uuid.UUID
	Email string
	Token string
}

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	require.NoError(t, database.Open(sqlite.Open(dsn), logger.Silent))
	services.SetBalanceCache(services.NewBalanceCache(nil, 0))
	services.SetNotificationService(services.NewNotificationService(nil, nil, "Cohabit", ""))
	return SetupRouter("Cohabit", testSecret, []string{"*"})
}

func newRoommate(t *testing.T, r *gin.Engine, name string) roommate {
	t.Helper()
	id := uuid.New()
	email := strings.ToLower(name) + "@example.com"
	token, err := utils.GenerateToken(testSecret, id, email)
	require.NoError(t, err)
	rm := roommate{ID: id, Email: email, Token: token}

	status, _ := call(t, r, rm, http.MethodPut, "/api/users/me", gin.H{"display_name": name})
	require.Equal(t, http.StatusOK, status)
	return rm
}

func call(t *testing.T, r *gin.Engine, as roommate, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as.Token != "" {
		req.Header.Set("Authorization", "Bearer "+as.Token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func createHousehold(t *testing.T, r *gin.Engine, owner roommate, name string, others ...roommate) models.HouseholdResponse {
	t.Helper()
	status, env := call(t, r, owner, http.MethodPost, "/api/households", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, status, env.Message)
	h := decode[models.HouseholdResponse](t, env)

	for _, o := range others {
		status, env := call(t, r, o, http.MethodPost, "/api/households/join", gin.H{"invite_code": strings.ToLower(h.InviteCode)})
		require.Equal(t, http.StatusOK, status, env.Message)
	}
	return h
}

func TestHealth(t *testing.T) {
	r := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cohabit")
}

func TestProfile(t *testing.T) {
	r := setup(t)
	id := uuid.New()
	token, err := utils.GenerateToken(testSecret, id, "eve@example.com")
	require.NoError(t, err)
	eve := roommate{ID: id, Email: "eve@example.com", Token: token}

	status, _ := call(t, r, eve, http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, r, eve, http.MethodPut, "/api/users/me", gin.H{})
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, r, eve, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, status)
	profile := decode[models.UserResponse](t, env)
	assert.Equal(t, "eve", profile.DisplayName)

	status, _ = call(t, r, eve, http.MethodPut, "/api/users/me/fcm-token", gin.H{"token": "device-1"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, r, roommate{}, http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHouseholdLifecycle(t *testing.T) {
	r := setup(t)
	ana := newRoommate(t, r, "Ana")
	bo := newRoommate(t, r, "Bo")
	cy := newRoommate(t, r, "Cy")

	h := createHousehold(t, r, ana, "Flat 3", bo)
	assert.Len(t, h.InviteCode, 6)
	path := "/api/households/" + h.ID.String()

	status, env := call(t, r, bo, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[models.HouseholdResponse](t, env)
	require.Len(t, got.Members, 2)
	assert.True(t, got.Members[0].IsCreator || got.Members[1].IsCreator)

	status, _ = call(t, r, cy, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, r, bo, http.MethodPut, path, gin.H{"name": "Bo's place"})
	assert.Equal(t, http.StatusForbidden, status)
	status, env = call(t, r, ana, http.MethodPut, path, gin.H{"name": "Flat 3B"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Flat 3B", decode[models.HouseholdResponse](t, env).Name)

	status, _ = call(t, r, cy, http.MethodPost, "/api/households/join", gin.H{"invite_code": "NOPE00"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, r, ana, http.MethodPost, path+"/invite-code", nil)
	require.Equal(t, http.StatusOK, status)
	code := decode[map[string]string](t, env)["invite_code"]
	assert.Len(t, code, 6)

	status, env = call(t, r, bo, http.MethodGet, "/api/households", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.HouseholdResponse](t, env), 1)

	status, _ = call(t, r, bo, http.MethodPost, path+"/switch", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, r, bo, http.MethodDelete, path+"/members/"+ana.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, r, bo, http.MethodDelete, path+"/members/"+bo.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, r, bo, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, r, ana, http.MethodGet, "/api/households/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestExpenseValidation(t *testing.T) {
	r := setup(t)
	ana := newRoommate(t, r, "Ana")
	h := createHousehold(t, r, ana, "Flat")
	path := "/api/households/" + h.ID.String() + "/expenses"

	tests := []struct {
		name string
		body gin.H
	}{
		{"negative amount", gin.H{"description": "x", "amount": -5, "paid_by": "Ana", "participants": []string{"Bo"}}},
		{"no participants", gin.H{"description": "x", "amount": 5, "paid_by": "Ana", "participants": []string{}}},
		{"blank participant", gin.H{"description": "x", "amount": 5, "paid_by": "Ana", "participants": []string{"Bo", ""}}},
		{"missing payer", gin.H{"description": "x", "amount": 5, "participants": []string{"Bo"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, r, ana, http.MethodPost, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
		})
	}

	status, env := call(t, r, ana, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.ExpenseResponse](t, env))
}

func TestSettleUpOverHTTP(t *testing.T) {
	r := setup(t)
	ana := newRoommate(t, r, "Ana")
	bo := newRoommate(t, r, "Bo")
	cy := newRoommate(t, r, "Cy")
	h := createHousehold(t, r, ana, "Flat", bo, cy)
	base := "/api/households/" + h.ID.String()

	expenses := []gin.H{
		{"description": "Groceries", "amount": 90, "paid_by": "Ana", "participants": []string{"Ana", "Bo", "Cy"}},
		{"description": "Internet", "amount": 45, "paid_by": "Bo", "participants": []string{"Ana", "Bo", "Cy"}},
		{"description": "Cleaner", "amount": 20, "paid_by": "Cy", "participants": []string{"Ana", "Bo"}},
	}
	for _, e := range expenses {
		status, env := call(t, r, ana, http.MethodPost, base+"/expenses", e)
		require.Equal(t, http.StatusCreated, status, env.Message)
	}

	status, env := call(t, r, bo, http.MethodGet, base+"/balances", nil)
	require.Equal(t, http.StatusOK, status)
	summary := decode[models.HouseholdBalanceSummary](t, env)
	assert.Equal(t, []string{"Ana", "Bo", "Cy"}, summary.Balances.Members())
	assert.InDelta(t, 35, summary.Balances.Get("Ana"), 1e-9)
	assert.InDelta(t, -10, summary.Balances.Get("Bo"), 1e-9)
	assert.InDelta(t, -25, summary.Balances.Get("Cy"), 1e-9)
	assert.InDelta(t, 155, summary.Stats.Total, 1e-9)
	assert.False(t, summary.AllSettled)
	require.Equal(t, []finance.Settlement{
		{From: "Bo", To: "Ana", Amount: 10},
		{From: "Cy", To: "Ana", Amount: 25},
	}, summary.Settlements)

	for _, s := range summary.Settlements {
		status, env := call(t, r, cy, http.MethodPost, base+"/settlements", s)
		require.Equal(t, http.StatusCreated, status, env.Message)
		exp := decode[models.ExpenseResponse](t, env)
		assert.True(t, exp.IsSettlement)
		assert.Equal(t, s.From, exp.PaidBy)
		assert.Equal(t, []string{s.To}, exp.Participants)
	}

	status, env = call(t, r, ana, http.MethodGet, base+"/balances", nil)
	require.Equal(t, http.StatusOK, status)
	summary = decode[models.HouseholdBalanceSummary](t, env)
	assert.True(t, summary.AllSettled)
	assert.Empty(t, summary.Settlements)

	status, env = call(t, r, ana, http.MethodGet, base+"/expenses?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]models.ExpenseResponse](t, env)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsSettlement)
	assert.Equal(t, "Just now", list[0].TimeAgo)

	status, _ = call(t, r, ana, http.MethodPost, base+"/settlements", gin.H{"from": "Ana", "to": "Ana", "amount": 5})
	assert.Equal(t, http.StatusBadRequest, status)

	// bo and cy each got one notification per expense and per settlement
	var count int64
	require.NoError(t, database.DB.Model(&models.Notification{}).Where("recipient_id = ?", bo.ID).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestDeleteExpense(t *testing.T) {
	r := setup(t)
	ana := newRoommate(t, r, "Ana")
	cy := newRoommate(t, r, "Cy")
	h := createHousehold(t, r, ana, "Flat")
	base := "/api/households/" + h.ID.String()

	status, env := call(t, r, ana, http.MethodPost, base+"/expenses",
		gin.H{"description": "Pizza", "amount": 20, "paid_by": "Ana", "participants": []string{"Bo"}})
	require.Equal(t, http.StatusCreated, status)
	exp := decode[models.ExpenseResponse](t, env)

	status, _ = call(t, r, cy, http.MethodDelete, "/api/expenses/"+exp.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, r, ana, http.MethodDelete, "/api/expenses/"+exp.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, r, ana, http.MethodDelete, "/api/expenses/"+exp.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, r, ana, http.MethodGet, base+"/balances", nil)
	require.Equal(t, http.StatusOK, status)
	summary := decode[models.HouseholdBalanceSummary](t, env)
	assert.True(t, summary.AllSettled)
	assert.Zero(t, summary.Balances.Len())
}

func TestChores(t *testing.T) {
	r := setup(t)
	ana := newRoommate(t, r, "Ana")
	bo := newRoommate(t, r, "Bo")
	cy := newRoommate(t, r, "Cy")
	h := createHousehold(t, r, ana, "Flat", bo)
	base := "/api/households/" + h.ID.String() + "/chores"

	status, _ := call(t, r, ana, http.MethodPost, base, gin.H{"name": "Dishes", "due_date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, r, ana, http.MethodPost, base, gin.H{"name": "Dishes", "due_date": "2026-03-01", "assignee_id": cy.ID.String()})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := call(t, r, ana, http.MethodPost, base, gin.H{"name": "Dishes", "due_date": "2020-01-01", "assignee_id": bo.ID.String()})
	require.Equal(t, http.StatusCreated, status, env.Message)
	dishes := decode[models.Chore](t, env)
	assert.Equal(t, "Bo", dishes.AssigneeName)
	assert.Equal(t, "once", dishes.Frequency)

	status, env = call(t, r, ana, http.MethodPost, base, gin.H{"name": "Bins", "due_date": "2999-01-01", "frequency": "weekly"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	bins := decode[models.Chore](t, env)

	status, env = call(t, r, bo, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	notes := decode[[]models.NotificationResponse](t, env)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationChore, notes[0].Type)

	status, env = call(t, r, bo, http.MethodGet, base+"?filter=overdue", nil)
	require.Equal(t, http.StatusOK, status)
	overdue := decode[[]models.Chore](t, env)
	require.Len(t, overdue, 1)
	assert.Equal(t, dishes.ID, overdue[0].ID)

	status, env = call(t, r, bo, http.MethodGet, base+"?assignee="+bo.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Chore](t, env), 1)

	status, _ = call(t, r, bo, http.MethodGet, base+"?filter=someday", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, r, bo, http.MethodPut, "/api/chores/"+dishes.ID.String()+"/done", gin.H{"done": true})
	require.Equal(t, http.StatusOK, status)
	done := decode[models.Chore](t, env)
	assert.True(t, done.Done)
	require.NotNil(t, done.CompletedBy)
	assert.Equal(t, bo.ID, *done.CompletedBy)

	status, env = call(t, r, ana, http.MethodPut, "/api/chores/"+bins.ID.String(), gin.H{"name": "Recycling", "assignee_id": ana.ID.String()})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Recycling", decode[models.Chore](t, env).Name)

	status, _ = call(t, r, cy, http.MethodDelete, "/api/chores/"+bins.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, r, ana, http.MethodDelete, base+"/completed", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, decode[map[string]int](t, env)["deleted"])

	status, _ = call(t, r, ana, http.MethodDelete, "/api/chores/"+bins.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, r, ana, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.Chore](t, env))
}

func TestRoommateRequest(t *testing.T) {
	r := setup(t)
	ana := newRoommate(t, r, "Ana")
	dee := newRoommate(t, r, "Dee")
	h := createHousehold(t, r, ana, "Flat")

	status, _ := call(t, r, ana, http.MethodPost, "/api/households/"+h.ID.String()+"/invite", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, r, ana, http.MethodPost, "/api/households/"+h.ID.String()+"/invite", gin.H{"email": dee.Email})
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, r, dee, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	notes := decode[[]models.NotificationResponse](t, env)
	require.Len(t, notes, 1)
	request := notes[0]
	assert.Equal(t, models.NotificationRoommateRequest, request.Type)
	assert.Equal(t, models.RequestPending, request.Status)
	assert.Equal(t, "Ana", request.SenderName)

	status, _ = call(t, r, ana, http.MethodPut, "/api/notifications/"+request.ID.String()+"/respond", gin.H{"action": "accept"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, r, dee, http.MethodPut, "/api/notifications/"+request.ID.String()+"/respond", gin.H{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, r, dee, http.MethodPut, "/api/notifications/"+request.ID.String()+"/respond", gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, _ = call(t, r, dee, http.MethodPut, "/api/notifications/"+request.ID.String()+"/respond", gin.H{"action": "decline"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, r, dee, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, status)
	profile := decode[models.UserResponse](t, env)
	require.NotNil(t, profile.HouseholdID)
	assert.Equal(t, h.ID, *profile.HouseholdID)

	status, _ = call(t, r, dee, http.MethodGet, "/api/households/"+h.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, r, dee, http.MethodPut, "/api/notifications/"+request.ID.String()+"/read", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRoommateDirectory(t *testing.T) {
	r := setup(t)
	ana := newRoommate(t, r, "Ana")
	bo := newRoommate(t, r, "Bo")
	cy := newRoommate(t, r, "Cy")

	status, _ := call(t, r, bo, http.MethodPut, "/api/users/me",
		gin.H{"display_name": "Bo", "habits": "Night owl, Gamer", "noise_preference": "loud", "availability": "weekends"})
	require.Equal(t, http.StatusOK, status)
	status, env := call(t, r, cy, http.MethodPut, "/api/users/me", gin.H{"display_name": "Cy", "habits": "early riser"})
	require.Equal(t, http.StatusOK, status)
	profile := decode[models.UserResponse](t, env)
	assert.Equal(t, "moderate", profile.NoisePreference)
	assert.Equal(t, "flexible", profile.Availability)

	names := func(env envelope) []string {
		users := decode[[]models.UserResponse](t, env)
		out := make([]string, len(users))
		for i, u := range users {
			out[i] = u.DisplayName
		}
		return out
	}

	status, env = call(t, r, ana, http.MethodGet, "/api/users/search", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Bo", "Cy"}, names(env))

	status, env = call(t, r, ana, http.MethodGet, "/api/users/search?q=GAMER", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Bo"}, names(env))

	status, env = call(t, r, ana, http.MethodGet, "/api/users/search?q=cy", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Cy"}, names(env))

	status, env = call(t, r, ana, http.MethodGet, "/api/users/search?availability=flexible", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Cy"}, names(env))

	requestPath := "/api/users/" + bo.ID.String() + "/roommate-request"
	status, _ = call(t, r, ana, http.MethodPost, requestPath, nil)
	assert.Equal(t, http.StatusBadRequest, status, "no active household yet")

	h := createHousehold(t, r, ana, "Flat", cy)
	status, _ = call(t, r, ana, http.MethodPost, "/api/users/"+ana.ID.String()+"/roommate-request", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, r, ana, http.MethodPost, "/api/users/"+cy.ID.String()+"/roommate-request", nil)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = call(t, r, ana, http.MethodPost, "/api/users/"+uuid.NewString()+"/roommate-request", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, r, bo, http.MethodPost, "/api/users/"+ana.ID.String()+"/roommate-request", gin.H{"household_id": h.ID.String()})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, r, ana, http.MethodPost, requestPath, nil)
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = call(t, r, bo, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	notes := decode[[]models.NotificationResponse](t, env)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationRoommateRequest, notes[0].Type)
	require.NotNil(t, notes[0].HouseholdID)
	assert.Equal(t, h.ID, *notes[0].HouseholdID)

	status, _ = call(t, r, bo, http.MethodPut, "/api/notifications/"+notes[0].ID.String()+"/respond", gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, r, bo, http.MethodGet, "/api/households/"+h.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)
}
