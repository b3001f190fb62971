package utils

import (
	"errors"
	"net/http"

	"cohabit-backend/finance"
	"cohabit-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// Standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, APIResponse{
		Success: false,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// HandleError maps domain errors onto status codes.
func HandleError(c *gin.Context, err error) {
	var verr *finance.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequest(c, verr.Error())
	case errors.Is(err, models.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, models.ErrNotMember), errors.Is(err, models.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, models.ErrInvalidInviteCode), errors.Is(err, models.ErrNoHousehold):
		BadRequest(c, err.Error())
	case errors.Is(err, models.ErrAlreadyMember):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		InternalError(c, "Something went wrong")
	}
}

// Get current user ID from context (set by auth middleware)
func GetCurrentUserID(c *gin.Context) uuid.UUID {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil
	}
	id, _ := userID.(uuid.UUID)
	return id
}

func GetCurrentEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

// ParamUUID parses a path parameter, answering 400 when it is malformed.
func ParamUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

// Round to 2 decimal places
func RoundToTwo(val float64) float64 {
	return finance.Round(val)
}

// Pagination helpers
type PaginationQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

func (p *PaginationQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}
