package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/middleware"
	"expensetracker/internal/uuid"
)

// getUserID returns the identity AuthMiddleware put on the request context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, ok := middleware.IdentityFrom(c.Request.Context())
	if !ok {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parseExpenseID returns the canonical form of the :id path parameter.
// Malformed IDs are rejected before any lookup.
func parseExpenseID(c *gin.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", apperrors.ErrInvalidExpenseID
	}
	return id, nil
}

// respondWithError writes err in the shared error shape.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// ErrorResponse represents an error response.
type ErrorResponse = middleware.ErrorResponse

// DataResponse wraps a successful payload.
type DataResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

func respondWithData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, DataResponse{Success: true, Data: data})
}
