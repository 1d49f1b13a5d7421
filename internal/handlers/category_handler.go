package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensetracker/internal/models"
)

// CategoryHandler serves the fixed set of expense categories
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoriesResponse lists the accepted expense categories.
type CategoriesResponse struct {
	Categories []models.Category `json:"categories"`
}

// GetCategories returns every accepted category
// @Summary     List categories
// @Description Get the closed set of expense categories
// @Tags        categories
// @Produce     json
// @Success     200 {object} CategoriesResponse "Categories"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{Categories: models.Categories()})
}
