// Package router assembles the HTTP routes of the expense tracker API.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "expensetracker/internal/docs" // Import swagger docs
	"expensetracker/internal/handlers"
	"expensetracker/internal/middleware"
	"expensetracker/internal/services"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Users          services.UserServicer
	Expenses       services.ExpenseServicer
	Audit          services.AuditServicer
	Tokens         *middleware.TokenManager
	DB             handlers.Pinger
	AllowedOrigins []string
	Swagger        bool
}

// New builds the Gin engine with global middleware and every route under
// /api.
func New(deps Deps) *gin.Engine {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	expenseHandler := handlers.NewExpenseHandler(deps.Expenses, deps.Audit)
	categoryHandler := handlers.NewCategoryHandler()
	healthHandler := handlers.NewHealthHandler(deps.DB)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	if deps.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := router.Group("/api")

	// Public routes
	api.GET("/health", healthHandler.Health)
	api.GET("/categories", categoryHandler.GetCategories)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	requireAuth := middleware.AuthMiddleware(deps.Tokens, deps.Users)

	auth.GET("/user", requireAuth, authHandler.GetUser)

	expenses := api.Group("/expenses", requireAuth)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/monthly", expenseHandler.GetMonthlySummary)
	expenses.GET("/analytics", expenseHandler.GetAnalytics)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	return router
}
