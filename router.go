package main

import (
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/handlers"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupRouter(cfg *config.Config, db *gorm.DB, authService services.AuthService, taskService services.TaskService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestID())
	router.Use(monitoring.MetricsMiddleware())

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		router.Use(limiter.Middleware())
	}

	authHandler := handlers.NewAuthHandler(db, authService)
	taskHandler := handlers.NewTaskHandler(db, taskService)

	api := router.Group("/api")
	{
		api.POST("/signup", authHandler.Signup)
		api.POST("/signin", authHandler.Signin)

		todos := api.Group("/todos")
		todos.Use(middleware.AuthRequired(authService))
		{
			todos.GET("", taskHandler.GetTodos)
			todos.POST("", taskHandler.CreateTodo)
			todos.PUT("/:id", taskHandler.UpdateTodo)
			todos.DELETE("/:id", taskHandler.DeleteTodo)
		}
	}

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/health/live", monitoring.LivenessHandler())
	router.GET("/health/ready", monitoring.ReadinessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	return router
}
