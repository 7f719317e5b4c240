package router

import (
	"database/sql"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/staffhubio/staffhub/handlers"
	"github.com/staffhubio/staffhub/internal/config"
	"github.com/staffhubio/staffhub/schedule"
	"github.com/staffhubio/staffhub/services"
)

func NewGinRouter(pg *sql.DB, redisClient *redis.Client) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	limits := schedule.HourLimits{
		WeeklyCapMinutes: config.App.Scheduling.WeeklyHourCap * 60,
		DailyCapMinutes:  config.App.Scheduling.DailyHourCap * 60,
	}

	// Initialize services
	notifyService, err := services.NewNotifyService(pg, config.App.FCMCredentialsFile)
	if err != nil {
		log.Printf("Warning: Failed to initialize notify service: %v", err)
	}
	authService := services.NewAuthService(pg, redisClient, config.App.JWTSecret,
		time.Duration(config.App.TokenTTLHours)*time.Hour)
	employeeService := services.NewEmployeeService(pg)
	leaveService := services.NewLeaveService(pg)
	rotationService := services.NewRotationService(pg)
	shiftService := services.NewShiftService(pg, leaveService, rotationService, notifyService, limits)
	coverageService := services.NewCoverageService(pg, redisClient, shiftService, employeeService,
		config.App.Scheduling.RequiredStaffPerDay,
		time.Duration(config.App.Scheduling.CoverageCacheSeconds)*time.Second)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, employeeService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService, authService)
	leaveHandler := handlers.NewLeaveHandler(leaveService)
	rotationHandler := handlers.NewRotationHandler(rotationService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	coverageHandler := handlers.NewCoverageHandler(coverageService)

	// Initialize middleware
	authMiddleware := handlers.NewAuthMiddleware(authService)

	// PUBLIC ENDPOINTS (no authentication required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/auth/login", authHandler.Login)

	// PROTECTED ENDPOINTS
	protected := r.Group("/")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		// EMPLOYEE DIRECTORY
		employeeRoutes := protected.Group("/employees")
		{
			employeeRoutes.GET("", employeeHandler.ListEmployees)
			employeeRoutes.GET("/:id", employeeHandler.GetEmployee)
			employeeRoutes.POST("",
				authMiddleware.RequireRole("admin", "hr"),
				employeeHandler.CreateEmployee)
			employeeRoutes.PUT("/:id",
				authMiddleware.RequireRole("admin", "hr"),
				employeeHandler.UpdateEmployee)
		}

		protected.GET("/departments", employeeHandler.ListDepartments)

		// ROTATION MANAGEMENT
		rotationRoutes := protected.Group("/rotations")
		{
			rotationRoutes.GET("", rotationHandler.ListRotations)
			rotationRoutes.GET("/:id", rotationHandler.GetRotation)
			rotationRoutes.GET("/:id/calendar", rotationHandler.GetRotationCalendar)
			rotationRoutes.GET("/:id/stats", rotationHandler.GetRotationStats)

			rotationRoutes.POST("",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				rotationHandler.CreateRotation)
			rotationRoutes.PUT("/:id",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				rotationHandler.UpdateRotation)
			rotationRoutes.DELETE("/:id",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				rotationHandler.DeactivateRotation)
		}

		// SHIFT ASSIGNMENTS
		shiftRoutes := protected.Group("/shifts")
		{
			shiftRoutes.GET("", shiftHandler.ListShifts)
			shiftRoutes.GET("/:id", shiftHandler.GetShift)
			shiftRoutes.POST("/check", shiftHandler.CheckShift)

			shiftRoutes.POST("",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				shiftHandler.CreateShift)
			shiftRoutes.POST("/bulk",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				shiftHandler.BulkCreateShifts)
			shiftRoutes.PUT("/:id",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				shiftHandler.UpdateShift)
			shiftRoutes.DELETE("/:id",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				shiftHandler.CancelShift)
			shiftRoutes.POST("/:id/overtime",
				authMiddleware.RequireRole("admin", "hr", "scheduler"),
				shiftHandler.MarkOvertime)
		}

		// LEAVE MANAGEMENT
		leaveRoutes := protected.Group("/leave")
		{
			leaveRoutes.GET("", leaveHandler.ListLeave)
			leaveRoutes.POST("", leaveHandler.CreateLeave)
			leaveRoutes.PUT("/:id/status",
				authMiddleware.RequireRole("admin", "hr"),
				leaveHandler.SetLeaveStatus)
		}

		// COVERAGE ANALYTICS
		coverageRoutes := protected.Group("/coverage")
		{
			coverageRoutes.GET("", coverageHandler.GetCoverageReport)
			coverageRoutes.GET("/export", coverageHandler.ExportCoverageCSV)
		}
	}

	return r
}
