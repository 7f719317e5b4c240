package main

import (
	"database/sql"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/staffhubio/staffhub/internal/config"
	"github.com/staffhubio/staffhub/schedule"
	"github.com/staffhubio/staffhub/services"
	"github.com/staffhubio/staffhub/workers"
)

func main() {
	log.Println("Starting workers...")

	// Load Config
	configPath := os.Getenv("STAFFHUB_CONFIG_PATH")

	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Database connection
	if config.App.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable (or config) is required")
	}

	pg, err := sql.Open("postgres", config.App.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	// Test database connection
	if err := pg.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Set timezone to UTC for consistent time handling
	if _, err := pg.Exec("SET TIME ZONE 'UTC'"); err != nil {
		log.Printf("Failed to set timezone to UTC: %v", err)
	}

	log.Println("  Connected to database successfully")

	var redisClient *redis.Client
	if config.App.RedisURL != "" {
		opts, err := redis.ParseURL(config.App.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	// Initialize services
	limits := schedule.HourLimits{
		WeeklyCapMinutes: config.App.Scheduling.WeeklyHourCap * 60,
		DailyCapMinutes:  config.App.Scheduling.DailyHourCap * 60,
	}
	notifyService, _ := services.NewNotifyService(pg, config.App.FCMCredentialsFile)
	employeeService := services.NewEmployeeService(pg)
	leaveService := services.NewLeaveService(pg)
	rotationService := services.NewRotationService(pg)
	shiftService := services.NewShiftService(pg, leaveService, rotationService, notifyService, limits)
	coverageService := services.NewCoverageService(pg, redisClient, shiftService, employeeService,
		config.App.Scheduling.RequiredStaffPerDay,
		time.Duration(config.App.Scheduling.CoverageCacheSeconds)*time.Second)

	// Initialize workers
	rotationWorker := workers.NewRotationWorker(pg, rotationService, shiftService,
		config.App.Scheduling.RotationWeeksAhead)
	coverageWorker := workers.NewCoverageWorker(coverageService,
		time.Duration(config.App.Scheduling.CoverageRefreshMinutes)*time.Minute)

	// Start workers in separate goroutines
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("Starting rotation worker...")
		rotationWorker.StartRotationWorker()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("Starting coverage worker...")
		coverageWorker.StartCoverageWorker()
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, exiting...")
}
