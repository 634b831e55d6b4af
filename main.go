package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chittoorhealth/api/cache"
	"github.com/chittoorhealth/api/config"
	"github.com/chittoorhealth/api/controller"
	"github.com/chittoorhealth/api/dao"
	"github.com/chittoorhealth/api/db"
	"github.com/chittoorhealth/api/export"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/router"
	"github.com/chittoorhealth/api/service"
	"github.com/chittoorhealth/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize MySQL
	if err := db.InitMySQL(); err != nil {
		logger.Fatal("Failed to initialize MySQL", zap.Error(err))
	}
	defer db.CloseMySQL()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Background activity (cache sweep, progress janitor, event bus) lives
	// for the whole process and stops on shutdown via this context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	eventBus.Start(ctx)

	// Process-wide stores, owned here and passed down by reference.
	ttlCache := cache.NewTTLCache(config.GetDuration("cache.defaultTTL"))
	ttlCache.StartSweeper(ctx, config.GetDuration("cache.sweepInterval"))

	progressStore := export.NewProgressStore(
		config.GetDuration("export.terminalRetention"),
		config.GetDuration("export.maxJobAge"),
	)
	progressStore.StartJanitor(ctx, config.GetDuration("export.terminalRetention"))

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	notificationService := util.NewNotificationService()

	// Initialize DAOs
	residentDAO := dao.NewResidentDAO(db.SQL)

	// Initialize export worker and streamer
	worker := export.NewWorker(progressStore, residentDAO, config.GetString("export.outputDir"), config.GetInt("export.batchSize"))
	streamer := export.NewStreamer(progressStore, export.StreamerConfig{
		PollInterval: config.GetDuration("export.pollInterval"),
		MaxPolls:     config.GetInt("export.maxPolls"),
		GraceDelay:   config.GetDuration("export.graceDelay"),
	})

	// Initialize services
	services := &service.Services{
		Resident:  service.NewResidentService(residentDAO, validationUtil, ttlCache, notificationService, eventBus),
		Analytics: service.NewAnalyticsService(residentDAO, ttlCache, config.GetDuration("cache.defaultTTL")),
		Export:    service.NewExportService(progressStore, worker, notificationService),
	}

	// Initialize controllers
	controllers := controller.InitializeControllers(services, streamer)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(
		controllers,
		config.GetString("auth.jwtSecret"),
		100,
		time.Minute,
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
