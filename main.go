package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filevault/config"
	"filevault/database"
	"filevault/routes"
	"filevault/storage"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Start(); err != nil {
		logrus.Fatalf("Failed to start application: %v", err)
	}
}

// Application wires configuration, storage and the HTTP server together.
type Application struct {
	config *config.Config
	server *http.Server
	router *gin.Engine
	blobs  storage.Client
}

func NewApplication() (*Application, error) {
	cfg := config.LoadConfig()
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	setupLogging(cfg)
	utils.InitJWT(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := setupRouter(cfg)

	app := &Application{
		config: cfg,
		router: router,
		server: &http.Server{
			Addr:         cfg.GetServerAddress(),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	return app, nil
}

func setupLogging(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// Start brings up the database, storage and HTTP server, then blocks
// until a shutdown signal arrives.
func (app *Application) Start() error {
	logrus.Infof("Starting %s v%s in %s mode",
		app.config.AppName,
		app.config.AppVersion,
		app.config.Environment)

	if err := app.initializeDatabase(); err != nil {
		return err
	}

	if err := app.initializeStorage(); err != nil {
		return err
	}

	routes.SetupRoutes(app.router, app.blobs)

	go func() {
		logrus.Infof("Server starting on %s", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
	return nil
}

func (app *Application) initializeDatabase() error {
	logrus.Info("Connecting to database...")

	if err := database.Connect(app.config.MongoURI, app.config.DBName); err != nil {
		return err
	}

	if err := database.EnsureIndexes(); err != nil {
		return err
	}

	logrus.Info("Database ready")
	return nil
}

func (app *Application) initializeStorage() error {
	logrus.Infof("Initializing %s storage...", app.config.StorageProvider)

	blobs, err := storage.NewClient(app.config)
	if err != nil {
		return err
	}

	if err := blobs.HealthCheck(); err != nil {
		logrus.WithError(err).Warn("Storage health check failed")
	}

	app.blobs = blobs
	return nil
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	// Health check endpoints sit outside the API middleware chain.
	router.GET("/health", healthCheckHandler())
	router.GET("/version", versionHandler())

	router.Static("/public", "./public")
	if cfg.StorageProvider == "local" {
		router.Static("/uploads", cfg.UploadPath)
	}

	return router
}

func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logrus.Info("Shutdown signal received...")

	app.shutdown()
}

func (app *Application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	if err := database.Disconnect(); err != nil {
		logrus.Errorf("Error closing database: %v", err)
	}

	logrus.Info("Server shutdown complete")
}

func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"service":   "filevault",
			"version":   config.AppConfig.AppVersion,
			"timestamp": time.Now().Unix(),
		}

		if database.GetDatabase() != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := database.GetDatabase().Client().Ping(ctx, nil); err != nil {
				health["status"] = "degraded"
				health["database"] = "unhealthy"
			} else {
				health["database"] = "healthy"
			}
		}

		c.JSON(http.StatusOK, health)
	}
}

func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        config.AppConfig.AppName,
			"version":     config.AppConfig.AppVersion,
			"environment": config.AppConfig.Environment,
		})
	}
}
