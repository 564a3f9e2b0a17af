package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/techsupport-client/config"
	"github.com/kendall-kelly/techsupport-client/controllers"
	"github.com/kendall-kelly/techsupport-client/middleware"
	"github.com/kendall-kelly/techsupport-client/models"
	"github.com/kendall-kelly/techsupport-client/services"
	"gorm.io/gorm"
)

// App is every long-lived component of the client, built once at startup
type App struct {
	Config  *config.Config
	API     *services.APIClient
	Session *services.SessionStore
	Handler *controllers.Handler
}

func main() {
	log.Println("Starting TechSupport Pro client...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Connect to the local token store
	if err := config.ConnectDatabase(cfg.TokenStoreURL); err != nil {
		log.Fatalf("Failed to connect to token store: %v", err)
	}

	ctx := context.Background()
	app, err := newApp(ctx, cfg, config.GetDB())
	if err != nil {
		log.Fatalf("Failed to initialize client: %v", err)
	}

	// Restore a persisted session before serving
	if err := app.Session.Init(ctx); err != nil {
		log.Printf("Session restore failed, starting logged out: %v", err)
	}

	router := setupRouter(app.Handler, cfg)

	port := ":" + cfg.Port
	log.Printf("Client is running on %s", cfg.OriginURL)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newApp wires the components together. The receipt archive is optional.
func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	tokens, err := services.NewGormTokenStore(db)
	if err != nil {
		return nil, err
	}

	api := services.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout)
	poller := services.NewNotificationPoller(api, cfg.NotificationPollInterval)
	session := services.NewSessionStore(api, tokens, poller)

	interventions := services.NewInterventionService(api)
	checkout := services.NewCheckoutService(api)

	var receipts services.ReceiptStore
	if cfg.ReceiptsEnabled() {
		store, err := services.NewS3ReceiptStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		receipts = store
		log.Printf("Receipt archive enabled (bucket %s)", cfg.AWSReceiptBucket)
	}

	payments := services.NewPaymentChecker(checkout, receipts,
		services.WithPollDelay(cfg.PaymentPollDelay),
		services.WithMaxAttempts(cfg.PaymentPollMaxAttempts),
	)

	// No device position is available to a local shell; the request is made and logged only
	dashboards := services.NewDashboards(interventions, checkout, services.StaticLocator{}, cfg.OriginURL)
	mapsClient := &http.Client{Timeout: 10 * time.Second}
	maps := services.NewScriptLoader(cfg.MapsAPIKey, mapsClient)
	if cfg.MapsScriptURL != "" {
		maps = services.NewScriptLoaderWithURL(cfg.MapsScriptURL, mapsClient)
	}

	handler := controllers.NewHandler(session, dashboards, services.NewMessageService(api), payments, maps)

	return &App{
		Config:  cfg,
		API:     api,
		Session: session,
		Handler: handler,
	}, nil
}

// setupRouter builds the local shell routes
func setupRouter(h *controllers.Handler, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.OriginURL}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Token store status endpoint
		v1.GET("/store/status", storeStatus)
	}

	// Views
	router.GET("/", h.ShowView)
	router.GET("/payment-success", h.ShowView)
	router.NoRoute(fallbackView(h))

	// Session
	router.GET("/session", h.GetSession)
	router.POST("/session/login", h.Login)
	router.POST("/session/register", h.Register)
	router.POST("/session/logout", h.Logout)

	authed := router.Group("/", middleware.RequireSession(h.Session))
	{
		authed.GET("/notifications", h.ListNotifications)
		authed.PUT("/notifications/:id/read", h.MarkNotificationRead)

		authed.GET("/interventions", h.ListInterventions)
		authed.GET("/interventions/:id/messages", h.ListMessages)
		authed.POST("/interventions/:id/messages", h.SendMessage)

		customer := authed.Group("/", middleware.RequireUserType(models.UserTypeUser))
		customer.POST("/interventions", h.CreateIntervention)
		customer.POST("/interventions/:id/pay", h.PayIntervention)

		technician := authed.Group("/", middleware.RequireUserType(models.UserTypeTechnician, models.UserTypeAdmin))
		technician.PUT("/interventions/:id/assign", h.AssignIntervention)
		technician.PUT("/interventions/:id/price", h.ProposePrice)
		technician.PUT("/interventions/:id/start", h.StartIntervention)
		technician.PUT("/interventions/:id/complete", h.CompleteIntervention)
		technician.PUT("/technicians/availability", h.ToggleAvailability)
	}

	return router
}

// fallbackView sends unknown GET paths to the dashboard route
func fallbackView(h *controllers.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Route not found",
				},
			})
			return
		}
		h.ShowView(c)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "TechSupport Pro client is running",
	})
}

// storeStatus checks token store connectivity and returns table information
func storeStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Token store not initialized",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Token store connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Token store connected",
		"tables":  tables,
	})
}
