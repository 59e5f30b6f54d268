package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billboard-service/analyzer"
	"billboard-service/analyzer/detector"
	"billboard-service/analyzer/gemini"
	"billboard-service/config"
	"billboard-service/database"
	"billboard-service/handlers"
	"billboard-service/metrics"
	"billboard-service/middleware"
	"billboard-service/notify"
	"billboard-service/rabbitmq"
	"billboard-service/storage"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}
	if cfg.DetectorURL == "" {
		log.Fatal("DETECTOR_URL environment variable is required")
	}

	db, err := setupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	store, err := storage.NewStore(cfg.UploadsDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	authService := database.NewAuthService(db, cfg.JWTSecret)
	reportService := database.NewReportService(db)

	var publisher analyzer.Publisher
	if cfg.AMQPURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			// Analysis still works without downstream publishing.
			log.Warnf("Failed to initialize RabbitMQ publisher: %v", err)
		} else {
			publisher = p
			defer p.Close()
		}
	}

	metrics.Register()

	analysisService := analyzer.NewService(
		detector.NewClient(cfg.DetectorURL),
		gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel),
		reportService,
		publisher,
		cfg.AnalysisTimeout,
	)

	notifier := notify.NewNotifier(cfg.SendGridAPIKey, cfg.SendGridFromName, cfg.SendGridFromEmail, cfg.MunicipalityEmail)

	router := setupRouter(cfg, authService, reportService, analysisService, store, notifier)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Billboard service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
}

func setupDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func setupRouter(cfg *config.Config, auth *database.AuthService, reports *database.ReportService,
	analysis *analyzer.Service, store *storage.Store, notifier *notify.Notifier) *gin.Engine {

	router := gin.Default()
	router.SetTrustedProxies(cfg.TrustedProxies)

	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())

	h := handlers.NewHandlers(auth, reports, analysis, store, notifier)

	// Public routes
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.Static("/uploads", store.Dir())

	// Protected routes
	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		protected.GET("/my-billboards", h.ListMyBillboards)
		protected.GET("/my-billboards/:id", h.GetBillboard)
		protected.PATCH("/my-billboards/:id", h.UpdateBillboardStatus)
		protected.POST("/analyze-hybrid", h.AnalyzeHybrid)
		protected.GET("/heatmap", h.Heatmap)
	}

	return router
}
