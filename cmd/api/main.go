package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prepwise/voicelytics/internal/application"
	appcoach "github.com/prepwise/voicelytics/internal/application/coach"
	appvoice "github.com/prepwise/voicelytics/internal/application/voice"
	"github.com/prepwise/voicelytics/internal/config"
	domanalysis "github.com/prepwise/voicelytics/internal/domain/analysis"
	domcoach "github.com/prepwise/voicelytics/internal/domain/coach"
	domsessions "github.com/prepwise/voicelytics/internal/domain/sessions"
	aicoach "github.com/prepwise/voicelytics/internal/infra/ai/openai"
	mysqlp "github.com/prepwise/voicelytics/internal/infra/db/mysql"
	postgresp "github.com/prepwise/voicelytics/internal/infra/db/postgres"
	"github.com/prepwise/voicelytics/internal/infra/httpserver"
	minioStore "github.com/prepwise/voicelytics/internal/infra/storage"
	"github.com/prepwise/voicelytics/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB (mysql default, postgres optional)
	var db *sql.DB
	var analysisRepo domanalysis.Repository
	var sessionRepo domsessions.Repository
	var feedbackRepo domcoach.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		analysisRepo = postgresp.NewAnalysisRepository(db)
		sessionRepo = postgresp.NewSessionRepository(db)
		feedbackRepo = postgresp.NewFeedbackRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		sessionRepo = mysqlp.NewSessionRepository(db)
		feedbackRepo = mysqlp.NewFeedbackRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init services
	voiceSvc := &appvoice.Service{
		Repo:     analysisRepo,
		Sessions: sessionRepo,
		Audio:    store,
		Clock:    application.SystemClock{},
	}
	coachSvc := &appcoach.Service{
		Client: aicoach.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
		Repo:   feedbackRepo,
		Clock:  application.SystemClock{},
	}

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(voiceSvc, coachSvc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
