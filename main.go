package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"store-monitoring/internal/audit"
	"store-monitoring/internal/auth"
	catalog "store-monitoring/internal/catalog/domain"
	catalogrepo "store-monitoring/internal/catalog/infrastructure/postgres"
	"store-monitoring/internal/eventing"
	"store-monitoring/internal/observability/metrics"
	observationsrepo "store-monitoring/internal/observations/infrastructure/postgres"
	reportapp "store-monitoring/internal/report/application"
	reportrepo "store-monitoring/internal/report/infrastructure/postgres"
	reporthttp "store-monitoring/internal/report/interfaces/http"
	reportmetrics "store-monitoring/internal/report/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	reportCfg, err := reportapp.LoadConfig()
	if err != nil {
		logger.Fatalf("report config error: %v", err)
	}

	catalogRepo, err := catalogrepo.NewRepository(db)
	if err != nil {
		logger.Fatalf("catalog repository error: %v", err)
	}
	observationRepo, err := observationsrepo.NewRepository(db)
	if err != nil {
		logger.Fatalf("observation repository error: %v", err)
	}
	jobRepo, err := reportrepo.NewJobRepository(db)
	if err != nil {
		logger.Fatalf("job repository error: %v", err)
	}

	resolver, err := catalog.NewResolver(catalogRepo, reportCfg.DefaultTimezone)
	if err != nil {
		logger.Fatalf("schedule resolver error: %v", err)
	}

	bus := eventing.NewInMemoryEventBus()
	bus.SubscribeEnvelope(func(_ context.Context, envelope eventing.Envelope) error {
		logger.Printf("event=bus_publish event_id=%s event_type=%s job_id=%s",
			envelope.EventID, envelope.EventType, envelope.JobID)
		return nil
	})

	orchestrator, err := reportapp.NewOrchestrator(
		jobRepo,
		observationRepo,
		resolver,
		bus,
		reportmetrics.New(),
		logger,
		reportapp.SystemClock{},
		reportCfg.Workers,
	)
	if err != nil {
		logger.Fatalf("report orchestrator error: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if reportCfg.Schedule.Enabled {
		scheduler := reportapp.NewScheduler(orchestrator, reportCfg.Schedule.DailyAt, logger)
		go scheduler.Start(rootCtx)
	}

	reportHandler, err := reporthttp.NewHandler(orchestrator, auditRepo)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports/trigger", reportHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server error: %v", err)
	}

	// Let in-flight report jobs reach a terminal state before exiting.
	orchestrator.Wait()
	logger.Printf("shutdown complete")
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		elapsed := time.Since(start)
		metrics.ObserveHTTP(r.Method, strconv.Itoa(resp.status), elapsed)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, elapsed)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
