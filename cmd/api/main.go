package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riajames27/company-user-REST/internal/admin"
	"github.com/riajames27/company-user-REST/internal/broker"
	"github.com/riajames27/company-user-REST/internal/config"
	"github.com/riajames27/company-user-REST/internal/db"
	"github.com/riajames27/company-user-REST/internal/geo"
	"github.com/riajames27/company-user-REST/internal/handlers"
	"github.com/riajames27/company-user-REST/internal/metrics"
	"github.com/riajames27/company-user-REST/internal/repository"
)

func main() {
	cfg := config.Load()

	_ = config.InitLogger(cfg.LogLevel)
	slog.Info("starting", "port", cfg.Port)

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres connect error: %v", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.EnsureSchema(context.Background(), database); err != nil {
		log.Fatalf("schema error: %v", err)
	}

	locator := geo.NewNominatim(cfg.GeocoderURL, cfg.GeocoderTimeout)
	companyRepo := repository.NewCompanyRepository(database)
	userRepo := repository.NewUserRepository(database)

	// HOOK: admin job (one-off)
	task := flag.String("task", "", "admin task: seed")
	flag.Parse()
	if *task != "" {
		switch *task {
		case "seed":
			if err := admin.SeedCompanies(context.Background(), companyRepo, locator, slog.Default()); err != nil {
				slog.Error("seed_failed", "err", err)
				os.Exit(1)
			}
			slog.Info("seed_done")
			return // exits without serving HTTP
		default:
			slog.Error("unknown_admin_task", "task", *task)
			os.Exit(2)
		}
	}

	pub, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbitmq connect error: %v", err)
	}
	defer pub.Close()

	ch := handlers.NewCompanyHandler(companyRepo, locator, pub)
	uh := handlers.NewUserHandler(userRepo, pub)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", ch.Health)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/companies", ch.Companies)
	mux.HandleFunc("/api/companies/", ch.CompanyByID)
	mux.HandleFunc("/api/users", uh.Users)
	mux.HandleFunc("/api/users/", uh.UserByID)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logMiddleware(metrics.Middleware(mux)),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown error", "err", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "dur", fmtDuration(time.Since(start)))
	})
}

func fmtDuration(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
