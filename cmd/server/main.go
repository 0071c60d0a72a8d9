// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"beam/internal/admin"
	"beam/internal/document"
	"beam/internal/document/blob"
	docstore "beam/internal/document/store"
	"beam/internal/events"
	"beam/internal/plan"
	planhandler "beam/internal/plan/handler"
	planstore "beam/internal/plan/store"
	"beam/internal/platform/config"
	"beam/internal/platform/httpserver"
	"beam/internal/platform/logger"
	"beam/internal/platform/metrics"
	platformredis "beam/internal/platform/redis"
	registrationhandler "beam/internal/registration/handler"
	registrationmetrics "beam/internal/registration/metrics"
	registrationservice "beam/internal/registration/service"
	companystore "beam/internal/registration/store/company"
	"beam/internal/subscription"
	substore "beam/internal/subscription/store"
	httptransport "beam/internal/transport/http"
	"beam/internal/verification"
	verifstore "beam/internal/verification/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		companies     registrationservice.CompanyStore
		adminCompany  admin.CompanyStore
		documents     document.Store
		plans         plan.Store
		subscriptions interface {
			registrationservice.SubscriptionStore
			admin.SubscriptionStore
			subscription.TrialStore
		}
		db *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		for _, schema := range []string{
			companystore.Schema, docstore.Schema, planstore.Schema, substore.Schema,
		} {
			if _, err := db.ExecContext(ctx, schema); err != nil {
				return err
			}
		}
		companies = companystore.NewPostgres(db)
		adminCompany = companystore.NewPostgres(db)
		documents = docstore.NewPostgres(db)
		plans = planstore.NewPostgres(db)
		subscriptions = substore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		mem := companystore.NewInMemory()
		companies, adminCompany = mem, mem
		documents = docstore.NewInMemory()
		plans = planstore.NewInMemory()
		subscriptions = substore.NewInMemory()
		log.Info("using in-memory stores")
	}

	blobs, err := blob.NewDisk(cfg.ArtifactDir)
	if err != nil {
		return err
	}

	// Redis backs verification token state when configured.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var tokens verification.TokenStore = verifstore.NewInMemory()
	if redisClient != nil {
		defer redisClient.Close()
		tokens = verifstore.NewRedis(redisClient)
		log.Info("using redis verification token store")
	}

	// Events go to Kafka when brokers are configured, to the log otherwise.
	var publisher events.Publisher = events.NewLog(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafka(cfg.Kafka, log)
		if err != nil {
			return err
		}
		publisher = kafka
		log.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	}
	defer publisher.Close()

	var sender verification.Sender = &verification.LogSender{Logger: log}
	if cfg.SendgridAPIKey != "" {
		sender = verification.NewSendgridSender(cfg.SendgridAPIKey, cfg.SenderAddress)
	}

	planService := plan.NewService(plans)
	if err := planService.SeedDefaults(ctx); err != nil {
		return err
	}

	documentService := document.NewService(documents, blobs, cfg.MaxUploadBytes, log)
	regMetrics := registrationmetrics.New()
	registrationService := registrationservice.NewService(
		companies, documentService, planService, subscriptions,
		publisher, regMetrics, cfg.TrialDays, log)

	verificationService := verification.NewService(
		companies, tokens,
		verification.NewTokenIssuer(cfg.VerificationSecret, cfg.VerificationTTL),
		sender, publisher, cfg.VerificationBaseURL, cfg.VerificationResendIn, log)

	adminService := admin.NewService(adminCompany, subscriptions, publisher, log)

	sweeper, err := subscription.NewSweeper(subscriptions, "", log)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	httpMetrics := metrics.New()
	router := httptransport.NewRouter(httptransport.Deps{
		Registration: registrationhandler.New(registrationService, verificationService, cfg.MaxUploadBytes, log),
		Plans:        planhandler.New(planService, log),
		Admin:        admin.NewHandler(adminService, log),
		Metrics:      httpMetrics,
		Config:       cfg,
		Logger:       log,
		Health:       healthChecks(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting beam-api", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func healthChecks(db *sql.DB, redisClient *platformredis.Client) func() map[string]string {
	return func() map[string]string {
		checks := map[string]string{}
		if db != nil {
			checks["postgres"] = "ok"
			if err := db.Ping(); err != nil {
				checks["postgres"] = err.Error()
			}
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Health(context.Background()); err != nil {
				checks["redis"] = err.Error()
			}
		}
		return checks
	}
}
