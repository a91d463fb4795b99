package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"g2p-curation/config"
	"g2p-curation/providers/ols"
	"g2p-curation/services"
	"g2p-curation/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	st, err := store.Open(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Running database auto-migration...", zap.String("driver", cfg.DBDriver))
	if err := st.Migrate(); err != nil {
		logging.Fatal("Migration failed", zap.Error(err))
	}

	// Setup Providers
	literature, err := services.NewLiteratureProvider(cfg, logging)
	if err != nil {
		logging.Fatal("Literature provider setup failed", zap.Error(err))
	}
	logging.Info("Literature provider loaded", zap.String("provider", literature.Name()))

	// Setup Services
	resolver := services.NewPublicationResolver(st, literature, logging)
	deps := apiDeps{
		store:    st,
		catalog:  services.NewCatalog(st, logging),
		diseases: services.NewDiseaseDeduplicator(st, resolver, ols.NewFetcher(cfg, logging), logging),
		resolver: resolver,
	}
	router := newRouter(cfg, deps, logging)

	// Setup Cron
	if cfg.PruneSchedule != "" {
		pruner := services.NewPruner(st, logging, cfg.MinedPublicationCap)
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.PruneSchedule, func() {
			logging.Info("Running scheduled mined publication pruning...")
			res, err := pruner.Prune(context.Background(), cfg.PruneActorEmail)
			if err != nil {
				logging.Error("Cron job failed", zap.Error(err))
				return
			}
			logging.Info("Cron job completed", zap.Int("records", res.RecordsPruned), zap.Int("deleted", res.Deleted))
		})
		if err != nil {
			logging.Fatal("Invalid PRUNE_SCHEDULE", zap.String("schedule", cfg.PruneSchedule), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
