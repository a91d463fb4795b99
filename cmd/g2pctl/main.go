// Package main provides the g2pctl maintenance CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"g2p-curation/config"
	"g2p-curation/services"
	"g2p-curation/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "g2pctl",
	Short: "Maintenance commands for the G2P curation database",
	Long: `g2pctl runs the batch jobs of the G2P curation database.

Commands:
  migrate                    create or update the database tables
  import-legacy-pmids        link reviewed PMIDs from a legacy export
  load-publications          link new PMIDs to records named by G2P ID
  prune-mined-publications   keep the most recent mined publications per record

Configuration is read from the environment (and an optional .env file).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

func newApp() (*app, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, &configError{err}
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, &configError{err}
	}
	return &app{cfg: cfg, logger: logger, store: st}, nil
}

func (a *app) close() {
	_ = a.store.Close()
	_ = a.logger.Sync()
}

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// exitCode classifies a command error.
func exitCode(err error) int {
	var cfgErr *configError
	var rowErr *services.RowError
	var integrityErr *services.DataIntegrityError
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &rowErr), errors.As(err, &integrityErr),
		errors.Is(err, services.ErrRecordNotFound), errors.Is(err, services.ErrInvalidPublicationID),
		errors.Is(err, services.ErrUnknownUser):
		return ExitDataError
	default:
		return ExitError
	}
}
