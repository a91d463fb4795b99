package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"g2p-curation/services"
	"g2p-curation/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// importFlags are shared by both import commands.
type importFlags struct {
	dataFile         string
	email            string
	output           string
	outputDefinitive string
	requirePMIDs     bool
}

var (
	legacyFlags  importFlags
	currentFlags importFlags
)

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataFile, "data-file", "", "Tab or comma separated input file")
	cmd.Flags().StringVar(&f.email, "email", "", "Email of the curator the changes are attributed to")
	cmd.Flags().StringVar(&f.output, "output", "output_data.txt", "Audit log with one line per input row")
	cmd.Flags().StringVar(&f.outputDefinitive, "output-definitive", "definitive_records_one_publication.txt", "Definitive records supported by a single publication")
	cmd.Flags().BoolVar(&f.requirePMIDs, "require-pmids", false, "Reject rows without any PMID")
	cmd.MarkFlagRequired("data-file")
	cmd.MarkFlagRequired("email")
}

func init() {
	legacyFlags.register(importLegacyCmd)
	currentFlags.register(loadPublicationsCmd)
	rootCmd.AddCommand(importLegacyCmd, loadPublicationsCmd)
}

var importLegacyCmd = &cobra.Command{
	Use:   "import-legacy-pmids",
	Short: "Link reviewed PMIDs from a legacy export to existing records",
	Long: `Link reviewed PMIDs from a legacy export to existing records.

Rows are matched to live records by gene symbol, allelic requirement, variant
consequence and disease name. Rows already marked as updated are skipped.

Usage:
  g2pctl import-legacy-pmids --data-file export.txt --email curator@example.org`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), cmd.OutOrStdout(), services.VariantLegacy, legacyFlags)
	},
}

var loadPublicationsCmd = &cobra.Command{
	Use:   "load-publications",
	Short: "Link new PMIDs to records named by G2P ID",
	Long: `Link new PMIDs to records named by G2P ID.

Matching mined publications of the record are marked as curated.

Usage:
  g2pctl load-publications --data-file publications.txt --email curator@example.org`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), cmd.OutOrStdout(), services.VariantCurrent, currentFlags)
	},
}

func runImport(ctx context.Context, out io.Writer, variant services.Variant, flags importFlags) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.logger.With(zap.String("variant", string(variant)), zap.String("file", flags.dataFile))
	started := time.Now()

	f, err := os.Open(flags.dataFile)
	if err != nil {
		return fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	literature, err := services.NewLiteratureProvider(a.cfg, a.logger)
	if err != nil {
		return err
	}
	reconciler := services.NewReconciler(a.store, services.NewPublicationResolver(a.store, literature, a.logger), a.logger, a.cfg.RecordURLBase)

	// 1. Parse and validate every row before touching the database
	opts := services.ParseOptions{RequirePMIDs: flags.requirePMIDs}
	var result *services.ImportResult
	var runErr error
	switch variant {
	case services.VariantLegacy:
		rows, err := services.ParseLegacyRows(f, opts)
		if err != nil {
			return fmt.Errorf("reading %s: %w", flags.dataFile, err)
		}
		// 2. Reconcile
		result, runErr = reconciler.ImportLegacy(ctx, flags.email, rows)
	default:
		rows, err := services.ParseCurrentRows(f, opts)
		if err != nil {
			return fmt.Errorf("reading %s: %w", flags.dataFile, err)
		}
		result, runErr = reconciler.LoadPublications(ctx, flags.email, rows)
	}

	// 3. Write the audit log, also for aborted runs
	artifacts := map[string][]byte{}
	if result != nil {
		data, err := writeArtifact(flags.output, result.Log)
		if err != nil {
			return err
		}
		artifacts[flags.output] = data
		if result.Report != nil {
			data, err := writeArtifact(flags.outputDefinitive, result.Report)
			if err != nil {
				return err
			}
			artifacts[flags.outputDefinitive] = data
		}
	}

	// 4. Archive
	if a.cfg.ArchiveEnabled() && len(artifacts) > 0 {
		archiver, err := storage.NewArchiver(ctx, a.cfg, log)
		if err != nil {
			log.Error("Archive setup failed", zap.Error(err))
		} else {
			for name, data := range artifacts {
				if _, err := archiver.Upload(ctx, storage.ImportKey(string(variant), started, name), data); err != nil {
					log.Error("Archive upload failed", zap.String("artifact", name), zap.Error(err))
				}
			}
		}
	}

	if runErr != nil {
		log.Error("Import aborted", zap.Int("artifacts_written", len(artifacts)), zap.Error(runErr))
		return runErr
	}
	fmt.Fprintf(out, "%d rows, %d links added, %d publications created, %d definitive records with one publication\n",
		len(result.Log.Entries), result.LinksAdded, result.PublicationsCreated, len(result.Report.Rows))
	return nil
}

// writeArtifact writes src to path and returns the bytes written.
func writeArtifact(path string, src io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := src.WriteTo(&buf); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
