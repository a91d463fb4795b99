package main

import (
	"fmt"

	"g2p-curation/services"

	"github.com/spf13/cobra"
)

var pruneEmail string

func init() {
	pruneCmd.Flags().StringVar(&pruneEmail, "email", "", "Email of the user the deletions are attributed to")
	pruneCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune-mined-publications",
	Short: "Delete mined publications beyond the per-record cap",
	Long: `Delete mined publications beyond the per-record cap.

Records with more than MINED_PUBLICATION_CAP candidates in status "mined" keep
the most recent ones by publication year; candidates without a year go first.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := services.NewPruner(a.store, a.logger, a.cfg.MinedPublicationCap).Prune(cmd.Context(), pruneEmail)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d records, deleted %d mined publications\n", res.RecordsPruned, res.Deleted)
	return nil
}
