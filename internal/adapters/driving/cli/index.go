package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect configured indexes",
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexes and their state",
	Long: `List every configured index in query order with its vector store
collection, readiness and record count.`,
	RunE: runIndexList,
}

func init() {
	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	statuses, err := ingestService.Indexes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to describe indexes: %w", err)
	}
	if len(statuses) == 0 {
		cmd.Println("No indexes configured.")
		return nil
	}

	cmd.Println("Indexes:")
	cmd.Println()
	for _, s := range statuses {
		d := s.Description
		if d == nil || d.Dimension == 0 {
			cmd.Printf("  %-14s %-14s not created\n", s.Binding.Name, s.Binding.Collection)
			continue
		}
		state := "ready"
		if !d.Ready {
			state = "initialising"
		}
		cmd.Printf("  %-14s %-14s %-12s dim=%d metric=%s records=%d\n",
			s.Binding.Name, s.Binding.Collection, state, d.Dimension, d.Metric, d.Count)
	}
	return nil
}
