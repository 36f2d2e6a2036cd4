package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/logger"
	"github.com/custodia-labs/vidhi/internal/watcher"
)

var (
	ingestDryRun bool
	ingestWatch  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [index] [paths...]",
	Short: "Ingest act JSON files into an index",
	Long: `Normalise, chunk, embed and upsert act JSON files into a configured
index. Directories are scanned (non-recursive) for *.json files.

Chunk IDs are derived from the file and position, so re-ingesting a file
overwrites its chunks instead of duplicating them.

Use --dry-run to count chunks without embedding or writing anything, and
--watch to re-ingest files as they change.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "normalise and chunk only")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest changed files until interrupted")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}
	if ingestWatch && ingestDryRun {
		return fmt.Errorf("--watch cannot be combined with --dry-run")
	}

	index, paths := args[0], args[1:]
	opts := domain.IngestOptions{DryRun: ingestDryRun}

	report, err := ingestService.IngestPaths(cmd.Context(), index, paths, opts)
	if report != nil {
		printIngestReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ingesting into %s: %w", index, err)
	}
	if !ingestWatch {
		if report != nil && len(report.Failed()) > 0 {
			return fmt.Errorf("%d of %d files failed", len(report.Failed()), len(report.Files))
		}
		return nil
	}

	return watchAndIngest(cmd, index, paths, opts)
}

func watchAndIngest(cmd *cobra.Command, index string, paths []string, opts domain.IngestOptions) error {
	w, err := watcher.New(paths, watcher.DefaultDebounce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmd.Printf("Watching %d director%s for changes. Press Ctrl+C to stop.\n", len(w.Dirs()), plural(len(w.Dirs()), "y", "ies"))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		report, err := ingestService.IngestPaths(ctx, index, changed, opts)
		if report != nil {
			printIngestReport(cmd, report)
		}
		if err != nil {
			logger.Error("re-ingesting into %s: %v", index, err)
		}
	})
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	for _, f := range report.Files {
		if f.Err != nil {
			cmd.Printf("  %s %s: %v\n", fail("✗"), f.Path, f.Err)
			continue
		}
		cmd.Printf("  %s %s (%d chunks)\n", ok("✓"), f.Path, f.Chunks)
	}

	verb := "Ingested"
	if report.DryRun {
		verb = "Dry run:"
	}
	cmd.Printf("%s %d/%d files into %s, %d chunks in %s\n",
		bold(verb), report.Succeeded(), len(report.Files), report.Index,
		report.Chunks(), report.Duration.Round(time.Millisecond))
	if report.Aborted != nil {
		cmd.Printf("%s %v\n", fail("Aborted:"), report.Aborted)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
