// Package cli provides the vidhi command-line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services injected by the composition root.
var (
	conversations    driving.ConversationFactory
	retrievalService driving.RetrievalService
	ingestService    driving.IngestService
	sessionService   driving.SessionService
	settingsService  driving.SettingsService
)

var (
	errAnswerNotConfigured   = errors.New("answer service not configured")
	errIngestNotConfigured   = errors.New("ingest service not configured")
	errSessionNotConfigured  = errors.New("session service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)

// Services holds the driving ports used by commands. Nil fields leave the
// matching commands reporting "not configured".
type Services struct {
	Conversations driving.ConversationFactory
	Retrieval     driving.RetrievalService
	Ingest        driving.IngestService
	Sessions      driving.SessionService
	Settings      driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "vidhi",
	Short: "Ask questions about Indian law",
	Long: `Vidhi answers questions about the Constitution of India and the
criminal codes using retrieval over locally ingested acts.

Ingest act JSON files with 'vidhi ingest', then ask with 'vidhi ask' or
start an interactive session with 'vidhi chat'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics")
}

// SetServices injects the driving ports.
func SetServices(s Services) {
	conversations = s.Conversations
	retrievalService = s.Retrieval
	ingestService = s.Ingest
	sessionService = s.Sessions
	settingsService = s.Settings
}

// SetVersion sets the version reported by 'vidhi version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
