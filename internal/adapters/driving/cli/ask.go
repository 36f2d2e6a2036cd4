package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

var askSources bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single legal question",
	Long: `Ask one question and print the answer. The exchange is recorded as a
new session.

Use --sources to list the provisions the answer was grounded on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the provisions behind the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if conversations == nil {
		return errAnswerNotConfigured
	}

	question := strings.Join(args, " ")
	answer := conversations.NewConversation().AskDetailed(cmd.Context(), question)
	if answer == nil {
		return fmt.Errorf("no answer for %q", question)
	}

	cmd.Println(answer.Text)
	if askSources {
		printSources(cmd, answer.Sources)
	}
	if answer.Status == domain.AnswerError {
		return fmt.Errorf("answering failed (session %s)", answer.SessionID)
	}
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.Match) {
	if len(sources) == 0 {
		return
	}
	heading := color.New(color.Bold).SprintFunc()
	tag := color.New(color.FgYellow).SprintFunc()

	cmd.Println()
	cmd.Println(heading("Sources:"))
	for i, m := range sources {
		cmd.Printf("  %d. %s %s (%.3f)\n", i+1, tag("["+m.Source()+"]"), matchHeading(m), m.Score)
	}
}

// matchHeading labels a match by section number and title, falling back
// to the chunk ID.
func matchHeading(m domain.Match) string {
	number := domain.MetaString(m.Metadata, domain.MetaSectionNumber)
	title := domain.MetaString(m.Metadata, domain.MetaSectionTitle)
	switch {
	case number != "" && title != "":
		return number + ". " + title
	case title != "":
		return title
	case number != "":
		return number
	default:
		return m.ID
	}
}
