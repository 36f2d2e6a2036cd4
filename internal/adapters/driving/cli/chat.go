package cli

import (
	"bufio"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vidhi/internal/adapters/driving/tui"
)

var chatPlain bool

// stdinIsTerminal reports whether the TUI can take over the terminal.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive legal Q&A session",
	Long: `Start a conversation. Every exchange is recorded in one session.

On a terminal this opens the interactive UI:
  Enter    - Ask
  Ctrl+O   - Toggle sources
  Ctrl+N   - New session
  Ctrl+S   - Browse recorded sessions
  F1       - Help
  Ctrl+C   - Quit

When input is piped, or with --plain, questions are read one per line and
'exit' or end of input stops the session.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line mode even on a terminal")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if conversations == nil {
		return errAnswerNotConfigured
	}
	if chatPlain || !stdinIsTerminal() {
		return runChatLines(cmd)
	}
	return runChatTUI(cmd)
}

func runChatTUI(cmd *cobra.Command) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := tui.NewPorts(conversations, sessionService)
	ports.Settings = settingsService

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runChatLines(cmd *cobra.Command) error {
	conversation := conversations.NewConversation()
	you := color.New(color.FgGreen, color.Bold).SprintFunc()
	vidhi := color.New(color.FgCyan, color.Bold).SprintFunc()

	cmd.Printf("Session %s. Type 'exit' to quit.\n\n", conversation.SessionID())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print(you("You: "))
		if !scanner.Scan() {
			cmd.Println()
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") || strings.EqualFold(question, "quit") {
			break
		}

		cmd.Print(vidhi("Vidhi: "))
		cmd.Println(conversation.Ask(cmd.Context(), question))
		cmd.Println()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
