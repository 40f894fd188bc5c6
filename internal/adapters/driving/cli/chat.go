package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/adapters/driving/tui/views/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Reads questions line by line and answers each one, like 'thorr ask'.
Type sair, exit or quit (or press Ctrl+D) to leave.

Prompt files edited while the chat runs are picked up before the next
question.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	svc, err := assistant(cmd.Context())
	if err != nil {
		return err
	}

	opts := renderOptions(cmd.OutOrStdout())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	events := promptEvents

	cmd.Printf("thorr %s. %d tables loaded. Type sair to leave.\n", version, len(svc.Tables()))
	for {
		events = drainPromptEvents(cmd, events)
		cmd.Print("\n> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if chat.IsExitWord(question) {
			return nil
		}

		answer, err := svc.Ask(cmd.Context(), question)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		cmd.Print(render.Answer(answer, opts))
	}
}

// drainPromptEvents reports reloads that happened since the last question
// without blocking. It returns nil once the channel is closed.
func drainPromptEvents(cmd *cobra.Command, events <-chan string) <-chan string {
	for events != nil {
		select {
		case name, ok := <-events:
			if !ok {
				return nil
			}
			cmd.Printf("(prompt %s reloaded)\n", name)
		default:
			return events
		}
	}
	return nil
}
