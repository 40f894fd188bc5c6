package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/thorr/internal/adapters/driving/render"
	"github.com/custodia-labs/thorr/internal/core/domain"
	"github.com/custodia-labs/thorr/internal/core/ports/driving"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question",
	Long: `Classifies the question and answers it: data questions become SQL that is
run against the store, questions about the data's meaning are answered from
the schema, and anything else gets a conversational reply.`,
	Example: `  thorr ask "quantas unidades existem no 3º andar?"
  thorr ask --json "qual a área média das unidades do Edifício Sol?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var sqlJSON bool

var sqlCmd = &cobra.Command{
	Use:   "sql <question>",
	Short: "Generate SQL for a question",
	Long: `Skips intent classification and goes straight to table retrieval, column
refinement and SQL generation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	sqlCmd.Flags().BoolVar(&sqlJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sqlCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	return answerWith(cmd, args, askJSON, driving.AssistantService.Ask)
}

func runSQL(cmd *cobra.Command, args []string) error {
	return answerWith(cmd, args, sqlJSON, driving.AssistantService.GenerateSQL)
}

type answerFunc func(driving.AssistantService, context.Context, string) (*domain.Answer, error)

func answerWith(cmd *cobra.Command, args []string, asJSON bool, fn answerFunc) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty: %w", domain.ErrInvalidInput)
	}

	svc, err := assistant(cmd.Context())
	if err != nil {
		return err
	}

	answer, err := fn(svc, cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if asJSON {
		return outputAnswerJSON(cmd, answer)
	}
	cmd.Print(render.Answer(answer, renderOptions(cmd.OutOrStdout())))
	return nil
}

// answerJSON is the machine-readable form of an answer.
type answerJSON struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Intent   string   `json:"intent"`
	Kind     string   `json:"kind"`
	Text     string   `json:"text,omitempty"`
	SQL      string   `json:"sql,omitempty"`
	Tables   []string `json:"tables,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	Rows     [][]any  `json:"rows,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := answerJSON{
		ID:       answer.ID,
		Question: answer.Question,
		Intent:   answer.Intent.String(),
		Kind:     string(answer.Kind),
		Text:     answer.Text,
		SQL:      answer.SQL,
		Tables:   answer.Tables,
	}
	if answer.Result != nil {
		out.Columns = answer.Result.Columns
		out.Rows = answer.Result.Rows
	}
	if answer.Err != nil {
		out.Error = answer.Err.Error()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
