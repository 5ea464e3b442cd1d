package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-context/internal/assembler"
	"github.com/rcliao/agent-context/internal/llm"
)

func init() {
	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Assemble context for a question and answer it",
		Long: "Assembles budget-enforced context for the question and, when an LLM\n" +
			"provider is configured, generates an answer and records the exchange.",
		Args: cobra.MinimumNArgs(1),
		Run:  runQuery,
	}

	cmd.Flags().Bool("show-context", false, "Print the assembled context document")
	cmd.Flags().Bool("show-budget", false, "Print the budget report")
	cmd.Flags().Bool("no-retrieval", false, "Skip the retrieval section")
	cmd.Flags().Bool("no-memory", false, "Skip conversation memory")
	cmd.Flags().Bool("no-tools", false, "Skip tool outputs")

	RootCmd.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	showContext, _ := cmd.Flags().GetBool("show-context")
	showBudget, _ := cmd.Flags().GetBool("show-budget")
	noRetrieval, _ := cmd.Flags().GetBool("no-retrieval")
	noMemory, _ := cmd.Flags().GetBool("no-memory")
	noTools, _ := cmd.Flags().GetBool("no-tools")

	cfg := loadConfig()
	mem := openMemory(cfg)
	defer mem.Close()

	sources := assembler.Sources{Goal: mem}
	if !noMemory {
		sources.Memory = mem
	}
	if !noTools {
		tools := openTools(cfg)
		defer tools.Close()
		sources.ToolOutputs = tools
	}
	if !noRetrieval {
		if emb := newOptionalEmbedder(); emb != nil {
			docs := openDocs(cfg)
			defer docs.Close()
			sources.Retrieval = newRetrieverSource(docs, emb)
		}
	}

	a := newAssembler(cfg, sources)
	result, err := a.Assemble(cmd.Context(), question)
	if err != nil {
		exitErr("assemble", err)
	}

	if showBudget {
		fmt.Println(result.FormatReport(cfg.Budgets))
	}
	if showContext {
		fmt.Println(result.Context)
	}

	client := llm.NewFromEnv()
	if client == nil {
		if !showContext && !showBudget {
			// Nothing else to print; show the context so the command is useful
			fmt.Println(result.Context)
		}
		return
	}

	answer, err := client.Generate(cmd.Context(), result.Context)
	if err != nil {
		exitErr("generate", err)
	}

	if formatFlag == "json" {
		out := map[string]any{
			"answer":       answer,
			"total_tokens": result.TotalTokens,
			"truncated":    result.TruncationApplied,
		}
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
	} else {
		fmt.Println(answer)
	}

	if _, err := mem.AddExchange(cmd.Context(), question, answer); err != nil {
		exitErr("record exchange", err)
	}
}
