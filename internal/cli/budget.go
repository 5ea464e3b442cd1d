package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-context/internal/assembler"
)

func init() {
	cmd := &cobra.Command{
		Use:   "budget [question]",
		Short: "Dry-run assembly and print the budget report",
		Long: "Assembles context for the question without calling any LLM and\n" +
			"prints the per-section budget report and truncation decisions.",
		Args: cobra.MinimumNArgs(1),
		Run:  runBudget,
	}

	RootCmd.AddCommand(cmd)
}

func runBudget(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")

	cfg := loadConfig()
	mem := openMemory(cfg)
	defer mem.Close()
	tools := openTools(cfg)
	defer tools.Close()

	sources := assembler.Sources{
		Goal:        mem,
		Memory:      mem,
		ToolOutputs: tools,
	}
	if emb := newOptionalEmbedder(); emb != nil {
		docs := openDocs(cfg)
		defer docs.Close()
		sources.Retrieval = newRetrieverSource(docs, emb)
	}

	a := newAssembler(cfg, sources)
	result, err := a.Assemble(cmd.Context(), question)
	if err != nil {
		exitErr("assemble", err)
	}

	fmt.Println(result.FormatReport(cfg.Budgets))
}
