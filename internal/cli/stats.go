package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored conversation, tool, and index statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

type statsOutput struct {
	Exchanges   int `json:"exchanges"`
	Preferences int `json:"preferences"`
	ToolTotal   int `json:"tool_outputs"`
	ToolFailed  int `json:"tool_failures"`
	Documents   int `json:"documents"`
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := cmd.Context()

	mem := openMemory(cfg)
	defer mem.Close()
	tools := openTools(cfg)
	defer tools.Close()
	docs := openDocs(cfg)
	defer docs.Close()

	ms, err := mem.GetStats(ctx)
	if err != nil {
		exitErr("memory stats", err)
	}
	ts, err := tools.GetStats(ctx)
	if err != nil {
		exitErr("tool stats", err)
	}
	dc, err := docs.Count(ctx)
	if err != nil {
		exitErr("document count", err)
	}

	out := statsOutput{
		Exchanges:   ms.Exchanges,
		Preferences: ms.Preferences,
		ToolTotal:   ts.Total,
		ToolFailed:  ts.Failed,
		Documents:   dc,
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("exchanges:    %d\n", out.Exchanges)
	fmt.Printf("preferences:  %d\n", out.Preferences)
	fmt.Printf("tool outputs: %d (%d failed)\n", out.ToolTotal, out.ToolFailed)
	fmt.Printf("documents:    %d\n", out.Documents)
}
