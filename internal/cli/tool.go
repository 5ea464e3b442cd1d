package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	toolCmd := &cobra.Command{
		Use:   "tool",
		Short: "Manage recorded tool outputs",
	}

	addCmd := &cobra.Command{
		Use:   "add <name> [output]",
		Short: "Record a tool output",
		Long:  "Records one tool execution result. Output can be a positional arg\nor piped via stdin.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runToolAdd,
	}
	addCmd.Flags().Bool("failed", false, "Mark the output as a failure")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded tool outputs",
		Run:   runToolList,
	}

	toolCmd.AddCommand(addCmd, listCmd)
	RootCmd.AddCommand(toolCmd)
}

func runToolAdd(cmd *cobra.Command, args []string) {
	name := args[0]
	failed, _ := cmd.Flags().GetBool("failed")

	var output string
	if len(args) > 1 {
		output = strings.Join(args[1:], " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			output = string(b)
		}
	}
	if strings.TrimSpace(output) == "" {
		exitErr("tool add", fmt.Errorf("output is required (positional arg or stdin)"))
	}

	cfg := loadConfig()
	tools := openTools(cfg)
	defer tools.Close()

	rec, err := tools.Record(cmd.Context(), name, strings.TrimSpace(output), !failed)
	if err != nil {
		exitErr("record tool output", err)
	}
	fmt.Printf("recorded %s (%s)\n", rec.Tool, rec.ID)
}

func runToolList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	tools := openTools(cfg)
	defer tools.Close()

	outputs, err := tools.Recent(cmd.Context())
	if err != nil {
		exitErr("list tool outputs", err)
	}
	for _, o := range outputs {
		status := "ok"
		if !o.Success {
			status = "failed"
		}
		fmt.Printf("%s  %-8s %-6s %s\n", o.CreatedAt.Format("2006-01-02 15:04"), o.Tool, status, firstLine(o.Output))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
