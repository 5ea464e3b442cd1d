package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored state",
		Long:  "Deletes conversation memory, tool outputs, and/or the retrieval index.\nWith no flags, everything is cleared.",
		Run:   runClear,
	}

	cmd.Flags().Bool("memory", false, "Clear conversation exchanges only")
	cmd.Flags().Bool("tools", false, "Clear tool outputs only")
	cmd.Flags().Bool("docs", false, "Clear the retrieval index only")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	clearMem, _ := cmd.Flags().GetBool("memory")
	clearTools, _ := cmd.Flags().GetBool("tools")
	clearDocs, _ := cmd.Flags().GetBool("docs")
	if !clearMem && !clearTools && !clearDocs {
		clearMem, clearTools, clearDocs = true, true, true
	}

	cfg := loadConfig()
	ctx := cmd.Context()

	if clearMem {
		mem := openMemory(cfg)
		if err := mem.ClearExchanges(ctx); err != nil {
			mem.Close()
			exitErr("clear memory", err)
		}
		mem.Close()
		fmt.Println("cleared conversation memory")
	}
	if clearTools {
		tools := openTools(cfg)
		if err := tools.Clear(ctx); err != nil {
			tools.Close()
			exitErr("clear tools", err)
		}
		tools.Close()
		fmt.Println("cleared tool outputs")
	}
	if clearDocs {
		docs := openDocs(cfg)
		if err := docs.Clear(ctx); err != nil {
			docs.Close()
			exitErr("clear docs", err)
		}
		docs.Close()
		fmt.Println("cleared retrieval index")
	}
}
