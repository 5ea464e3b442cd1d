package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init [path...]",
		Short: "Ingest corpus files into the retrieval index",
		Long: "Splits each file (or every .txt/.md file under a directory) into\n" +
			"passages, embeds them, and stores the vectors for retrieval.",
		Args: cobra.MinimumNArgs(1),
		Run:  runIngest,
	}

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	emb := newEmbedder()
	docs := openDocs(cfg)
	defer docs.Close()

	r := newRetrieverSource(docs, emb)

	total := 0
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			exitErr("stat", err)
		}
		var n int
		if info.IsDir() {
			n, err = r.IngestDir(cmd.Context(), path)
		} else {
			n, err = r.IngestFile(cmd.Context(), path)
		}
		if err != nil {
			exitErr("ingest", err)
		}
		total += n
	}

	count, err := docs.Count(cmd.Context())
	if err != nil {
		exitErr("count", err)
	}
	fmt.Printf("ingested %d passages (%d total in index)\n", total, count)
}
