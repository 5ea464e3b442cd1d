// Package cli implements the agent-context CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/agent-context/internal/assembler"
	"github.com/rcliao/agent-context/internal/config"
	"github.com/rcliao/agent-context/internal/embedding"
	"github.com/rcliao/agent-context/internal/memory"
	"github.com/rcliao/agent-context/internal/retrieval"
	"github.com/rcliao/agent-context/internal/token"
	"github.com/rcliao/agent-context/internal/toollog"
)

var (
	configPath  string
	dataDirFlag string
	formatFlag  string
	verboseFlag bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "agent-context",
	Short: "Budget-enforced context assembly for LLM prompts",
	Long: "Assembles bounded prompt context from instructions, goal, conversation\n" +
		"memory, retrieved passages, and tool outputs, each held to a fixed\n" +
		"token budget. SQLite-backed, single binary.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verboseFlag {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: $AGENT_CONTEXT_CONFIG or ~/.agent-context/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dataDirFlag, "data-dir", "d", "", "Data directory override")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func loadConfig() config.Config {
	path := configPath
	if path == "" {
		path = os.Getenv("AGENT_CONTEXT_CONFIG")
	}
	if path == "" {
		path = filepath.Join(config.Default().DataDir, "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitErr("load config", err)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	return cfg
}

func openMemory(cfg config.Config) *memory.Store {
	s, err := memory.NewStore(cfg.MemoryDBPath(), cfg.MemoryWindow)
	if err != nil {
		exitErr("open memory store", err)
	}
	return s
}

func openTools(cfg config.Config) *toollog.Log {
	l, err := toollog.Open(cfg.ToolDBPath(), cfg.ToolWindow)
	if err != nil {
		exitErr("open tool log", err)
	}
	return l
}

func openDocs(cfg config.Config) *retrieval.Store {
	s, err := retrieval.Open(cfg.DocsDBPath())
	if err != nil {
		exitErr("open document store", err)
	}
	return s
}

// newAssembler wires the configured collaborators into an assembler.
// Nil sources assemble as empty sections.
func newAssembler(cfg config.Config, sources assembler.Sources) *assembler.Assembler {
	if sources.Instructions == nil {
		sources.Instructions = assembler.StaticInstructions(cfg.Instructions)
	}
	counter := token.NewCounterWithRatio(cfg.CharsPerToken)
	a, err := assembler.New(cfg.Budgets, counter, sources, assembler.Options{
		SimilarityThreshold: cfg.SimilarityThreshold,
		CharsPerToken:       cfg.CharsPerToken,
		Logger:              slog.Default(),
	})
	if err != nil {
		exitErr("build assembler", err)
	}
	return a
}

func newEmbedder() embedding.Embedder {
	e := embedding.NewFromEnv()
	if e == nil {
		exitErr("embedding", fmt.Errorf("no provider configured, set AGENT_CONTEXT_EMBED_PROVIDER"))
	}
	return e
}

// newOptionalEmbedder returns nil when no provider is configured, which
// disables retrieval instead of failing the command.
func newOptionalEmbedder() embedding.Embedder {
	e := embedding.NewFromEnv()
	if e == nil {
		slog.Debug("no embedding provider configured, retrieval disabled")
	}
	return e
}

func newRetrieverSource(docs *retrieval.Store, emb embedding.Embedder) *retrieval.Retriever {
	return retrieval.NewRetriever(docs, emb, slog.Default())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
