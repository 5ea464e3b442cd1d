package retrieval

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/agent-context/internal/chunker"
	"github.com/rcliao/agent-context/internal/embedding"
	"github.com/rcliao/agent-context/internal/model"
)

// Retriever scores stored passages against a query embedding.
type Retriever struct {
	store    *Store
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewRetriever wires a document store to an embedder.
func NewRetriever(store *Store, embedder embedding.Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// Retrieve embeds the query, scores every stored passage by cosine
// similarity, and returns the chunks with scores clamped to [0, 1].
// Ranking and threshold filtering happen downstream.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]model.Chunk, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	qvec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := r.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	chunks := make([]model.Chunk, 0, len(docs))
	for _, d := range docs {
		score := embedding.CosineSimilarity(qvec, d.Vector)
		if score < 0 {
			score = 0
		} else if score > 1 {
			score = 1
		}
		chunks = append(chunks, model.Chunk{
			Source:  d.Source,
			Content: d.Content,
			Score:   score,
		})
	}

	r.logger.Debug("retrieval scored", "query_len", len(query), "documents", len(chunks))
	return chunks, nil
}

// IngestText splits one document into passages, embeds them, and stores
// the results under the given source label. Returns the passage count.
func (r *Retriever) IngestText(ctx context.Context, source, text string) (int, error) {
	if r.embedder == nil {
		return 0, fmt.Errorf("no embedder configured")
	}

	passages := chunker.Split(text, chunker.DefaultOptions())
	for _, p := range passages {
		vec, err := r.embedder.Embed(ctx, p.Text)
		if err != nil {
			return 0, fmt.Errorf("embed passage %d of %s: %w", p.Index, source, err)
		}
		if _, err := r.store.Add(ctx, source, p.Text, vec); err != nil {
			return 0, err
		}
	}

	r.logger.Info("ingested document", "source", source, "passages", len(passages))
	return len(passages), nil
}

// IngestFile reads one file and ingests it. Any prior passages from the
// same source label are replaced.
func (r *Retriever) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	source := filepath.Base(path)
	if err := r.store.DeleteSource(ctx, source); err != nil {
		return 0, err
	}
	return r.IngestText(ctx, source, string(data))
}

// IngestDir ingests every .txt and .md file under dir.
func (r *Retriever) IngestDir(ctx context.Context, dir string) (int, error) {
	total := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		n, err := r.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	return total, err
}
