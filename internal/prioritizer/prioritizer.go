// Package prioritizer implements the per-section truncation strategies
// applied when a section exceeds its token budget.
package prioritizer

import (
	"log/slog"

	"github.com/rcliao/agent-context/internal/model"
	"github.com/rcliao/agent-context/internal/token"
)

// DefaultSimilarityThreshold is the minimum relevance score a retrieved
// chunk must have to survive truncation.
const DefaultSimilarityThreshold = 0.3

// ElisionMarker replaces the removed middle of a truncated goal.
const ElisionMarker = "[...]"

// Outcome is the result of applying a strategy to one section.
type Outcome struct {
	// Section holds the (possibly reduced) content, re-rendered, with
	// Tokens set to the final measured count.
	Section model.Section

	// Truncated is true when content was removed.
	Truncated bool

	// FullyDropped is true when not even one unit of content fit.
	FullyDropped bool

	// ConfigError is true when an exempt section (instructions)
	// overflowed and was passed through unchanged.
	ConfigError bool

	// TextElided is true when a whole-text section had its middle removed.
	TextElided bool

	// Discarded sub-items, for the section kinds that carry them.
	DroppedExchanges []model.Exchange
	DroppedChunks    []model.Chunk
	DroppedOutputs   []model.ToolOutput
}

// Strategy reduces an oversized section to fit a budget. Implementations
// are pure and deterministic given (content, budget), and are no-ops when
// the content already fits.
type Strategy interface {
	Truncate(sec model.Section, budget int) Outcome
}

// Options configures strategy behavior.
type Options struct {
	// SimilarityThreshold filters retrieval chunks. Zero uses the default.
	SimilarityThreshold float64

	// CharsPerToken converts the goal token budget to character spans.
	// Zero uses the token counter default.
	CharsPerToken float64

	// Logger for truncation decisions. Nil uses slog.Default.
	Logger *slog.Logger
}

// Prioritizer dispatches to one strategy per section kind.
type Prioritizer struct {
	strategies map[model.SectionID]Strategy
}

// New creates a prioritizer with one registered strategy per section.
func New(counter token.Counter, opts Options) *Prioritizer {
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if opts.CharsPerToken <= 0 {
		opts.CharsPerToken = token.DefaultCharsPerToken
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Prioritizer{
		strategies: map[model.SectionID]Strategy{
			model.SectionInstructions: &instructionsStrategy{counter: counter, logger: opts.Logger},
			model.SectionGoal:         &goalStrategy{counter: counter, charsPerToken: opts.CharsPerToken, logger: opts.Logger},
			model.SectionMemory:       &memoryStrategy{counter: counter, logger: opts.Logger},
			model.SectionRetrieval:    &retrievalStrategy{counter: counter, threshold: opts.SimilarityThreshold, logger: opts.Logger},
			model.SectionToolOutputs:  &toolOutputsStrategy{counter: counter, logger: opts.Logger},
		},
	}
}

// ForSection returns the strategy registered for a section kind.
func (p *Prioritizer) ForSection(id model.SectionID) (Strategy, bool) {
	s, ok := p.strategies[id]
	return s, ok
}

// Truncate applies the section's strategy. Unknown sections pass through.
func (p *Prioritizer) Truncate(sec model.Section, budget int) Outcome {
	s, ok := p.strategies[sec.ID]
	if !ok {
		return Outcome{Section: sec}
	}
	return s.Truncate(sec, budget)
}
