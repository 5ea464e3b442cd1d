package prioritizer

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/rcliao/agent-context/internal/model"
	"github.com/rcliao/agent-context/internal/token"
)

// instructionsStrategy never truncates. An overflow is a configuration
// error: it is logged and the content passes through unchanged.
type instructionsStrategy struct {
	counter token.Counter
	logger  *slog.Logger
}

func (s *instructionsStrategy) Truncate(sec model.Section, budget int) Outcome {
	tokens := s.counter.Count(sec.Text)
	sec.Tokens = tokens
	if tokens <= budget {
		return Outcome{Section: sec}
	}
	s.logger.Error("instructions exceed budget; configuration error, passing through unmodified",
		"tokens", tokens, "budget", budget)
	return Outcome{Section: sec, ConfigError: true}
}

// goalStrategy keeps the start and end of the text and removes the
// middle, joining the retained spans with an elision marker. The spans
// are sized from the token budget converted to characters so the result
// lands within budget; edges snap to nearby sentence boundaries.
type goalStrategy struct {
	counter       token.Counter
	charsPerToken float64
	logger        *slog.Logger
}

func (s *goalStrategy) Truncate(sec model.Section, budget int) Outcome {
	tokens := s.counter.Count(sec.Text)
	sec.Tokens = tokens
	if tokens <= budget {
		return Outcome{Section: sec}
	}

	runes := []rune(sec.Text)
	targetChars := int(float64(budget) * s.charsPerToken)
	startChars := int(float64(targetChars) * 0.4)
	endChars := int(float64(targetChars) * 0.4)

	if startChars+endChars >= len(runes) {
		// Rounding put the spans over the whole text; nothing to elide.
		return Outcome{Section: sec}
	}

	startPart := strings.TrimSpace(string(runes[:startChars]))
	endPart := strings.TrimSpace(string(runes[len(runes)-endChars:]))

	// Prefer cutting at sentence boundaries when one is close to the edge.
	if i := strings.LastIndex(startPart, "."); i > int(float64(startChars)*0.7) {
		startPart = startPart[:i+1]
	}
	if i := strings.Index(endPart, "."); i >= 0 && i < int(float64(endChars)*0.3) {
		endPart = strings.TrimSpace(endPart[i+1:])
	}

	reduced := startPart + " " + ElisionMarker + " " + endPart
	final := s.counter.Count(reduced)
	s.logger.Info("truncated goal", "from", tokens, "to", final, "budget", budget)

	sec.Text = reduced
	sec.Tokens = final
	return Outcome{Section: sec, Truncated: true, TextElided: true}
}

// memoryStrategy keeps a contiguous run of the most recent exchanges.
// Selection walks newest-first and stops at the first exchange that would
// overflow; the kept run is rendered in chronological order.
type memoryStrategy struct {
	counter token.Counter
	logger  *slog.Logger
}

func (s *memoryStrategy) Truncate(sec model.Section, budget int) Outcome {
	sec.Tokens = s.counter.Count(sec.Text)
	if sec.Tokens <= budget {
		return Outcome{Section: sec}
	}

	sep := s.counter.Count(model.ItemSeparator)
	var kept []model.Exchange
	total := 0

	for i := len(sec.Exchanges) - 1; i >= 0; i-- {
		e := sec.Exchanges[i]
		e.Tokens = s.counter.Count(model.RenderExchange(e))
		cost := e.Tokens
		if len(kept) > 0 {
			cost += sep
		}
		if total+cost > budget {
			break
		}
		kept = append(kept, e)
		total += cost
	}

	// kept is newest-first; restore chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	dropped := append([]model.Exchange(nil), sec.Exchanges[:len(sec.Exchanges)-len(kept)]...)

	s.logger.Info("truncated memory",
		"kept", len(kept), "dropped", len(dropped), "budget", budget)

	sec.Exchanges = kept
	sec.Text = model.RenderExchanges(kept)
	sec.Tokens = s.counter.Count(sec.Text)
	return Outcome{
		Section:          sec,
		Truncated:        true,
		FullyDropped:     len(kept) == 0,
		DroppedExchanges: dropped,
	}
}

// retrievalStrategy filters out chunks below the similarity threshold,
// ranks survivors by descending score (stable on ties), and accumulates
// greedily until the budget is reached.
type retrievalStrategy struct {
	counter   token.Counter
	threshold float64
	logger    *slog.Logger
}

func (s *retrievalStrategy) Truncate(sec model.Section, budget int) Outcome {
	sec.Tokens = s.counter.Count(sec.Text)
	if sec.Tokens <= budget {
		return Outcome{Section: sec}
	}

	var dropped []model.Chunk
	survivors := make([]model.Chunk, 0, len(sec.Chunks))
	for _, c := range sec.Chunks {
		if c.Score < s.threshold {
			dropped = append(dropped, c)
			continue
		}
		survivors = append(survivors, c)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Score > survivors[j].Score
	})

	sep := s.counter.Count(model.ItemSeparator)
	var kept []model.Chunk
	total := 0
	for i, c := range survivors {
		c.Tokens = s.counter.Count(model.RenderChunk(c))
		cost := c.Tokens
		if len(kept) > 0 {
			cost += sep
		}
		if total+cost > budget {
			dropped = append(dropped, survivors[i:]...)
			break
		}
		kept = append(kept, c)
		total += cost
	}

	s.logger.Info("truncated retrieval",
		"kept", len(kept), "dropped", len(dropped), "threshold", s.threshold, "budget", budget)

	sec.Chunks = kept
	sec.Text = model.RenderChunks(kept)
	sec.Tokens = s.counter.Count(sec.Text)
	return Outcome{
		Section:       sec,
		Truncated:     true,
		FullyDropped:  len(kept) == 0,
		DroppedChunks: dropped,
	}
}

// toolOutputsStrategy ranks outputs success-first, then most recent
// within each outcome class, and accumulates greedily under the budget.
type toolOutputsStrategy struct {
	counter token.Counter
	logger  *slog.Logger
}

func (s *toolOutputsStrategy) Truncate(sec model.Section, budget int) Outcome {
	sec.Tokens = s.counter.Count(sec.Text)
	if sec.Tokens <= budget {
		return Outcome{Section: sec}
	}

	ranked := append([]model.ToolOutput(nil), sec.Outputs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Success != ranked[j].Success {
			return ranked[i].Success
		}
		return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
	})

	sep := s.counter.Count(model.ItemSeparator)
	var kept []model.ToolOutput
	var dropped []model.ToolOutput
	total := 0
	for i, o := range ranked {
		o.Tokens = s.counter.Count(model.RenderToolOutput(o))
		cost := o.Tokens
		if len(kept) > 0 {
			cost += sep
		}
		if total+cost > budget {
			dropped = append(dropped, ranked[i:]...)
			break
		}
		kept = append(kept, o)
		total += cost
	}

	s.logger.Info("truncated tool outputs",
		"kept", len(kept), "dropped", len(dropped), "budget", budget)

	sec.Outputs = kept
	sec.Text = model.RenderToolOutputs(kept)
	sec.Tokens = s.counter.Count(sec.Text)
	return Outcome{
		Section:        sec,
		Truncated:      true,
		FullyDropped:   len(kept) == 0,
		DroppedOutputs: dropped,
	}
}
