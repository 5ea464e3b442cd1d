// Package assembler orchestrates budget-enforced context assembly:
// gather, measure, admit check, truncate pass, final concatenation.
package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcliao/agent-context/internal/budget"
	"github.com/rcliao/agent-context/internal/model"
	"github.com/rcliao/agent-context/internal/prioritizer"
	"github.com/rcliao/agent-context/internal/token"
)

// Options configures an Assembler.
type Options struct {
	// SimilarityThreshold for the retrieval strategy. Zero uses the default.
	SimilarityThreshold float64

	// CharsPerToken for the goal strategy's span math. Zero uses the default.
	CharsPerToken float64

	// Logger for assembly decisions. Nil uses slog.Default.
	Logger *slog.Logger
}

// Assembler produces one bounded context document per call. It holds no
// state across calls; two calls are fully independent.
type Assembler struct {
	budgets budget.Config
	manager *budget.Manager
	prio    *prioritizer.Prioritizer
	counter token.Counter
	sources Sources
	logger  *slog.Logger
}

// New creates an assembler over an explicit immutable budget
// configuration. Multiple assemblers with different budgets can coexist.
func New(cfg budget.Config, counter token.Counter, sources Sources, opts Options) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid budget config: %w", err)
	}
	if counter == nil {
		counter = token.NewCounter()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Assembler{
		budgets: cfg,
		manager: budget.NewManager(cfg, logger),
		prio: prioritizer.New(counter, prioritizer.Options{
			SimilarityThreshold: opts.SimilarityThreshold,
			CharsPerToken:       opts.CharsPerToken,
			Logger:              logger,
		}),
		counter: counter,
		sources: sources,
		logger:  logger,
	}, nil
}

// Budgets returns the assembler's budget configuration.
func (a *Assembler) Budgets() budget.Config { return a.budgets }

// Assemble gathers all five sections, enforces budgets, and returns the
// final context document with its decision report. A failing collaborator
// contributes an empty section and a recorded fault; assembly never
// aborts because one source misbehaved.
func (a *Assembler) Assemble(ctx context.Context, query string) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sections, faults := a.gather(ctx, query)

	// Measure every section at its natural, untruncated size.
	measured := budget.Allocation{}
	for id, sec := range sections {
		sec.Tokens = a.counter.Count(sec.Text)
		sections[id] = sec
		measured[id] = sec.Tokens
	}

	result := &Result{
		Sections: make(map[model.SectionID]SectionResult, len(sections)),
		Faults:   faults,
	}

	// Admit check: skip the truncate pass when the naive concatenation
	// already fits the total budget.
	if excess := a.manager.TotalOverflow(measured); excess > 0 {
		a.logger.Warn("aggregate exceeds total budget, truncating",
			"total", measured.Total(), "budget", a.budgets.Total(), "excess", excess)
		a.truncatePass(sections, result)
		result.TruncationApplied = true
	} else {
		a.logger.Debug("aggregate within total budget, no truncation",
			"total", measured.Total(), "budget", a.budgets.Total())
	}

	// Record per-section results for sections untouched by truncation.
	for id, sec := range sections {
		if _, done := result.Sections[id]; done {
			continue
		}
		result.Sections[id] = SectionResult{
			ID:     id,
			Tokens: sec.Tokens,
			Budget: a.budgets.For(id),
		}
	}

	result.Context = a.concatenate(sections)
	result.TotalTokens = a.counter.Count(result.Context)

	a.logger.Info("context assembled",
		"tokens", result.TotalTokens, "truncated", result.TruncationApplied)

	return result, nil
}

// gather pulls raw content for all five sections, wrapping each
// collaborator in a fault boundary.
func (a *Assembler) gather(ctx context.Context, query string) (map[model.SectionID]model.Section, []Fault) {
	sections := make(map[model.SectionID]model.Section, 5)
	var faults []Fault

	fail := func(id model.SectionID, err error) {
		a.logger.Warn("source failed, assembling section empty", "section", id, "error", err)
		faults = append(faults, Fault{Section: id, Err: err.Error()})
	}

	instructions := model.Section{ID: model.SectionInstructions}
	if a.sources.Instructions != nil {
		text, err := a.sources.Instructions.Instructions(ctx)
		if err != nil {
			fail(model.SectionInstructions, err)
		} else {
			instructions.Text = text
		}
	}
	sections[model.SectionInstructions] = instructions

	goal := model.Section{ID: model.SectionGoal, Text: query}
	if a.sources.Goal != nil {
		text, err := a.sources.Goal.Goal(ctx, query)
		if err != nil {
			fail(model.SectionGoal, err)
			goal.Text = query
		} else {
			goal.Text = text
		}
	}
	sections[model.SectionGoal] = goal

	memory := model.Section{ID: model.SectionMemory}
	if a.sources.Memory != nil {
		exchanges, err := a.sources.Memory.Exchanges(ctx)
		if err != nil {
			fail(model.SectionMemory, err)
		} else {
			memory.Exchanges = exchanges
			memory.Text = model.RenderExchanges(exchanges)
		}
	}
	sections[model.SectionMemory] = memory

	retrieval := model.Section{ID: model.SectionRetrieval}
	if a.sources.Retrieval != nil {
		chunks, err := a.sources.Retrieval.Retrieve(ctx, query)
		if err != nil {
			fail(model.SectionRetrieval, err)
		} else {
			retrieval.Chunks = chunks
			retrieval.Text = model.RenderChunks(chunks)
		}
	}
	sections[model.SectionRetrieval] = retrieval

	tools := model.Section{ID: model.SectionToolOutputs}
	if a.sources.ToolOutputs != nil {
		outputs, err := a.sources.ToolOutputs.Outputs(ctx)
		if err != nil {
			fail(model.SectionToolOutputs, err)
		} else {
			tools.Outputs = outputs
			tools.Text = model.RenderToolOutputs(outputs)
		}
	}
	sections[model.SectionToolOutputs] = tools

	return sections, faults
}

// truncatePass walks the fixed priority queue and cuts every section
// that individually overflows its own budget. It does not stop early
// once the aggregate fits: each section's contract is "never exceed my
// own budget".
func (a *Assembler) truncatePass(sections map[model.SectionID]model.Section, result *Result) {
	for _, id := range model.TruncationQueue {
		sec := sections[id]
		limit := a.budgets.For(id)

		check := a.manager.CheckSection(id, sec.Tokens)
		if check.Fits {
			continue
		}

		out := a.prio.Truncate(sec, limit)
		sections[id] = out.Section
		result.Sections[id] = SectionResult{
			ID:           id,
			Tokens:       out.Section.Tokens,
			Budget:       limit,
			Truncated:    out.Truncated,
			FullyDropped: out.FullyDropped,
			TextElided:   out.TextElided,
			ConfigError:  out.ConfigError,
			Dropped:      out.DroppedExchanges,
			DroppedCh:    out.DroppedChunks,
			DroppedOut:   out.DroppedOutputs,
		}
	}
}

// concatenate joins non-empty sections in the fixed presentation order.
func (a *Assembler) concatenate(sections map[model.SectionID]model.Section) string {
	var parts []string
	for _, id := range model.PresentationOrder {
		sec := sections[id]
		if sec.Text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", id.Title(), sec.Text))
	}
	return strings.Join(parts, "\n\n")
}
