// Package budget holds the per-section token capacities and answers
// whether measured content fits them.
package budget

import (
	"fmt"
	"log/slog"

	"github.com/rcliao/agent-context/internal/model"
)

// Default per-section budgets, in tokens.
const (
	DefaultInstructions = 255
	DefaultGoal         = 1500
	DefaultMemory       = 55
	DefaultRetrieval    = 550
	DefaultToolOutputs  = 855
)

// Config is the fixed per-section token capacities for one assembler.
// It is immutable for the lifetime of the assembler that holds it.
type Config struct {
	Instructions int `yaml:"instructions"`
	Goal         int `yaml:"goal"`
	Memory       int `yaml:"memory"`
	Retrieval    int `yaml:"retrieval"`
	ToolOutputs  int `yaml:"tool_outputs"`
}

// DefaultConfig returns the standard budget allocation.
func DefaultConfig() Config {
	return Config{
		Instructions: DefaultInstructions,
		Goal:         DefaultGoal,
		Memory:       DefaultMemory,
		Retrieval:    DefaultRetrieval,
		ToolOutputs:  DefaultToolOutputs,
	}
}

// Total returns the sum of all section budgets.
func (c Config) Total() int {
	return c.Instructions + c.Goal + c.Memory + c.Retrieval + c.ToolOutputs
}

// For returns the budget for a section. Unknown sections get 0.
func (c Config) For(id model.SectionID) int {
	switch id {
	case model.SectionInstructions:
		return c.Instructions
	case model.SectionGoal:
		return c.Goal
	case model.SectionMemory:
		return c.Memory
	case model.SectionRetrieval:
		return c.Retrieval
	case model.SectionToolOutputs:
		return c.ToolOutputs
	}
	return 0
}

// Validate checks that every section budget is positive.
func (c Config) Validate() error {
	for _, id := range model.PresentationOrder {
		if c.For(id) <= 0 {
			return fmt.Errorf("budget for section %q must be positive, got %d", id, c.For(id))
		}
	}
	return nil
}

// Allocation records measured token counts per section.
type Allocation map[model.SectionID]int

// Total returns the sum of all measured counts.
func (a Allocation) Total() int {
	sum := 0
	for _, n := range a {
		sum += n
	}
	return sum
}

// Check is the result of comparing one section against its budget.
type Check struct {
	Fits   bool
	Excess int
}

// Manager answers budget questions for a fixed Config.
type Manager struct {
	cfg    Config
	logger *slog.Logger
}

// NewManager creates a budget manager. A nil logger uses slog.Default.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Config returns the manager's budget configuration.
func (m *Manager) Config() Config { return m.cfg }

// CheckSection compares measured tokens against the section's budget.
func (m *Manager) CheckSection(id model.SectionID, tokens int) Check {
	limit := m.cfg.For(id)
	if tokens <= limit {
		m.logger.Debug("section within budget", "section", id, "tokens", tokens, "budget", limit)
		return Check{Fits: true}
	}
	m.logger.Warn("section exceeds budget",
		"section", id, "tokens", tokens, "budget", limit, "excess", tokens-limit)
	return Check{Fits: false, Excess: tokens - limit}
}

// Exempt reports whether a section is exempt from corrective truncation.
// An overflowing Instructions section is a configuration error, not a
// truncation request.
func (m *Manager) Exempt(id model.SectionID) bool {
	return id == model.SectionInstructions
}

// TotalOverflow returns how many tokens the aggregate exceeds the total
// budget by, or 0 when the naive concatenation already fits.
func (m *Manager) TotalOverflow(measured Allocation) int {
	excess := measured.Total() - m.cfg.Total()
	if excess <= 0 {
		return 0
	}
	return excess
}
