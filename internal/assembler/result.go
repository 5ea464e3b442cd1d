package assembler

import (
	"fmt"
	"strings"

	"github.com/rcliao/agent-context/internal/budget"
	"github.com/rcliao/agent-context/internal/model"
)

// SectionResult is the per-section outcome of one assembly.
type SectionResult struct {
	ID           model.SectionID    `json:"id"`
	Tokens       int                `json:"tokens"`
	Budget       int                `json:"budget"`
	Truncated    bool               `json:"truncated"`
	FullyDropped bool               `json:"fully_dropped,omitempty"`
	TextElided   bool               `json:"text_elided,omitempty"`
	ConfigError  bool               `json:"config_error,omitempty"`
	Dropped      []model.Exchange   `json:"dropped_exchanges,omitempty"`
	DroppedCh    []model.Chunk      `json:"dropped_chunks,omitempty"`
	DroppedOut   []model.ToolOutput `json:"dropped_outputs,omitempty"`
}

// Fault records a collaborator that failed to return content. The
// section was assembled empty and the run continued.
type Fault struct {
	Section model.SectionID `json:"section"`
	Err     string          `json:"error"`
}

// Result is the immutable outcome of one assembly call.
type Result struct {
	// Context is the final concatenated document.
	Context string `json:"context"`

	// Sections holds per-section metadata keyed by section ID.
	Sections map[model.SectionID]SectionResult `json:"sections"`

	// TotalTokens is the measured size of the final document.
	TotalTokens int `json:"total_tokens"`

	// TruncationApplied is true when the truncate pass ran.
	TruncationApplied bool `json:"truncation_applied"`

	// Faults lists collaborators that failed during gathering.
	Faults []Fault `json:"faults,omitempty"`
}

// Allocation returns the per-section final token counts.
func (r *Result) Allocation() budget.Allocation {
	alloc := budget.Allocation{}
	for id, s := range r.Sections {
		alloc[id] = s.Tokens
	}
	return alloc
}

// FormatReport renders a human-readable account of the assembly.
func (r *Result) FormatReport(cfg budget.Config) string {
	var b strings.Builder

	rule := strings.Repeat("=", 70)
	b.WriteString(rule + "\n")
	b.WriteString("CONTEXT ASSEMBLY REPORT\n")
	b.WriteString(rule + "\n\n")

	b.WriteString(budget.FormatReport(cfg, r.Allocation()) + "\n")

	if r.TruncationApplied {
		b.WriteString("\nTRUNCATION APPLIED:\n")
		b.WriteString(strings.Repeat("-", 70) + "\n")
		for _, id := range model.PresentationOrder {
			s := r.Sections[id]
			switch {
			case s.ConfigError:
				fmt.Fprintf(&b, "  %s: exceeds budget but is never truncated (configuration error)\n", id)
			case s.FullyDropped:
				fmt.Fprintf(&b, "  %s: fully dropped, nothing fit the budget\n", id)
			case s.Truncated:
				dropped := len(s.Dropped) + len(s.DroppedCh) + len(s.DroppedOut)
				if s.TextElided {
					fmt.Fprintf(&b, "  %s: middle elided, reduced to %d tokens\n", id, s.Tokens)
				} else {
					fmt.Fprintf(&b, "  %s: %d items dropped, reduced to %d tokens\n", id, dropped, s.Tokens)
				}
			}
		}
	} else {
		b.WriteString("\nNo truncation needed, all sections within budget\n")
	}

	if len(r.Faults) > 0 {
		b.WriteString("\nSOURCE FAULTS:\n")
		for _, f := range r.Faults {
			fmt.Fprintf(&b, "  %s: %s (assembled empty)\n", f.Section, f.Err)
		}
	}

	b.WriteString("\n" + rule)
	return b.String()
}
