// Package model defines the section types used in context assembly.
package model

import "time"

// SectionID identifies one of the fixed context sections.
type SectionID string

const (
	SectionInstructions SectionID = "instructions"
	SectionGoal         SectionID = "goal"
	SectionMemory       SectionID = "memory"
	SectionRetrieval    SectionID = "retrieval"
	SectionToolOutputs  SectionID = "tool_outputs"
)

// TruncationQueue is the fixed order in which overflowing sections are
// truncated, lowest survival priority first. Instructions is last and
// is never truncated.
var TruncationQueue = []SectionID{
	SectionMemory,
	SectionToolOutputs,
	SectionRetrieval,
	SectionGoal,
	SectionInstructions,
}

// PresentationOrder is the fixed order sections appear in the final
// context document. It is independent of the truncation queue.
var PresentationOrder = []SectionID{
	SectionInstructions,
	SectionGoal,
	SectionMemory,
	SectionRetrieval,
	SectionToolOutputs,
}

// Title returns the header used for the section in the assembled context.
func (id SectionID) Title() string {
	switch id {
	case SectionInstructions:
		return "INSTRUCTIONS"
	case SectionGoal:
		return "USER QUERY"
	case SectionMemory:
		return "CONVERSATION HISTORY"
	case SectionRetrieval:
		return "RELEVANT KNOWLEDGE"
	case SectionToolOutputs:
		return "RECENT ACTIONS"
	}
	return string(id)
}

// Exchange is one user/assistant turn pair from conversation memory.
type Exchange struct {
	ID        string    `json:"id,omitempty"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	CreatedAt time.Time `json:"created_at"`
	Tokens    int       `json:"tokens,omitempty"`
}

// Chunk is a retrieved document passage with a relevance score in [0,1].
type Chunk struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Tokens  int     `json:"tokens,omitempty"`
}

// ToolOutput is one recorded tool execution.
type ToolOutput struct {
	ID        string    `json:"id,omitempty"`
	Tool      string    `json:"tool"`
	Output    string    `json:"output"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
	Tokens    int       `json:"tokens,omitempty"`
}

// Section is a named content slot. Text always holds the rendered form;
// the item slices are populated only for the section kinds that carry
// sub-items (memory, retrieval, tool outputs).
type Section struct {
	ID        SectionID
	Text      string
	Exchanges []Exchange
	Chunks    []Chunk
	Outputs   []ToolOutput
	Tokens    int
}
