package assembler

import (
	"context"

	"github.com/rcliao/agent-context/internal/model"
)

// InstructionsSource returns the fixed system instructions.
type InstructionsSource interface {
	Instructions(ctx context.Context) (string, error)
}

// GoalSource returns the current query merged with any stored
// preference text.
type GoalSource interface {
	Goal(ctx context.Context, query string) (string, error)
}

// MemorySource returns conversation exchanges, oldest to newest.
type MemorySource interface {
	Exchanges(ctx context.Context) ([]model.Exchange, error)
}

// RetrievalSource returns scored chunks for the query. Threshold
// filtering and ranking are applied by the assembler, not the source.
type RetrievalSource interface {
	Retrieve(ctx context.Context, query string) ([]model.Chunk, error)
}

// ToolOutputSource returns tool execution records for the current
// interaction window.
type ToolOutputSource interface {
	Outputs(ctx context.Context) ([]model.ToolOutput, error)
}

// Sources bundles the five collaborators. Any nil source contributes an
// empty section.
type Sources struct {
	Instructions InstructionsSource
	Goal         GoalSource
	Memory       MemorySource
	Retrieval    RetrievalSource
	ToolOutputs  ToolOutputSource
}

// InstructionsFunc adapts a function to InstructionsSource.
type InstructionsFunc func(ctx context.Context) (string, error)

func (f InstructionsFunc) Instructions(ctx context.Context) (string, error) { return f(ctx) }

// StaticInstructions returns a source that always yields the given text.
func StaticInstructions(text string) InstructionsSource {
	return InstructionsFunc(func(context.Context) (string, error) { return text, nil })
}

// GoalFunc adapts a function to GoalSource.
type GoalFunc func(ctx context.Context, query string) (string, error)

func (f GoalFunc) Goal(ctx context.Context, query string) (string, error) { return f(ctx, query) }

// MemoryFunc adapts a function to MemorySource.
type MemoryFunc func(ctx context.Context) ([]model.Exchange, error)

func (f MemoryFunc) Exchanges(ctx context.Context) ([]model.Exchange, error) { return f(ctx) }

// RetrievalFunc adapts a function to RetrievalSource.
type RetrievalFunc func(ctx context.Context, query string) ([]model.Chunk, error)

func (f RetrievalFunc) Retrieve(ctx context.Context, query string) ([]model.Chunk, error) {
	return f(ctx, query)
}

// ToolOutputFunc adapts a function to ToolOutputSource.
type ToolOutputFunc func(ctx context.Context) ([]model.ToolOutput, error)

func (f ToolOutputFunc) Outputs(ctx context.Context) ([]model.ToolOutput, error) { return f(ctx) }
