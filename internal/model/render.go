package model

import (
	"fmt"
	"strings"
)

// ItemSeparator joins rendered sub-items within a section.
const ItemSeparator = "\n\n"

// RenderExchange formats a single exchange for the memory section.
func RenderExchange(e Exchange) string {
	return fmt.Sprintf("User: %s\nAssistant: %s", e.User, e.Assistant)
}

// RenderExchanges formats exchanges in chronological order.
func RenderExchanges(exchanges []Exchange) string {
	parts := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		parts = append(parts, RenderExchange(e))
	}
	return strings.Join(parts, ItemSeparator)
}

// RenderChunk formats a retrieved chunk with its source attribution.
func RenderChunk(c Chunk) string {
	return fmt.Sprintf("[Source: %s, Relevance: %.3f]\n%s", c.Source, c.Score, c.Content)
}

// RenderChunks formats chunks in the given order.
func RenderChunks(chunks []Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, RenderChunk(c))
	}
	return strings.Join(parts, ItemSeparator)
}

// RenderToolOutput formats a single tool execution record.
func RenderToolOutput(o ToolOutput) string {
	status := "SUCCESS"
	if !o.Success {
		status = "FAILED"
	}
	return fmt.Sprintf("[%s - %s]\n%s", o.Tool, status, o.Output)
}

// RenderToolOutputs formats tool outputs in the given order.
func RenderToolOutputs(outputs []ToolOutput) string {
	parts := make([]string, 0, len(outputs))
	for _, o := range outputs {
		parts = append(parts, RenderToolOutput(o))
	}
	return strings.Join(parts, ItemSeparator)
}
