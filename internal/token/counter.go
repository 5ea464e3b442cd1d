// Package token estimates token counts for budget enforcement.
package token

import "unicode/utf8"

// DefaultCharsPerToken is the average character-to-token ratio for
// English text under common LLM tokenizers.
const DefaultCharsPerToken = 4.0

// Counter maps text to a token count. Implementations must be pure:
// the same input always yields the same count.
type Counter interface {
	// Count estimates the number of tokens in text. Empty text is 0.
	Count(text string) int

	// FitsInLimit reports whether text fits within limit tokens.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter approximates tokens from the rune count using a
// fixed characters-per-token ratio.
type EstimatingCounter struct {
	CharsPerToken float64
}

// NewCounter returns a counter with the default ratio.
func NewCounter() *EstimatingCounter {
	return &EstimatingCounter{CharsPerToken: DefaultCharsPerToken}
}

// NewCounterWithRatio returns a counter with a custom ratio.
// Non-positive ratios fall back to the default.
func NewCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{CharsPerToken: charsPerToken}
}

// Count estimates tokens by rune count, rounded to the nearest integer.
func (c *EstimatingCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	return int(float64(runes)/c.CharsPerToken + 0.5)
}

// FitsInLimit reports whether text fits within limit tokens.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}
