package token

import (
	"strings"
	"testing"
)

func TestCount_Empty(t *testing.T) {
	c := NewCounter()
	if got := c.Count(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}
}

func TestCount_Ratio(t *testing.T) {
	c := NewCounter()
	text := strings.Repeat("a", 400)
	if got := c.Count(text); got != 100 {
		t.Errorf("expected 100 tokens for 400 chars, got %d", got)
	}
}

func TestCount_Rounding(t *testing.T) {
	c := NewCounter()
	// 6 runes / 4 = 1.5, rounds to 2
	if got := c.Count("abcdef"); got != 2 {
		t.Errorf("expected 2 tokens for 6 chars, got %d", got)
	}
}

func TestCount_Unicode(t *testing.T) {
	c := NewCounter()
	// 8 runes regardless of byte length
	if got := c.Count("日本語のテキスト"); got != 2 {
		t.Errorf("expected 2 tokens for 8 runes, got %d", got)
	}
}

func TestCount_Deterministic(t *testing.T) {
	c := NewCounter()
	text := "the same input always yields the same output"
	first := c.Count(text)
	for i := 0; i < 10; i++ {
		if got := c.Count(text); got != first {
			t.Fatalf("count changed between calls: %d != %d", got, first)
		}
	}
}

func TestFitsInLimit(t *testing.T) {
	c := NewCounter()
	text := strings.Repeat("x", 40) // 10 tokens
	if !c.FitsInLimit(text, 10) {
		t.Error("expected text to fit exactly at limit")
	}
	if c.FitsInLimit(text, 9) {
		t.Error("expected text to exceed limit")
	}
}

func TestNewCounterWithRatio_Invalid(t *testing.T) {
	c := NewCounterWithRatio(-1)
	if c.CharsPerToken != DefaultCharsPerToken {
		t.Errorf("expected default ratio, got %f", c.CharsPerToken)
	}
}
