// Package chunker splits corpus text into passages for retrieval indexing.
package chunker

import (
	"strings"
)

const (
	DefaultTargetSize = 800
	DefaultMinSize    = 200
	DefaultMaxSize    = 1200
)

// Options configures passage splitting behavior. Sizes are in characters.
type Options struct {
	TargetSize int
	MinSize    int
	MaxSize    int
}

// DefaultOptions returns default splitting options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
	}
}

// Passage is a contiguous span of corpus text ready for embedding.
type Passage struct {
	Text  string
	Index int
}

// Split breaks text into passages. Short text (<= MaxSize) returns a
// single passage. Paragraph boundaries are preferred; paragraphs that
// exceed MaxSize are split on sentence boundaries.
func Split(text string, opts Options) []Passage {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}

	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return nil
	}

	if len(text) <= opts.MaxSize {
		return []Passage{{Text: text, Index: 0}}
	}

	paras := splitParagraphs(text)
	merged := mergeParagraphs(paras, opts)

	passages := make([]Passage, 0, len(merged))
	for i, t := range merged {
		passages = append(passages, Passage{Text: t, Index: i})
	}
	return passages
}

// splitParagraphs splits on blank lines.
func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// mergeParagraphs combines small paragraphs up to TargetSize and breaks
// oversized ones apart.
func mergeParagraphs(paras []string, opts Options) []string {
	var out []string
	var accum string

	flush := func() {
		t := strings.TrimSpace(accum)
		if t == "" {
			return
		}
		if len(t) > opts.MaxSize {
			out = append(out, splitSentences(t, opts)...)
		} else {
			out = append(out, t)
		}
		accum = ""
	}

	for _, p := range paras {
		if accum == "" {
			accum = p
			continue
		}
		combined := accum + "\n\n" + p
		if len(combined) <= opts.TargetSize {
			accum = combined
		} else {
			flush()
			accum = p
		}
	}
	flush()

	return out
}

// splitSentences breaks text that exceeds MaxSize on sentence boundaries,
// falling back to a hard cut when a single sentence is itself oversized.
func splitSentences(text string, opts Options) []string {
	sentences := sentenceSpans(text)
	var out []string
	var current strings.Builder

	emit := func() {
		t := strings.TrimSpace(current.String())
		if t != "" {
			out = append(out, t)
		}
		current.Reset()
	}

	for _, s := range sentences {
		if current.Len() > 0 && current.Len()+len(s) > opts.TargetSize {
			emit()
		}
		if len(s) > opts.MaxSize {
			emit()
			out = append(out, hardCut(s, opts.TargetSize)...)
			continue
		}
		current.WriteString(s)
	}
	emit()

	return out
}

// sentenceSpans splits text after terminal punctuation followed by
// whitespace. Each span keeps its trailing separator.
func sentenceSpans(text string) []string {
	var spans []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if (text[i] == '.' || text[i] == '!' || text[i] == '?') &&
			(text[i+1] == ' ' || text[i+1] == '\n') {
			spans = append(spans, text[start:i+2])
			start = i + 2
		}
	}
	if start < len(text) {
		spans = append(spans, text[start:])
	}
	return spans
}

// hardCut slices text at fixed widths when no boundary is available.
func hardCut(text string, width int) []string {
	var out []string
	for len(text) > width {
		cut := width
		// back up to the nearest space within the tail quarter if any
		if idx := strings.LastIndexByte(text[width*3/4:width], ' '); idx >= 0 {
			cut = width*3/4 + idx
		}
		out = append(out, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
