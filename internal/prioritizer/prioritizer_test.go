package prioritizer

import (
	"strings"
	"testing"
	"time"

	"github.com/rcliao/agent-context/internal/model"
	"github.com/rcliao/agent-context/internal/token"
)

func newTestPrioritizer(t *testing.T) *Prioritizer {
	t.Helper()
	return New(token.NewCounter(), Options{})
}

// makeExchange builds an exchange whose rendered form is exactly 80
// characters (20 tokens at 4 chars/token).
func makeExchange(ts time.Time) model.Exchange {
	return model.Exchange{
		User:      strings.Repeat("u", 31),
		Assistant: strings.Repeat("a", 31),
		CreatedAt: ts,
	}
}

func TestInstructions_NeverTruncated(t *testing.T) {
	p := newTestPrioritizer(t)
	text := strings.Repeat("x", 2000) // 500 tokens

	out := p.Truncate(model.Section{ID: model.SectionInstructions, Text: text}, 255)

	if out.Truncated {
		t.Error("instructions must never be truncated")
	}
	if !out.ConfigError {
		t.Error("oversized instructions should flag a configuration error")
	}
	if out.Section.Text != text {
		t.Error("instructions content must pass through unchanged")
	}
}

func TestInstructions_WithinBudget(t *testing.T) {
	p := newTestPrioritizer(t)
	out := p.Truncate(model.Section{ID: model.SectionInstructions, Text: "be helpful"}, 255)
	if out.ConfigError || out.Truncated {
		t.Error("fitting instructions should pass through cleanly")
	}
}

func TestGoal_KeepsStartAndEnd(t *testing.T) {
	p := newTestPrioritizer(t)
	// 7200 chars = 1800 tokens, against the 1500-token goal budget.
	text := strings.Repeat("abcd ", 1440)

	out := p.Truncate(model.Section{ID: model.SectionGoal, Text: text}, 1500)

	if !out.Truncated || !out.TextElided {
		t.Fatal("expected goal to be truncated with middle elided")
	}
	if !strings.Contains(out.Section.Text, ElisionMarker) {
		t.Error("truncated goal should contain the elision marker")
	}
	if out.Section.Tokens > 1500 {
		t.Errorf("final goal tokens %d exceed budget 1500", out.Section.Tokens)
	}
	if !strings.HasPrefix(out.Section.Text, "abcd") {
		t.Error("truncated goal should retain the start of the text")
	}
	if !strings.HasSuffix(out.Section.Text, "abcd") {
		t.Error("truncated goal should retain the end of the text")
	}
}

func TestGoal_SentenceBoundarySnap(t *testing.T) {
	p := newTestPrioritizer(t)
	// Long text with sentences; the start span should end at a period.
	sentence := "Budget overruns require very careful trimming. "
	text := strings.Repeat(sentence, 200)

	out := p.Truncate(model.Section{ID: model.SectionGoal, Text: text}, 1500)

	if !out.Truncated {
		t.Fatal("expected truncation")
	}
	idx := strings.Index(out.Section.Text, ElisionMarker)
	if idx < 0 {
		t.Fatal("missing elision marker")
	}
	before := strings.TrimSpace(out.Section.Text[:idx])
	if !strings.HasSuffix(before, ".") {
		t.Errorf("start span should end at a sentence boundary, got %q", before[len(before)-20:])
	}
}

func TestGoal_Idempotent(t *testing.T) {
	p := newTestPrioritizer(t)
	text := "short goal"
	out := p.Truncate(model.Section{ID: model.SectionGoal, Text: text}, 1500)
	if out.Truncated || out.Section.Text != text {
		t.Error("goal within budget must pass through unchanged")
	}
}

func TestMemory_KeepsMostRecent(t *testing.T) {
	p := newTestPrioritizer(t)
	base := time.Now()
	exchanges := []model.Exchange{
		makeExchange(base),
		makeExchange(base.Add(time.Minute)),
		makeExchange(base.Add(2 * time.Minute)),
	}
	sec := model.Section{
		ID:        model.SectionMemory,
		Exchanges: exchanges,
		Text:      model.RenderExchanges(exchanges),
	}

	// Three 20-token exchanges against a 55-token budget: the oldest drops.
	out := p.Truncate(sec, 55)

	if !out.Truncated {
		t.Fatal("expected truncation")
	}
	if len(out.Section.Exchanges) != 2 {
		t.Fatalf("expected 2 exchanges kept, got %d", len(out.Section.Exchanges))
	}
	if len(out.DroppedExchanges) != 1 {
		t.Fatalf("expected 1 exchange dropped, got %d", len(out.DroppedExchanges))
	}
	if !out.DroppedExchanges[0].CreatedAt.Equal(base) {
		t.Error("the oldest exchange should be the one dropped")
	}
	// Chronological order preserved in the kept run.
	if out.Section.Exchanges[0].CreatedAt.After(out.Section.Exchanges[1].CreatedAt) {
		t.Error("kept exchanges should be in chronological order")
	}
	if out.Section.Tokens > 55 {
		t.Errorf("final tokens %d exceed budget 55", out.Section.Tokens)
	}
}

func TestMemory_ContiguousRun(t *testing.T) {
	p := newTestPrioritizer(t)
	base := time.Now()
	var exchanges []model.Exchange
	for i := 0; i < 5; i++ {
		exchanges = append(exchanges, makeExchange(base.Add(time.Duration(i)*time.Minute)))
	}
	sec := model.Section{
		ID:        model.SectionMemory,
		Exchanges: exchanges,
		Text:      model.RenderExchanges(exchanges),
	}

	out := p.Truncate(sec, 70) // room for three 20-token exchanges plus separators

	kept := out.Section.Exchanges
	if len(kept) == 0 {
		t.Fatal("expected at least one kept exchange")
	}
	// If exchange K is kept, every newer exchange is also kept.
	oldest := kept[0].CreatedAt
	for _, e := range exchanges {
		if e.CreatedAt.Before(oldest) {
			continue
		}
		found := false
		for _, k := range kept {
			if k.CreatedAt.Equal(e.CreatedAt) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("exchange at %v newer than oldest kept but missing", e.CreatedAt)
		}
	}
}

func TestMemory_FullyDropped(t *testing.T) {
	p := newTestPrioritizer(t)
	exchanges := []model.Exchange{makeExchange(time.Now())}
	sec := model.Section{
		ID:        model.SectionMemory,
		Exchanges: exchanges,
		Text:      model.RenderExchanges(exchanges),
	}

	out := p.Truncate(sec, 5) // smaller than one exchange

	if !out.FullyDropped {
		t.Error("expected section to be fully dropped")
	}
	if out.Section.Tokens != 0 {
		t.Errorf("expected 0 final tokens, got %d", out.Section.Tokens)
	}
	if out.Section.Text != "" {
		t.Error("fully dropped section should render empty")
	}
}

// makeChunk builds a chunk whose rendered form is exactly tokens*4
// characters. The rendered header for a two-char source is 31 chars.
func makeChunk(source string, score float64, tokens int) model.Chunk {
	return model.Chunk{
		Source:  source,
		Score:   score,
		Content: strings.Repeat("c", tokens*4-31),
	}
}

func TestRetrieval_ScoreOrderAndBudget(t *testing.T) {
	p := newTestPrioritizer(t)
	chunks := []model.Chunk{
		makeChunk("s1", 0.89, 200),
		makeChunk("s2", 0.76, 180),
		makeChunk("s3", 0.68, 150),
		makeChunk("s4", 0.42, 120),
	}
	sec := model.Section{
		ID:     model.SectionRetrieval,
		Chunks: chunks,
		Text:   model.RenderChunks(chunks),
	}

	out := p.Truncate(sec, 550)

	if len(out.Section.Chunks) != 3 {
		t.Fatalf("expected 3 chunks kept, got %d", len(out.Section.Chunks))
	}
	for i, want := range []string{"s1", "s2", "s3"} {
		if out.Section.Chunks[i].Source != want {
			t.Errorf("kept chunk %d = %s, want %s", i, out.Section.Chunks[i].Source, want)
		}
	}
	if len(out.DroppedChunks) != 1 || out.DroppedChunks[0].Source != "s4" {
		t.Error("expected the lowest-scoring chunk to be dropped")
	}
	if out.Section.Tokens > 550 {
		t.Errorf("final tokens %d exceed budget 550", out.Section.Tokens)
	}
}

func TestRetrieval_ThresholdFilter(t *testing.T) {
	p := newTestPrioritizer(t)
	chunks := []model.Chunk{
		makeChunk("hi", 0.9, 100),
		makeChunk("lo", 0.1, 100),
		makeChunk("md", 0.5, 100),
	}
	sec := model.Section{
		ID:     model.SectionRetrieval,
		Chunks: chunks,
		Text:   model.RenderChunks(chunks),
	}

	out := p.Truncate(sec, 250)

	for _, c := range out.Section.Chunks {
		if c.Score < DefaultSimilarityThreshold {
			t.Errorf("kept chunk %s has score %.2f below threshold", c.Source, c.Score)
		}
	}
	// Survivors ranked by descending score.
	if len(out.Section.Chunks) != 2 ||
		out.Section.Chunks[0].Source != "hi" || out.Section.Chunks[1].Source != "md" {
		t.Errorf("unexpected kept chunks: %+v", out.Section.Chunks)
	}
}

func TestRetrieval_StableOnTies(t *testing.T) {
	p := newTestPrioritizer(t)
	chunks := []model.Chunk{
		makeChunk("aa", 0.5, 50),
		makeChunk("bb", 0.5, 50),
		makeChunk("cc", 0.5, 50),
	}
	sec := model.Section{
		ID:     model.SectionRetrieval,
		Chunks: chunks,
		Text:   model.RenderChunks(chunks),
	}

	out := p.Truncate(sec, 105)

	if len(out.Section.Chunks) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(out.Section.Chunks))
	}
	if out.Section.Chunks[0].Source != "aa" || out.Section.Chunks[1].Source != "bb" {
		t.Error("ties should preserve original input order")
	}
}

// makeOutput builds a tool output whose rendered form is tokens*4 chars.
// Header for a four-char tool name: "[name - SUCCESS]\n" = 17 chars,
// "[name - FAILED]\n" = 16 chars.
func makeOutput(tool string, success bool, ts time.Time, tokens int) model.ToolOutput {
	header := 16
	if success {
		header = 17
	}
	return model.ToolOutput{
		Tool:      tool,
		Success:   success,
		CreatedAt: ts,
		Output:    strings.Repeat("o", tokens*4-header),
	}
}

func TestToolOutputs_SuccessBeforeFailure(t *testing.T) {
	p := newTestPrioritizer(t)
	base := time.Now()
	outputs := []model.ToolOutput{
		makeOutput("calc", false, base.Add(3*time.Minute), 50), // most recent, failed
		makeOutput("find", true, base.Add(time.Minute), 50),
		makeOutput("grep", true, base.Add(2*time.Minute), 50),
	}
	sec := model.Section{
		ID:      model.SectionToolOutputs,
		Outputs: outputs,
		Text:    model.RenderToolOutputs(outputs),
	}

	out := p.Truncate(sec, 105)

	if len(out.Section.Outputs) != 2 {
		t.Fatalf("expected 2 outputs kept, got %d", len(out.Section.Outputs))
	}
	// Successes outrank the more recent failure; recency orders successes.
	if out.Section.Outputs[0].Tool != "grep" || out.Section.Outputs[1].Tool != "find" {
		t.Errorf("unexpected kept order: %s, %s",
			out.Section.Outputs[0].Tool, out.Section.Outputs[1].Tool)
	}
	if len(out.DroppedOutputs) != 1 || out.DroppedOutputs[0].Tool != "calc" {
		t.Error("the failed output should be the one dropped")
	}
}

func TestToolOutputs_Idempotent(t *testing.T) {
	p := newTestPrioritizer(t)
	outputs := []model.ToolOutput{makeOutput("calc", true, time.Now(), 20)}
	sec := model.Section{
		ID:      model.SectionToolOutputs,
		Outputs: outputs,
		Text:    model.RenderToolOutputs(outputs),
	}

	out := p.Truncate(sec, 855)

	if out.Truncated {
		t.Error("fitting tool outputs must pass through unchanged")
	}
	if out.Section.Text != sec.Text {
		t.Error("text should be unchanged")
	}
}

func TestForSection_ClosedSet(t *testing.T) {
	p := newTestPrioritizer(t)
	for _, id := range model.TruncationQueue {
		if _, ok := p.ForSection(id); !ok {
			t.Errorf("missing strategy for section %s", id)
		}
	}
	if _, ok := p.ForSection(model.SectionID("bogus")); ok {
		t.Error("unknown section should have no strategy")
	}
}
