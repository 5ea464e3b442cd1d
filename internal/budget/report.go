package budget

import (
	"fmt"
	"strings"

	"github.com/rcliao/agent-context/internal/model"
)

const reportBarWidth = 30

// FormatReport renders a human-readable budget report for one assembly.
func FormatReport(cfg Config, alloc Allocation) string {
	var b strings.Builder

	rule := strings.Repeat("=", 60)
	b.WriteString(rule + "\n")
	b.WriteString("CONTEXT WINDOW BUDGET REPORT\n")
	b.WriteString(rule + "\n")

	for _, id := range model.PresentationOrder {
		used := alloc[id]
		limit := cfg.For(id)

		ratio := 0.0
		if limit > 0 {
			ratio = float64(used) / float64(limit)
		}
		filled := int(reportBarWidth * min(ratio, 1.0))
		bar := strings.Repeat("=", filled) + strings.Repeat("-", reportBarWidth-filled)

		status := "OK"
		if used > limit {
			status = "EXCEEDED"
		}

		fmt.Fprintf(&b, "%-15s [%s] %4d/%4d (%5.1f%%) %s\n",
			id.Title(), bar, used, limit, ratio*100, status)
	}

	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "%-15s %4d/%4d tokens\n", "TOTAL", alloc.Total(), cfg.Total())
	b.WriteString(rule)

	return b.String()
}
