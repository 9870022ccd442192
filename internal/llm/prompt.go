package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/insight-service/internal/insight"
)

// buildPrompt renders the generation prompt from the spending summary. The
// instruction pins the output format so parseInsights can split it reliably.
func buildPrompt(summary insight.SpendingSummary) string {
	var spendRatio float64
	if summary.TotalIncome > 0 {
		spendRatio = summary.TotalExpense / summary.TotalIncome * 100
	}

	var b strings.Builder
	b.WriteString("You are a personal finance advisor. Analyze this monthly spending summary:\n\n")
	fmt.Fprintf(&b, "Total income: %.2f\n", summary.TotalIncome)
	fmt.Fprintf(&b, "Total expenses: %.2f\n", summary.TotalExpense)
	fmt.Fprintf(&b, "Spend/income ratio: %.1f%%\n\n", spendRatio)

	if len(summary.Breakdown) > 0 {
		b.WriteString("Expenses by category:\n")
		for _, c := range summary.Breakdown {
			fmt.Fprintf(&b, "- %s: %.2f (%.1f%% of expenses)\n", c.Category, c.Amount, c.Percent)
		}
		b.WriteString("\n")
	}

	b.WriteString("Give up to 5 short, concrete recommendations grounded in the numbers above.\n")
	b.WriteString("Write exactly one recommendation per line.\n")
	b.WriteString("Do not number the lines, do not use bullet points, and do not add headers or closing remarks.\n")

	return b.String()
}

// listMarker matches leading list decorations the model may add despite the
// prompt: "1.", "1)", "-", "*", "•".
var listMarker = regexp.MustCompile(`^\s*(\d+[.)]|[-*•])\s*`)

// parseInsights splits raw model output into discrete insight strings:
// one per line, list markers and surrounding whitespace stripped, empty lines
// dropped, truncated to MaxInsights. Returns an empty slice when nothing
// usable remains.
func parseInsights(raw string) []string {
	var insights []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		insights = append(insights, line)
		if len(insights) == insight.MaxInsights {
			break
		}
	}

	return insights
}
