package insight

import (
	"fmt"
	"math"
)

// MaxInsights bounds every insight list returned by the pipeline.
const MaxInsights = 5

// placeholderInsights is the static bottom tier, used only when the rule
// engine produces nothing (e.g. zero income and zero expenses).
var placeholderInsights = []string{
	"Track your spending for a full month to understand where your money goes.",
	"Set a budget for each spending category and review it weekly.",
	"Aim to save at least 20% of your income before discretionary spending.",
}

// Placeholder returns a copy of the static placeholder insight list.
func Placeholder() []string {
	out := make([]string, len(placeholderInsights))
	copy(out, placeholderInsights)
	return out
}

// LocalRules is the deterministic, dependency-free insight generator. Rules
// run in a fixed order and each appends at most one message, so the output is
// byte-identical across calls for the same summary.
type LocalRules struct{}

// NewLocalRules creates the local rule engine.
func NewLocalRules() *LocalRules {
	return &LocalRules{}
}

// Generate evaluates the rules against the summary. It never fails; it may
// return an empty list when no rule applies.
func (r *LocalRules) Generate(summary SpendingSummary) []string {
	var insights []string

	// Rule 1: spend/income ratio.
	var spendRatio float64
	if summary.TotalIncome > 0 {
		spendRatio = summary.TotalExpense / summary.TotalIncome * 100
	}
	switch {
	case spendRatio > 70:
		insights = append(insights, fmt.Sprintf(
			"You are spending %.0f%% of your income. Cut back on non-essential expenses to bring this down.",
			math.Round(spendRatio)))
	case spendRatio > 50:
		insights = append(insights, fmt.Sprintf(
			"Your spending is %.0f%% of your income, which is acceptable, but reducing it further would strengthen your finances.",
			math.Round(spendRatio)))
	case spendRatio > 0:
		insights = append(insights, fmt.Sprintf(
			"You are spending only %.0f%% of your income. That is a good savings ratio, keep it up.",
			math.Round(spendRatio)))
	}

	// Rule 2: highest-percentage category.
	if len(summary.Breakdown) > 0 {
		top := summary.Breakdown[0]
		switch {
		case top.Percent > 40:
			insights = append(insights, fmt.Sprintf(
				"Spending on %s is too high at %.1f%% of your expenses. Look for ways to trim it.",
				top.Category, top.Percent))
		case top.Percent > 20:
			insights = append(insights, fmt.Sprintf(
				"%s is your largest expense at %.1f%% of total spending.",
				top.Category, top.Percent))
		}
	}

	// Rule 3: second-ranked category.
	if len(summary.Breakdown) >= 2 {
		second := summary.Breakdown[1]
		insights = append(insights, fmt.Sprintf(
			"Reducing %s spending by 10%% would save you %.0f.",
			second.Category, second.Amount*0.10))
	}

	// Rule 4: savings percentage.
	if summary.TotalIncome > summary.TotalExpense {
		savings := (summary.TotalIncome - summary.TotalExpense) / summary.TotalIncome * 100
		if savings < 20 {
			insights = append(insights, fmt.Sprintf(
				"You are saving %.0f%% of your income. Aim for at least 20%%.",
				math.Round(savings)))
		} else {
			insights = append(insights, fmt.Sprintf(
				"You are saving %.0f%% of your income. Great job, keep it up.",
				math.Round(savings)))
		}
	}

	// Safety bound: each rule contributes at most one message, so this only
	// matters if rules are added later.
	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}

	return insights
}
