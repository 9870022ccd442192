package insight

import (
	"reflect"
	"strings"
	"testing"
)

func TestLocalRules_Deterministic(t *testing.T) {
	rules := NewLocalRules()
	summary := SpendingSummary{
		TotalIncome:  5000,
		TotalExpense: 3200,
		Breakdown: []CategorySpend{
			{Category: "rent", Amount: 1600, Percent: 50},
			{Category: "food", Amount: 900, Percent: 28.1},
			{Category: "fun", Amount: 700, Percent: 21.9},
		},
	}

	first := rules.Generate(summary)
	for i := 0; i < 10; i++ {
		if got := rules.Generate(summary); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

// Scenario from the source system: income 10,000,000 against food 4,500,000
// and shopping 1,500,000.
func TestLocalRules_FullScenario(t *testing.T) {
	rules := NewLocalRules()
	summary := SpendingSummary{
		TotalIncome:  10000000,
		TotalExpense: 6000000,
		Breakdown: []CategorySpend{
			{Category: "food", Amount: 4500000, Percent: 75},
			{Category: "shopping", Amount: 1500000, Percent: 25},
		},
	}

	insights := rules.Generate(summary)

	if len(insights) != 4 {
		t.Fatalf("got %d insights, want exactly 4 (no padding): %v", len(insights), insights)
	}

	// Rule 1: 60% ratio, acceptable band.
	if !strings.Contains(insights[0], "60%") || !strings.Contains(insights[0], "acceptable") {
		t.Errorf("ratio message = %q, want mention of 60%% and acceptable", insights[0])
	}
	// Rule 2: food at 75% is too high.
	if !strings.Contains(insights[1], "food") || !strings.Contains(insights[1], "too high") {
		t.Errorf("top category message = %q, want food flagged as too high", insights[1])
	}
	// Rule 3: 10% of shopping = 150000.
	if !strings.Contains(insights[2], "shopping") || !strings.Contains(insights[2], "150000") {
		t.Errorf("second category message = %q, want shopping saving of 150000", insights[2])
	}
	// Rule 4: saving 40% of income.
	if !strings.Contains(insights[3], "40%") {
		t.Errorf("savings message = %q, want mention of 40%%", insights[3])
	}
}

func TestLocalRules_IncomeOnly(t *testing.T) {
	rules := NewLocalRules()
	summary := SpendingSummary{TotalIncome: 5000}

	insights := rules.Generate(summary)

	// Spend ratio is 0 and there is no breakdown, so only the savings rule
	// fires.
	if len(insights) != 1 {
		t.Fatalf("got %d insights, want exactly 1: %v", len(insights), insights)
	}
	if !strings.Contains(insights[0], "100%") {
		t.Errorf("savings message = %q, want 100%% savings", insights[0])
	}
}

func TestLocalRules_EmptySummary(t *testing.T) {
	rules := NewLocalRules()

	if insights := rules.Generate(SpendingSummary{}); len(insights) != 0 {
		t.Errorf("zero income and expenses should yield no insights, got %v", insights)
	}
}

func TestLocalRules_RatioBands(t *testing.T) {
	rules := NewLocalRules()

	tests := []struct {
		name    string
		expense float64
		want    string
	}{
		{"over 70", 8000, "Cut back"},
		{"over 50", 6000, "acceptable"},
		{"under 50", 3000, "good savings ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := SpendingSummary{TotalIncome: 10000, TotalExpense: tt.expense}
			insights := rules.Generate(summary)
			if len(insights) == 0 {
				t.Fatal("expected at least the ratio insight")
			}
			if !strings.Contains(insights[0], tt.want) {
				t.Errorf("ratio message = %q, want substring %q", insights[0], tt.want)
			}
		})
	}
}

func TestLocalRules_TopCategoryBands(t *testing.T) {
	rules := NewLocalRules()

	tests := []struct {
		name    string
		percent float64
		want    string
	}{
		{"over 40 flags too high", 45, "too high"},
		{"over 20 flags largest", 25, "largest expense"},
		{"at or under 20 silent", 20, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := SpendingSummary{
				TotalExpense: 1000,
				Breakdown:    []CategorySpend{{Category: "rent", Amount: 1000, Percent: tt.percent}},
			}
			insights := rules.Generate(summary)

			var categoryMsg string
			for _, msg := range insights {
				if strings.Contains(msg, "rent") {
					categoryMsg = msg
					break
				}
			}

			if tt.want == "" {
				if categoryMsg != "" {
					t.Errorf("expected no category message at %.0f%%, got %q", tt.percent, categoryMsg)
				}
				return
			}
			if !strings.Contains(categoryMsg, tt.want) {
				t.Errorf("category message = %q, want substring %q", categoryMsg, tt.want)
			}
		})
	}
}

func TestLocalRules_SavingsBelowTarget(t *testing.T) {
	rules := NewLocalRules()
	summary := SpendingSummary{TotalIncome: 1000, TotalExpense: 900}

	insights := rules.Generate(summary)

	var savingsMsg string
	for _, msg := range insights {
		if strings.Contains(msg, "saving") && strings.Contains(msg, "20%") {
			savingsMsg = msg
		}
	}
	if savingsMsg == "" {
		t.Errorf("expected a raise-savings-to-20%% message, got %v", insights)
	}
}

func TestLocalRules_NeverExceedsMax(t *testing.T) {
	rules := NewLocalRules()
	summary := SpendingSummary{
		TotalIncome:  10000,
		TotalExpense: 6000,
		Breakdown: []CategorySpend{
			{Category: "rent", Amount: 3000, Percent: 50},
			{Category: "food", Amount: 2000, Percent: 33.3},
			{Category: "fun", Amount: 1000, Percent: 16.7},
		},
	}

	if got := rules.Generate(summary); len(got) > MaxInsights {
		t.Errorf("got %d insights, max is %d", len(got), MaxInsights)
	}
}

func TestPlaceholder_ReturnsCopy(t *testing.T) {
	a := Placeholder()
	if len(a) != 3 {
		t.Fatalf("placeholder has %d items, want 3", len(a))
	}

	a[0] = "mutated"
	if b := Placeholder(); b[0] == "mutated" {
		t.Error("Placeholder must return a fresh copy")
	}
}
