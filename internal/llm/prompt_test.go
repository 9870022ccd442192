package llm

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dvloznov/insight-service/internal/insight"
)

func TestParseInsights(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "mixed list markers",
			raw:  "1. Save more\n- Spend less\n\n3) Track bills",
			want: []string{"Save more", "Spend less", "Track bills"},
		},
		{
			name: "plain lines",
			raw:  "Cook at home more often\nCancel unused subscriptions",
			want: []string{"Cook at home more often", "Cancel unused subscriptions"},
		},
		{
			name: "bullets and whitespace",
			raw:  "  * Review your rent  \n\t• Set a grocery budget\n   ",
			want: []string{"Review your rent", "Set a grocery budget"},
		},
		{
			name: "truncates to five",
			raw:  "a\nb\nc\nd\ne\nf\ng",
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "only markers and whitespace",
			raw:  "1.\n- \n\n*\n",
			want: nil,
		},
		{
			name: "windows line endings keep content",
			raw:  "2) Pay off the card\r\n3) Build a buffer",
			want: []string{"Pay off the card", "Build a buffer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseInsights(tt.raw)
			// Normalize trailing \r from CRLF input.
			for i := range got {
				got[i] = strings.TrimRight(got[i], "\r")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseInsights(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuildPrompt_EmbedsNumbers(t *testing.T) {
	summary := insight.SpendingSummary{
		TotalIncome:  5000,
		TotalExpense: 3000,
		Breakdown: []insight.CategorySpend{
			{Category: "rent", Amount: 1800, Percent: 60},
			{Category: "food", Amount: 1200, Percent: 40},
		},
	}

	prompt := buildPrompt(summary)

	for _, want := range []string{"5000.00", "3000.00", "60.0%", "rent", "food", "one recommendation per line"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	// 3000/5000 ratio.
	if !strings.Contains(prompt, "60.0%") {
		t.Errorf("prompt missing spend ratio:\n%s", prompt)
	}
}

func TestBuildPrompt_ZeroIncome(t *testing.T) {
	prompt := buildPrompt(insight.SpendingSummary{TotalExpense: 100})

	if !strings.Contains(prompt, "0.0%") {
		t.Errorf("zero income should render a 0%% ratio, got:\n%s", prompt)
	}
}
