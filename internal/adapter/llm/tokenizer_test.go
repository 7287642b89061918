package llm

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minTokens int
		maxTokens int
	}{
		{
			name:      "empty string",
			text:      "",
			minTokens: 0,
			maxTokens: 0,
		},
		{
			name:      "simple sentence",
			text:      "The quick brown fox jumps over the lazy dog.",
			minTokens: 8,
			maxTokens: 12,
		},
		{
			name:      "diff hunk",
			text:      "@@ -1,3 +1,4 @@\n func main() {\n+\tfmt.Println(\"hello\")\n }",
			minTokens: 10,
			maxTokens: 30,
		},
		{
			name:      "longer text",
			text:      strings.Repeat("This is a test sentence. ", 100),
			minTokens: 500,
			maxTokens: 700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTokens(tt.text)
			if got < tt.minTokens || got > tt.maxTokens {
				t.Errorf("EstimateTokens() = %d, want between %d and %d",
					got, tt.minTokens, tt.maxTokens)
			}
		})
	}
}

func TestEstimateTokens_Consistency(t *testing.T) {
	text := "func EstimateTokens(text string) int { return len(text) / 4 }"
	first := EstimateTokens(text)
	for i := 0; i < 5; i++ {
		if got := EstimateTokens(text); got != first {
			t.Errorf("EstimateTokens() = %d on repeat call, want %d", got, first)
		}
	}
}
