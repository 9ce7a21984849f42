package triage

import "strings"

// Priority is the urgency tier assigned by the keyword heuristic.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Checked in order: any high keyword wins over any medium keyword.
var (
	highPriorityKeywords = []string{
		"urgent", "critical", "emergency", "down", "outage",
		"not working", "broken", "security", "breach",
	}
	mediumPriorityKeywords = []string{
		"issue", "problem", "error", "bug", "slow", "performance", "help",
	}
)

// PredictPriority assigns a priority by case-insensitive substring match.
func PredictPriority(text string) Priority {
	lower := strings.ToLower(text)
	if containsAny(lower, highPriorityKeywords) {
		return PriorityHigh
	}
	if containsAny(lower, mediumPriorityKeywords) {
		return PriorityMedium
	}
	return PriorityLow
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
