package ai

import (
	"fmt"
	"strings"
)

// BuildSchedulePrompt assembles the rich first-attempt prompt: full label
// set, room for the model to elaborate.
func BuildSchedulePrompt(title, requirements string, days int) string {
	var b strings.Builder

	b.WriteString(schedulePromptHeader)

	b.WriteString("Goal: ")
	b.WriteString(title)
	b.WriteString("\n")

	if requirements != "" {
		b.WriteString("Constraints: ")
		b.WriteString(requirements)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Number of days: %d\n\n", days)
	fmt.Fprintf(&b, "Produce exactly %d sections, one per day, numbered Day 1 through Day %d.\n", days, days)
	b.WriteString(scheduleGrammar)

	return b.String()
}

// BuildStrictSchedulePrompt assembles the fallback prompt used after a parse
// failure. Minimal grammar, explicit label list, no creative freedom.
func BuildStrictSchedulePrompt(title, requirements string, days int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a %d-day plan for: %s\n", days, title)
	if requirements != "" {
		b.WriteString("Constraints: ")
		b.WriteString(requirements)
		b.WriteString("\n")
	}
	b.WriteString(strictGrammar)
	fmt.Fprintf(&b, "Output days 1 through %d and nothing else.\n", days)

	return b.String()
}
