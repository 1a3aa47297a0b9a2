package notify

import (
	"fmt"
	"regexp"
	"strings"

	"lifeplan-backend/internal/schedule"
)

// Message is the channel-agnostic payload. Formatting happens once; only
// the transport differs per channel.
type Message struct {
	Title string
	Body  string
	Data  MessageData
}

// MessageData carries the structured extras alongside the rendered body.
type MessageData struct {
	ScheduleID string
	Day        int
	Resources  []string
	Tips       []string
	Motivation string
}

// FormatMessage renders one day's plan into a message. Shared by every
// channel sender.
func FormatMessage(s *schedule.Schedule, day *schedule.DayPlan) Message {
	var b strings.Builder

	b.WriteString(day.Summary)

	if len(day.KeyPoints) > 0 {
		b.WriteString("\n\nKey points:\n• ")
		b.WriteString(strings.Join(day.KeyPoints, "\n• "))
	}
	if len(day.Resources) > 0 {
		b.WriteString("\n\nResources:\n• ")
		b.WriteString(strings.Join(day.Resources, "\n• "))
	}
	if len(day.Tips) > 0 {
		b.WriteString("\n\nTips:\n• ")
		b.WriteString(strings.Join(day.Tips, "\n• "))
	}
	if day.Example != "" {
		b.WriteString("\n\nExample: ")
		b.WriteString(day.Example)
	}
	if day.Duration != "" {
		b.WriteString("\n\nEstimated time: ")
		b.WriteString(day.Duration)
	}
	if day.Motivation != "" {
		b.WriteString("\n\nMotivation: ")
		b.WriteString(day.Motivation)
	}

	return Message{
		Title: fmt.Sprintf("Day %d: %s", day.Day, s.Title),
		Body:  b.String(),
		Data: MessageData{
			ScheduleID: s.ID,
			Day:        day.Day,
			Resources:  day.Resources,
			Tips:       day.Tips,
			Motivation: day.Motivation,
		},
	}
}

var sectionStartPattern = regexp.MustCompile(`\n\d+\.`)

// SplitMessage cuts a long body into chunks of at most maxLen characters,
// preferring numbered-section boundaries, falling back to fixed-size cuts.
// Short bodies come back as a single chunk.
func SplitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}

	// Split on numbered sections ("1.", "2.", ...) keeping the numbers.
	bounds := sectionStartPattern.FindAllStringIndex(content, -1)
	parts := make([]string, 0, len(bounds)+1)
	prev := 0
	for _, b := range bounds {
		if p := strings.TrimSpace(content[prev:b[0]]); p != "" {
			parts = append(parts, p)
		}
		prev = b[0] + 1 // keep the section number with its section
	}
	if p := strings.TrimSpace(content[prev:]); p != "" {
		parts = append(parts, p)
	}

	var chunks []string
	current := ""
	for _, part := range parts {
		switch {
		case current == "":
			current = part
		case len(current)+1+len(part) > maxLen:
			chunks = append(chunks, current)
			current = part
		default:
			current = current + "\n" + part
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	// Sections alone were not enough: hard-cut by length.
	var out []string
	for _, c := range chunks {
		for len(c) > maxLen {
			out = append(out, c[:maxLen])
			c = c[maxLen:]
		}
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
