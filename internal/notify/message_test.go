package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeplan-backend/internal/schedule"
)

func TestFormatMessage(t *testing.T) {
	s := &schedule.Schedule{ID: "sched-9", Title: "Learn Spanish"}
	day := &schedule.DayPlan{
		Day:        3,
		Date:       time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Summary:    "Practice past tense",
		KeyPoints:  []string{"preterite", "imperfect"},
		Example:    "ayer fui al mercado",
		Resources:  []string{"conjugation tables"},
		Tips:       []string{"speak aloud"},
		Duration:   "30 minutes",
		Motivation: "Habits compound.",
	}

	msg := FormatMessage(s, day)

	assert.Equal(t, "Day 3: Learn Spanish", msg.Title)
	assert.True(t, strings.HasPrefix(msg.Body, "Practice past tense"))
	assert.Contains(t, msg.Body, "Key points:\n• preterite\n• imperfect")
	assert.Contains(t, msg.Body, "Resources:\n• conjugation tables")
	assert.Contains(t, msg.Body, "Tips:\n• speak aloud")
	assert.Contains(t, msg.Body, "Example: ayer fui al mercado")
	assert.Contains(t, msg.Body, "Estimated time: 30 minutes")
	assert.Contains(t, msg.Body, "Motivation: Habits compound.")

	assert.Equal(t, "sched-9", msg.Data.ScheduleID)
	assert.Equal(t, 3, msg.Data.Day)
	assert.Equal(t, []string{"conjugation tables"}, msg.Data.Resources)
}

func TestFormatMessage_OmitsEmptySections(t *testing.T) {
	s := &schedule.Schedule{ID: "sched-9", Title: "Minimal"}
	day := &schedule.DayPlan{Day: 1, Summary: "Just this"}

	msg := FormatMessage(s, day)
	assert.Equal(t, "Just this", msg.Body)
}

func TestSplitMessage_ShortBodySingleChunk(t *testing.T) {
	chunks := SplitMessage("hello", 100)
	assert.Equal(t, []string{"hello"}, chunks)
}

func TestSplitMessage_SectionBoundaries(t *testing.T) {
	content := "intro line\n1. first section with some text\n2. second section with more text\n3. third section"
	chunks := SplitMessage(content, 40)

	require.Greater(t, len(chunks), 1)
	joined := strings.Join(chunks, "\n")
	// Section numbers survive the split.
	assert.Contains(t, joined, "1. first section")
	assert.Contains(t, joined, "2. second section")
	assert.Contains(t, joined, "3. third section")
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 40)
	}
}

func TestSplitMessage_PacksSectionsGreedily(t *testing.T) {
	content := "aaa\n1. bbb\n2. ccc\n3. ddd"
	chunks := SplitMessage(content, 15)
	// "aaa" + "1. bbb" fit together; every chunk stays under the cap.
	require.NotEmpty(t, chunks)
	assert.Equal(t, "aaa\n1. bbb", chunks[0])
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 15)
	}
}

func TestSplitMessage_HardCutWithoutSections(t *testing.T) {
	content := strings.Repeat("x", 95)
	chunks := SplitMessage(content, 40)

	require.Len(t, chunks, 3)
	assert.Equal(t, 40, len(chunks[0]))
	assert.Equal(t, 40, len(chunks[1]))
	assert.Equal(t, 15, len(chunks[2]))
	assert.Equal(t, content, strings.Join(chunks, ""))
}

func TestSplitMessage_OversizedSectionHardCut(t *testing.T) {
	content := "1. short\n2. " + strings.Repeat("y", 80)
	chunks := SplitMessage(content, 30)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 30)
	}
	assert.Contains(t, strings.Join(chunks, ""), "1. short")
}
