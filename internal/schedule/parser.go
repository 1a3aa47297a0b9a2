package schedule

import (
	"fmt"
	"regexp"
	"strings"
)

// The fixed label set recognized inside a day chunk. Matching is
// case-insensitive and order-tolerant; a missing label is an absent field,
// never a failure.
const (
	labelTitle      = "title"
	labelKeyPoints  = "key points"
	labelExample    = "example"
	labelResources  = "resources"
	labelTips       = "tips"
	labelDuration   = "duration"
	labelMotivation = "motivation"
)

var (
	// Day boundary marker: "Day 3:" at line start, tolerant of markdown
	// decoration the model likes to add ("**Day 3:**", "### Day 3:").
	dayMarkerPattern = regexp.MustCompile(`(?mi)^[\s#*]*Day\s+(\d+)\s*[:.\-]`)

	// Field label at line start, e.g. "Key Points:" or "- **Tips**:".
	labelLinePattern = regexp.MustCompile(`(?i)^[\s\-*]*(?:\*\*)?(title|key points|example|resources|tips|duration|motivation)(?:\*\*)?\s*:\s*(.*)$`)

	// Leading bullet or enumeration on a list line.
	bulletPrefixPattern = regexp.MustCompile(`^[\s\-*•]+|^\d+[.)]\s*`)
)

// ParseError reports malformed or incomplete generated text. It is a defect
// in the completion content, distinct from transport failures, and is what
// triggers the strict-prompt retry.
type ParseError struct {
	Defects []string
}

func (e *ParseError) Error() string {
	return "invalid generated schedule: " + strings.Join(e.Defects, "; ")
}

// Parse segments raw completion text into exactly want day plans. Every
// returned plan has a non-empty Summary and status pending; day numbers are
// contiguous 1..want. Dates are left to the caller.
func Parse(raw string, want int) ([]DayPlan, error) {
	markers := dayMarkerPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(markers) == 0 {
		return nil, &ParseError{Defects: []string{"no day markers found"}}
	}

	// Segment into per-day chunks. First occurrence of a day number wins;
	// later duplicates are ignored so repeated blocks cannot overwrite an
	// already parsed day. Numbers outside [1, want] are discarded.
	chunks := make(map[int]string)
	for i, m := range markers {
		num := 0
		fmt.Sscanf(raw[m[2]:m[3]], "%d", &num)
		if num < 1 || num > want {
			continue
		}
		if _, seen := chunks[num]; seen {
			continue
		}
		start := m[1] // text begins right after "Day N:"
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		chunks[num] = raw[start:end]
	}

	var defects []string
	days := make([]DayPlan, 0, want)

	for n := 1; n <= want; n++ {
		chunk, ok := chunks[n]
		if !ok {
			defects = append(defects, fmt.Sprintf("day %d missing", n))
			continue
		}

		plan := parseChunk(chunk)
		plan.Day = n
		plan.Status = StatusPending

		if plan.Summary == "" {
			defects = append(defects, fmt.Sprintf("day %d has no usable content", n))
			continue
		}
		days = append(days, plan)
	}

	if len(defects) > 0 {
		return nil, &ParseError{Defects: defects}
	}
	return days, nil
}

// parseChunk extracts labeled fields from one day's text and derives the
// summary through the fallback chain: explicit title, first key point,
// first non-empty unlabeled line.
func parseChunk(chunk string) DayPlan {
	fields := make(map[string][]string)
	current := ""
	firstLine := ""

	for _, line := range strings.Split(chunk, "\n") {
		if m := labelLinePattern.FindStringSubmatch(line); m != nil {
			current = strings.ToLower(m[1])
			if rest := strings.TrimSpace(m[2]); rest != "" {
				fields[current] = append(fields[current], rest)
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			current = ""
			continue
		}
		if current != "" {
			// Continuation of the previous label.
			fields[current] = append(fields[current], trimmed)
			continue
		}
		if firstLine == "" {
			firstLine = strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(trimmed, ""))
		}
	}

	plan := DayPlan{
		KeyPoints:  listField(fields[labelKeyPoints]),
		Example:    scalarField(fields[labelExample]),
		Resources:  listField(fields[labelResources]),
		Tips:       listField(fields[labelTips]),
		Duration:   scalarField(fields[labelDuration]),
		Motivation: scalarField(fields[labelMotivation]),
	}

	plan.Summary = scalarField(fields[labelTitle])
	if plan.Summary == "" && len(plan.KeyPoints) > 0 {
		plan.Summary = plan.KeyPoints[0]
	}
	if plan.Summary == "" {
		plan.Summary = firstLine
	}

	return plan
}

// scalarField joins collected lines into one value.
func scalarField(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, " "))
}

// listField flattens collected lines into items: bullets are stripped and
// inline comma-separated values are split.
func listField(lines []string) []string {
	var items []string
	for _, line := range lines {
		line = bulletPrefixPattern.ReplaceAllString(line, "")
		for _, part := range strings.Split(line, ",") {
			if p := strings.TrimSpace(part); p != "" {
				items = append(items, p)
			}
		}
	}
	return items
}
