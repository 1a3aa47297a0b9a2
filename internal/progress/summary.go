package progress

import (
	"time"

	"lifeplan-backend/internal/schedule"
)

// DayStatus is one day's entry in a weekly summary, in calendar order.
type DayStatus struct {
	Date   time.Time       `json:"date"`
	Status schedule.Status `json:"status"`
}

type WeekSummary struct {
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Completed int         `json:"completed"`
	Skipped   int         `json:"skipped"`
	Pending   int         `json:"pending"`
	Daily     []DayStatus `json:"daily"`
}

// WeeklySummary reports the current week (Monday start) up to asOf. Pure
// read over the day list, safe to call while a mark is in flight elsewhere.
func WeeklySummary(s *schedule.Schedule, asOf time.Time) WeekSummary {
	end := schedule.ToDate(asOf)
	monday := end.AddDate(0, 0, -((int(end.Weekday()) + 6) % 7))

	sum := WeekSummary{Start: monday, End: end}

	for _, day := range s.Days {
		d := schedule.ToDate(day.Date)
		if d.Before(monday) || d.After(end) {
			continue
		}
		switch day.Status {
		case schedule.StatusCompleted:
			sum.Completed++
		case schedule.StatusSkipped:
			sum.Skipped++
		default:
			sum.Pending++
		}
		sum.Daily = append(sum.Daily, DayStatus{Date: d, Status: day.Status})
	}

	return sum
}
