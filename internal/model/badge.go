package model

import (
	"time"

	"github.com/dustin/go-humanize"
)

type Badge string

const (
	BadgeNone     Badge = ""
	BadgeOverdue  Badge = "Overdue"
	BadgeDueToday Badge = "Due today"
	BadgeDueSoon  Badge = "Due soon"
)

const dueSoonDays = 3

// RemainingDays prefers the server-derived value and only falls back to the
// local clock when the server omitted it.
func RemainingDays(task Task, now time.Time) (int, bool) {
	if task.Status.Closed() || task.DueDate == nil {
		return 0, false
	}
	if task.DaysRemaining != nil {
		return *task.DaysRemaining, true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(task.DueDate.Year(), task.DueDate.Month(), task.DueDate.Day(), 0, 0, 0, 0, now.Location())
	return int(due.Sub(today).Hours() / 24), true
}

func BadgeFor(task Task, now time.Time) Badge {
	if task.Status.Closed() {
		return BadgeNone
	}
	if task.Overdue {
		return BadgeOverdue
	}
	days, ok := RemainingDays(task, now)
	if !ok {
		return BadgeNone
	}
	switch {
	case days < 0:
		return BadgeOverdue
	case days == 0:
		return BadgeDueToday
	case days <= dueSoonDays:
		return BadgeDueSoon
	default:
		return BadgeNone
	}
}

// DueLabel renders the due date relative to now, e.g. "3 days from now".
func DueLabel(task Task, now time.Time) string {
	if task.DueDate == nil {
		if task.DurationDays != nil {
			return humanize.Comma(int64(*task.DurationDays)) + "d duration"
		}
		return "n/a"
	}
	if task.Status.Closed() {
		return task.DueDate.String()
	}
	days, _ := RemainingDays(task, now)
	if days == 0 {
		return task.DueDate.String() + " (today)"
	}
	return task.DueDate.String() + " (" + humanize.RelTime(now.AddDate(0, 0, days), now, "ago", "from now") + ")"
}
