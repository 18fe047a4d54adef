package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/Joseda-hg/lazytareas/internal/notify"
	"github.com/dustin/go-humanize"
)

func statusMarker(status model.Status) string {
	switch status {
	case model.StatusInProgress:
		return "[~]"
	case model.StatusCompleted:
		return "[x]"
	case model.StatusCancelled:
		return "[-]"
	default:
		return "[ ]"
	}
}

func importanceMarker(importance model.Importance) string {
	switch importance {
	case model.ImportanceHigh:
		return "!!!"
	case model.ImportanceMedium:
		return "!! "
	default:
		return "!  "
	}
}

func formatTaskSummary(task model.Task, now time.Time) string {
	summary := fmt.Sprintf("%s %s %s", statusMarker(task.Status), importanceMarker(task.Importance), task.Name)
	if badge := model.BadgeFor(task, now); badge != model.BadgeNone {
		summary += " (" + string(badge) + ")"
	}
	return summary
}

func renderTaskDetail(w io.Writer, task model.Task, now time.Time) {
	lines := []string{
		task.Name,
		fmt.Sprintf("Status: %s", task.Status.Label()),
		fmt.Sprintf("Importance: %s", task.Importance.Label()),
		fmt.Sprintf("Due: %s", model.DueLabel(task, now)),
	}
	if badge := model.BadgeFor(task, now); badge != model.BadgeNone {
		lines = append(lines, fmt.Sprintf("Alert: %s", badge))
	}
	if task.StartDate != nil {
		lines = append(lines, fmt.Sprintf("Start: %s", task.StartDate))
	}
	if task.DurationDays != nil {
		lines = append(lines, fmt.Sprintf("Duration: %d days", *task.DurationDays))
	}
	if !task.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Created: %s", humanize.Time(task.CreatedAt.Time)))
	}
	if task.CompletedAt != nil {
		lines = append(lines, fmt.Sprintf("Completed: %s", task.CompletedAt.Format("2006-01-02 15:04")))
	}
	description := strings.TrimSpace(task.Description)
	if description == "" {
		description = "No description"
	}
	lines = append(lines, "", description)
	fmt.Fprint(w, strings.Join(lines, "\n"))
}

func severityPrefix(severity notify.Severity) string {
	switch severity {
	case notify.SeveritySuccess:
		return "ok"
	case notify.SeverityError:
		return "error"
	case notify.SeverityWarning:
		return "warn"
	default:
		return "info"
	}
}

func renderToasts(w io.Writer, items []notify.Item) {
	for _, item := range items {
		fmt.Fprintf(w, "[%s] %s\n", severityPrefix(item.Severity), item.Message)
	}
}

func renderFilterSummary(spec model.FilterSpec) string {
	parts := []string{}
	if spec.Search != "" {
		parts = append(parts, fmt.Sprintf("%q", spec.Search))
	}
	if spec.Status != "" {
		parts = append(parts, spec.Status.Label())
	}
	if spec.Importance != "" {
		parts = append(parts, spec.Importance.Label()+" importance")
	}
	if spec.From != "" || spec.To != "" {
		from, to := spec.From, spec.To
		if from == "" {
			from = "-"
		}
		if to == "" {
			to = "-"
		}
		parts = append(parts, fmt.Sprintf("due %s..%s", from, to))
	}
	if spec.OverdueOnly {
		parts = append(parts, "overdue")
	}
	if spec.DurationDays > 0 {
		parts = append(parts, fmt.Sprintf("%dd", spec.DurationDays))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func bar(value, maxValue, width int) string {
	if maxValue <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	filled := value * width / maxValue
	if filled == 0 {
		filled = 1
	}
	return strings.Repeat("#", filled)
}

func renderDashboard(w io.Writer, stats model.Stats, width int) {
	barWidth := max(width-32, 10)

	fmt.Fprintf(w, "Total tasks: %s\n", humanize.Comma(int64(stats.Total)))
	fmt.Fprintf(w, "Completed today: %d | this week: %d\n", stats.CompletedToday, stats.CompletedThisWeek)
	if stats.Overdue > 0 {
		fmt.Fprintf(w, "Warning: %d overdue task(s)\n", stats.Overdue)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "By status")
	counts := map[model.Status]int{
		model.StatusPending:    stats.Pending,
		model.StatusInProgress: stats.InProgress,
		model.StatusCompleted:  stats.Completed,
		model.StatusCancelled:  stats.Cancelled,
	}
	percents := map[model.Status]float64{
		model.StatusPending:    stats.PendingPercent,
		model.StatusInProgress: stats.InProgressPercent,
		model.StatusCompleted:  stats.CompletedPercent,
		model.StatusCancelled:  stats.CancelledPercent,
	}
	for status, count := range counts {
		if count == 0 {
			counts[status] = stats.ByStatus[string(status)]
		}
	}
	maxCount := 0
	for _, count := range counts {
		maxCount = max(maxCount, count)
	}
	for _, status := range model.Statuses {
		fmt.Fprintf(w, "  %-12s %4d %5.1f%% %s\n", status.Label(), counts[status], percents[status], bar(counts[status], maxCount, barWidth))
	}
	fmt.Fprintf(w, "  %-12s %4d %5.1f%%\n", "Overdue", stats.Overdue, stats.OverduePercent)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "By importance")
	maxCount = 0
	for _, count := range stats.ByImportance {
		maxCount = max(maxCount, count)
	}
	for _, importance := range model.Importances {
		count := stats.ByImportance[string(importance)]
		fmt.Fprintf(w, "  %-12s %4d %s\n", importance.Label(), count, bar(count, maxCount, barWidth))
	}
}

// WriteTasks prints one summary line per task for non-interactive output.
func WriteTasks(w io.Writer, list []model.Task, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, task := range list {
		fmt.Fprintf(w, "%4d  %s\n", task.ID, formatTaskSummary(task, now))
	}
}

func WriteStats(w io.Writer, stats model.Stats) {
	renderDashboard(w, stats, 72)
}
