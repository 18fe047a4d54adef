package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/Joseda-hg/lazytareas/internal/notify"
)

func TestFormatTaskSummaryBadges(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.Local)
	zero, two := 0, 2
	today, _ := model.ParseDate("2026-10-16")
	soon, _ := model.ParseDate("2026-10-18")

	cases := []struct {
		name string
		task model.Task
		want string
	}{
		{"plain", model.Task{Name: "Read", Status: model.StatusPending, Importance: model.ImportanceLow}, "[ ] !   Read"},
		{"overdue", model.Task{Name: "Pay", Status: model.StatusInProgress, Importance: model.ImportanceHigh, Overdue: true}, "[~] !!! Pay (Overdue)"},
		{"today", model.Task{Name: "Call", Status: model.StatusPending, Importance: model.ImportanceMedium, DueDate: today, DaysRemaining: &zero}, "[ ] !!  Call (Due today)"},
		{"soon", model.Task{Name: "Plan", Status: model.StatusPending, Importance: model.ImportanceMedium, DueDate: soon, DaysRemaining: &two}, "[ ] !!  Plan (Due soon)"},
		{"closed", model.Task{Name: "Done", Status: model.StatusCompleted, Importance: model.ImportanceLow, Overdue: true}, "[x] !   Done"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatTaskSummary(tc.task, now); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRenderFilterSummary(t *testing.T) {
	if got := renderFilterSummary(model.DefaultFilter()); got != "none" {
		t.Fatalf("expected none, got %q", got)
	}
	spec := model.FilterSpec{Search: "milk", Status: model.StatusPending, From: "2026-01-01", OverdueOnly: true}
	got := renderFilterSummary(spec)
	for _, want := range []string{`"milk"`, "due 2026-01-01..-", "overdue"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	WriteStats(&buf, model.Stats{
		Total:          1200,
		Completed:      600,
		Pending:        600,
		Overdue:        3,
		CompletedToday: 2,
		ByImportance:   map[string]int{"ALTA": 5},
	})

	out := buf.String()
	for _, want := range []string{"Total tasks: 1,200", "Warning: 3 overdue task(s)", "By importance"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestWriteTasksEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteTasks(&buf, nil, time.Now())
	if strings.TrimSpace(buf.String()) != "No tasks." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderToasts(t *testing.T) {
	var buf bytes.Buffer
	renderToasts(&buf, []notify.Item{
		{Message: "Task created", Severity: notify.SeveritySuccess},
		{Message: "Could not load tasks", Severity: notify.SeverityError},
	})
	want := "[ok] Task created\n[error] Could not load tasks\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}
