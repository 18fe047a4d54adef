package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestValidateDraft(t *testing.T) {
	due := NewDate(2026, time.March, 1)

	tests := []struct {
		name    string
		draft   Draft
		wantErr bool
		dueRule bool
	}{
		{name: "due date only", draft: Draft{Name: "Write report", Importance: ImportanceHigh, DueDate: &due}},
		{name: "duration only", draft: Draft{Name: "Write report", DurationDays: intPtr(7)}},
		{name: "missing due and duration", draft: Draft{Name: "Write report"}, wantErr: true, dueRule: true},
		{name: "blank name", draft: Draft{Name: "   ", DurationDays: intPtr(2)}, wantErr: true},
		{name: "zero duration", draft: Draft{Name: "x", DurationDays: intPtr(0)}, wantErr: true},
		{name: "bad importance", draft: Draft{Name: "x", Importance: "URGENTE", DurationDays: intPtr(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.draft)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.dueRule, errors.Is(err, ErrDueOrDuration))
		})
	}
}

func TestValidateRegistrationPasswordLength(t *testing.T) {
	reg := Registration{FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com", Password: "12345"}
	err := ValidateRegistration(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6 characters")

	reg.Password = "123456"
	assert.NoError(t, ValidateRegistration(reg))
}

func TestValidateCredentials(t *testing.T) {
	assert.Error(t, ValidateCredentials(Credentials{Email: "not-an-email", Password: "x"}))
	assert.NoError(t, ValidateCredentials(Credentials{Email: " ana@example.com ", Password: "x"}))
}

func TestDraftMarshalsNullsForMissingDates(t *testing.T) {
	payload, err := json.Marshal(Draft{Name: "a", Importance: ImportanceLow, DurationDays: intPtr(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"nombre":"a","descripcion":"","importancia":"BAJA","duracionDias":3,"fechaInicio":null,"fechaVencimiento":null}`, string(payload))
}

func TestTaskDecodesBackendDates(t *testing.T) {
	raw := `{"id":5,"nombre":"Plan","estado":"PENDIENTE","importancia":"ALTA",
		"fechaCreacion":"2026-01-02T10:30:00","fechaVencimiento":"2026-01-10","vencida":false,"diasRestantes":8}`
	var task Task
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	assert.Equal(t, int64(5), task.ID)
	assert.Equal(t, 10, task.CreatedAt.Hour())
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-01-10", task.DueDate.String())
	require.NotNil(t, task.DaysRemaining)
	assert.Equal(t, 8, *task.DaysRemaining)
}

func TestBadgeFor(t *testing.T) {
	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.Local)
	today := NewDate(2026, time.May, 10)
	soon := NewDate(2026, time.May, 12)
	later := NewDate(2026, time.June, 1)
	past := NewDate(2026, time.May, 1)

	tests := []struct {
		name string
		task Task
		want Badge
	}{
		{name: "no due date", task: Task{Status: StatusPending}, want: BadgeNone},
		{name: "server says overdue", task: Task{Status: StatusPending, Overdue: true, DueDate: &past}, want: BadgeOverdue},
		{name: "local fallback overdue", task: Task{Status: StatusPending, DueDate: &past}, want: BadgeOverdue},
		{name: "due today", task: Task{Status: StatusInProgress, DueDate: &today}, want: BadgeDueToday},
		{name: "due soon", task: Task{Status: StatusPending, DueDate: &soon}, want: BadgeDueSoon},
		{name: "due later", task: Task{Status: StatusPending, DueDate: &later}, want: BadgeNone},
		{name: "completed never badged", task: Task{Status: StatusCompleted, Overdue: true, DueDate: &past}, want: BadgeNone},
		{name: "server days win", task: Task{Status: StatusPending, DueDate: &later, DaysRemaining: intPtr(1)}, want: BadgeDueSoon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BadgeFor(tt.task, now))
		})
	}
}

func TestUpdateFromTaskCopiesEveryField(t *testing.T) {
	due := NewDate(2026, time.May, 12)
	task := Task{ID: 3, Name: "n", Description: "d", Status: StatusPending, Importance: ImportanceLow, DueDate: &due, DurationDays: intPtr(4)}

	update := UpdateFromTask(task)
	task.Name = "changed"

	require.NotNil(t, update.Name)
	assert.Equal(t, "n", *update.Name)
	assert.Equal(t, StatusPending, *update.Status)
	assert.Equal(t, ImportanceLow, *update.Importance)
	assert.Equal(t, "2026-05-12", update.DueDate.String())
	assert.Equal(t, 4, *update.DurationDays)
	assert.Nil(t, update.StartDate)
}

func TestFilterSpecLabels(t *testing.T) {
	spec := DefaultFilter()
	assert.True(t, spec.IntelligentOrdering())
	assert.Equal(t, "intelligent ordering", spec.OrderingLabel())
	assert.Zero(t, spec.ActiveCount())

	spec.SortBy = SortName
	spec.Direction = Descending
	spec.From = "2026-01-01"
	assert.Equal(t, "name DESC", spec.OrderingLabel())
	assert.Zero(t, spec.ActiveCount())

	spec.To = "2026-02-01"
	spec.OverdueOnly = true
	assert.Equal(t, 2, spec.ActiveCount())
}
