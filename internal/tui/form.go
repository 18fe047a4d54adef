package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Joseda-hg/lazytareas/internal/model"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSecret
	fieldSelect
	fieldToggle
)

type option struct {
	Value string
	Label string
}

type formField struct {
	Label   string
	Value   string
	Kind    fieldKind
	Options []option
}

func (f formField) display() string {
	switch f.Kind {
	case fieldSecret:
		return strings.Repeat("*", len([]rune(f.Value)))
	case fieldSelect:
		for _, opt := range f.Options {
			if opt.Value == f.Value {
				return "< " + opt.Label + " >"
			}
		}
		return "< " + f.Value + " >"
	case fieldToggle:
		if f.Value == "true" {
			return "[x]"
		}
		return "[ ]"
	default:
		return f.Value
	}
}

// cycle moves a select field by delta, wrapping around.
func (f *formField) cycle(delta int) {
	if len(f.Options) == 0 {
		return
	}
	index := 0
	for i, opt := range f.Options {
		if opt.Value == f.Value {
			index = i
			break
		}
	}
	index = (index + delta + len(f.Options)) % len(f.Options)
	f.Value = f.Options[index].Value
}

func (f *formField) toggle() {
	if f.Value == "true" {
		f.Value = ""
		return
	}
	f.Value = "true"
}

type formKind int

const (
	formCreate formKind = iota
	formEdit
	formFilter
	formSearch
	formSaveView
	formLogin
	formRegister
)

func statusOptions(withAny bool) []option {
	opts := []option{}
	if withAny {
		opts = append(opts, option{Value: "", Label: "Any"})
	}
	for _, status := range model.Statuses {
		opts = append(opts, option{Value: string(status), Label: status.Label()})
	}
	return opts
}

func importanceOptions(withAny bool) []option {
	opts := []option{}
	if withAny {
		opts = append(opts, option{Value: "", Label: "Any"})
	}
	for _, importance := range model.Importances {
		opts = append(opts, option{Value: string(importance), Label: importance.Label()})
	}
	return opts
}

func sortOptions() []option {
	opts := make([]option, 0, len(model.SortKeys))
	for _, key := range model.SortKeys {
		opts = append(opts, option{Value: string(key), Label: key.Label()})
	}
	return opts
}

var directionOptions = []option{
	{Value: string(model.Ascending), Label: "ascending"},
	{Value: string(model.Descending), Label: "descending"},
}

const (
	draftName = iota
	draftDescription
	draftImportance
	draftDuration
	draftStart
	draftDue
)

func draftFields(draft model.Draft) []formField {
	fields := []formField{
		{Label: "Name"},
		{Label: "Description"},
		{Label: "Importance", Kind: fieldSelect, Options: importanceOptions(false)},
		{Label: "Duration (days)"},
		{Label: "Start (YYYY-MM-DD)"},
		{Label: "Due (YYYY-MM-DD)"},
	}
	fields[draftName].Value = draft.Name
	fields[draftDescription].Value = draft.Description
	fields[draftImportance].Value = string(draft.Importance)
	if draft.Importance == "" {
		fields[draftImportance].Value = string(model.ImportanceMedium)
	}
	if draft.DurationDays != nil {
		fields[draftDuration].Value = strconv.Itoa(*draft.DurationDays)
	}
	fields[draftStart].Value = formatDate(draft.StartDate)
	fields[draftDue].Value = formatDate(draft.DueDate)
	return fields
}

// parseDraft converts the form into a draft. Only malformed input fails
// here; the missing due date rule is checked on submit.
func parseDraft(fields []formField) (model.Draft, error) {
	duration, err := parseDays(fields[draftDuration].Value)
	if err != nil {
		return model.Draft{}, err
	}
	start, err := model.ParseDate(fields[draftStart].Value)
	if err != nil {
		return model.Draft{}, fmt.Errorf("start: %w", err)
	}
	due, err := model.ParseDate(fields[draftDue].Value)
	if err != nil {
		return model.Draft{}, fmt.Errorf("due: %w", err)
	}
	return model.Draft{
		Name:         fields[draftName].Value,
		Description:  fields[draftDescription].Value,
		Importance:   model.Importance(fields[draftImportance].Value),
		DurationDays: duration,
		StartDate:    start,
		DueDate:      due,
	}, nil
}

const (
	editName = iota
	editDescription
	editStatus
	editImportance
	editDuration
	editStart
	editDue
)

func editFields(task model.Task) []formField {
	fields := []formField{
		{Label: "Name", Value: task.Name},
		{Label: "Description", Value: task.Description},
		{Label: "Status", Kind: fieldSelect, Options: statusOptions(false), Value: string(task.Status)},
		{Label: "Importance", Kind: fieldSelect, Options: importanceOptions(false), Value: string(task.Importance)},
		{Label: "Duration (days)"},
		{Label: "Start (YYYY-MM-DD)", Value: formatDate(task.StartDate)},
		{Label: "Due (YYYY-MM-DD)", Value: formatDate(task.DueDate)},
	}
	if task.DurationDays != nil {
		fields[editDuration].Value = strconv.Itoa(*task.DurationDays)
	}
	return fields
}

// parseEdit builds the update from the edited fields. Blank dates and
// durations keep the stored value since the partial update cannot clear them.
func parseEdit(fields []formField, task model.Task) (model.TaskUpdate, error) {
	update := model.UpdateFromTask(task)

	name := strings.TrimSpace(fields[editName].Value)
	if name == "" {
		return model.TaskUpdate{}, fmt.Errorf("name is required")
	}
	description := strings.TrimSpace(fields[editDescription].Value)
	status := model.Status(fields[editStatus].Value)
	importance := model.Importance(fields[editImportance].Value)
	update.Name = &name
	update.Description = &description
	update.Status = &status
	update.Importance = &importance

	duration, err := parseDays(fields[editDuration].Value)
	if err != nil {
		return model.TaskUpdate{}, err
	}
	if duration != nil {
		update.DurationDays = duration
	}
	start, err := model.ParseDate(fields[editStart].Value)
	if err != nil {
		return model.TaskUpdate{}, fmt.Errorf("start: %w", err)
	}
	if start != nil {
		update.StartDate = start
	}
	due, err := model.ParseDate(fields[editDue].Value)
	if err != nil {
		return model.TaskUpdate{}, fmt.Errorf("due: %w", err)
	}
	if due != nil {
		update.DueDate = due
	}
	return update, nil
}

const (
	filterSearch = iota
	filterStatus
	filterImportance
	filterFrom
	filterTo
	filterOverdue
	filterDuration
	filterSort
	filterDirection
)

func filterFields(spec model.FilterSpec) []formField {
	fields := []formField{
		{Label: "Search", Value: spec.Search},
		{Label: "Status", Kind: fieldSelect, Options: statusOptions(true), Value: string(spec.Status)},
		{Label: "Importance", Kind: fieldSelect, Options: importanceOptions(true), Value: string(spec.Importance)},
		{Label: "Due from (YYYY-MM-DD)", Value: spec.From},
		{Label: "Due to (YYYY-MM-DD)", Value: spec.To},
		{Label: "Overdue only", Kind: fieldToggle},
		{Label: "Duration (days)"},
		{Label: "Sort by", Kind: fieldSelect, Options: sortOptions(), Value: string(spec.SortBy)},
		{Label: "Direction", Kind: fieldSelect, Options: directionOptions, Value: string(spec.Direction)},
	}
	if spec.OverdueOnly {
		fields[filterOverdue].Value = "true"
	}
	if spec.DurationDays > 0 {
		fields[filterDuration].Value = strconv.Itoa(spec.DurationDays)
	}
	if fields[filterDirection].Value == "" {
		fields[filterDirection].Value = string(model.Ascending)
	}
	return fields
}

func parseFilter(fields []formField) (model.FilterSpec, error) {
	for _, index := range []int{filterFrom, filterTo} {
		if _, err := model.ParseDate(fields[index].Value); err != nil {
			return model.FilterSpec{}, err
		}
	}
	duration, err := parseDays(fields[filterDuration].Value)
	if err != nil {
		return model.FilterSpec{}, err
	}

	spec := model.FilterSpec{
		Search:      strings.TrimSpace(fields[filterSearch].Value),
		Status:      model.Status(fields[filterStatus].Value),
		Importance:  model.Importance(fields[filterImportance].Value),
		From:        strings.TrimSpace(fields[filterFrom].Value),
		To:          strings.TrimSpace(fields[filterTo].Value),
		OverdueOnly: fields[filterOverdue].Value == "true",
		SortBy:      model.SortKey(fields[filterSort].Value),
		Direction:   model.Direction(fields[filterDirection].Value),
	}
	if duration != nil {
		spec.DurationDays = *duration
	}
	return spec, nil
}

func loginFields(email string) []formField {
	return []formField{
		{Label: "Email", Value: email},
		{Label: "Password", Kind: fieldSecret},
	}
}

func parseCredentials(fields []formField) model.Credentials {
	return model.Credentials{
		Email:    strings.TrimSpace(fields[0].Value),
		Password: fields[1].Value,
	}
}

func registerFields() []formField {
	return []formField{
		{Label: "First name"},
		{Label: "Last name"},
		{Label: "Email"},
		{Label: "Password (6-10)", Kind: fieldSecret},
	}
}

func parseRegistration(fields []formField) model.Registration {
	return model.Registration{
		FirstName: strings.TrimSpace(fields[0].Value),
		LastName:  strings.TrimSpace(fields[1].Value),
		Email:     strings.TrimSpace(fields[2].Value),
		Password:  fields[3].Value,
	}
}

func parseDays(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 1 {
		return nil, fmt.Errorf("duration must be a whole number of days")
	}
	return &parsed, nil
}

func formatDate(date *model.Date) string {
	if date == nil {
		return ""
	}
	return date.String()
}
