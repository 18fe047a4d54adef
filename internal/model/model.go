package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDIENTE"
	StatusInProgress Status = "EN_PROGRESO"
	StatusCompleted  Status = "COMPLETADA"
	StatusCancelled  Status = "CANCELADA"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Any"
	}
}

func (s Status) Valid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Closed reports whether the status no longer counts down to a due date.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Importance string

const (
	ImportanceLow    Importance = "BAJA"
	ImportanceMedium Importance = "MEDIA"
	ImportanceHigh   Importance = "ALTA"
)

var Importances = []Importance{ImportanceLow, ImportanceMedium, ImportanceHigh}

func (i Importance) Label() string {
	switch i {
	case ImportanceLow:
		return "Low"
	case ImportanceMedium:
		return "Medium"
	case ImportanceHigh:
		return "High"
	default:
		return "Any"
	}
}

func (i Importance) Valid() bool {
	for _, importance := range Importances {
		if i == importance {
			return true
		}
	}
	return false
}

type Task struct {
	ID            int64      `json:"id"`
	Name          string     `json:"nombre"`
	Description   string     `json:"descripcion"`
	Status        Status     `json:"estado"`
	Importance    Importance `json:"importancia"`
	CreatedAt     Timestamp  `json:"fechaCreacion"`
	StartDate     *Date      `json:"fechaInicio,omitempty"`
	DueDate       *Date      `json:"fechaVencimiento,omitempty"`
	CompletedAt   *Timestamp `json:"fechaCompletado,omitempty"`
	DurationDays  *int       `json:"duracionDias,omitempty"`
	Overdue       bool       `json:"vencida"`
	DaysRemaining *int       `json:"diasRestantes,omitempty"`
}

// TaskUpdate is the partial payload for PUT /tareas/{id}. Nil fields are
// left untouched by the server.
type TaskUpdate struct {
	Name         *string     `json:"nombre,omitempty"`
	Description  *string     `json:"descripcion,omitempty"`
	Status       *Status     `json:"estado,omitempty"`
	Importance   *Importance `json:"importancia,omitempty"`
	StartDate    *Date       `json:"fechaInicio,omitempty"`
	DueDate      *Date       `json:"fechaVencimiento,omitempty"`
	DurationDays *int        `json:"duracionDias,omitempty"`
}

// UpdateFromTask copies every editable field of task so the whole task is
// resent rather than a minimal patch.
func UpdateFromTask(task Task) TaskUpdate {
	name := task.Name
	description := task.Description
	status := task.Status
	importance := task.Importance
	update := TaskUpdate{
		Name:        &name,
		Description: &description,
		Status:      &status,
		Importance:  &importance,
	}
	if task.StartDate != nil {
		start := *task.StartDate
		update.StartDate = &start
	}
	if task.DueDate != nil {
		due := *task.DueDate
		update.DueDate = &due
	}
	if task.DurationDays != nil {
		days := *task.DurationDays
		update.DurationDays = &days
	}
	return update
}

// Draft is the user's input for a new task.
type Draft struct {
	Name         string     `json:"nombre" validate:"required,max=255"`
	Description  string     `json:"descripcion" validate:"max=2000"`
	Importance   Importance `json:"importancia" validate:"required,oneof=BAJA MEDIA ALTA"`
	DurationDays *int       `json:"duracionDias" validate:"omitnil,min=1"`
	StartDate    *Date      `json:"fechaInicio"`
	DueDate      *Date      `json:"fechaVencimiento"`
}

// NewDraft returns an empty draft with the default importance.
func NewDraft() Draft {
	return Draft{Importance: ImportanceMedium}
}

// Normalized trims the free-text fields the way they are submitted.
func (d Draft) Normalized() Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if d.Importance == "" {
		d.Importance = ImportanceMedium
	}
	return d
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"clave" validate:"required"`
}

type Registration struct {
	FirstName string `json:"nombre" validate:"required"`
	LastName  string `json:"apellido" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"clave" validate:"required,min=6,max=10"`
}

type Stats struct {
	Total             int            `json:"totalTareas"`
	Completed         int            `json:"tareasCompletadas"`
	Pending           int            `json:"tareasPendientes"`
	InProgress        int            `json:"tareasEnProgreso"`
	Cancelled         int            `json:"tareasCanceladas"`
	Overdue           int            `json:"tareasVencidas"`
	CompletedToday    int            `json:"tareasCompletadasHoy"`
	CompletedThisWeek int            `json:"tareasCompletadasEstaSemana"`
	ByStatus          map[string]int `json:"tareasPorEstado"`
	ByImportance      map[string]int `json:"tareasPorImportancia"`
	CompletedPercent  float64        `json:"porcentajeCompletado"`
	PendingPercent    float64        `json:"porcentajePendiente"`
	InProgressPercent float64        `json:"porcentajeEnProgreso"`
	CancelledPercent  float64        `json:"porcentajeCancelado"`
	OverduePercent    float64        `json:"porcentajeVencido"`
}

type View struct {
	ID        int64
	Name      string
	Filter    FilterSpec
	CreatedAt time.Time
	UpdatedAt time.Time
}
