package model

type SortKey string

const (
	SortNone       SortKey = ""
	SortDueDate    SortKey = "fechaVencimiento"
	SortCreatedAt  SortKey = "fechaCreacion"
	SortImportance SortKey = "importancia"
	SortName       SortKey = "nombre"
)

var SortKeys = []SortKey{SortNone, SortDueDate, SortCreatedAt, SortImportance, SortName}

func (k SortKey) Label() string {
	switch k {
	case SortDueDate:
		return "due date"
	case SortCreatedAt:
		return "created"
	case SortImportance:
		return "importance"
	case SortName:
		return "name"
	default:
		return "intelligent"
	}
}

type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// FilterSpec is the full set of query constraints for the task list. It is a
// value type: callers replace it wholesale.
type FilterSpec struct {
	Search       string     `json:"busqueda"`
	Status       Status     `json:"estado"`
	Importance   Importance `json:"importancia"`
	From         string     `json:"fechaDesde"`
	To           string     `json:"fechaHasta"`
	OverdueOnly  bool       `json:"soloVencidas"`
	DurationDays int        `json:"diasDuracion"`
	SortBy       SortKey    `json:"ordenarPor"`
	Direction    Direction  `json:"direccion"`
}

func DefaultFilter() FilterSpec {
	return FilterSpec{Direction: Ascending}
}

// IntelligentOrdering reports whether the server default ordering applies.
func (f FilterSpec) IntelligentOrdering() bool {
	return f.SortBy == SortNone
}

func (f FilterSpec) OrderingLabel() string {
	if f.IntelligentOrdering() {
		return "intelligent ordering"
	}
	direction := f.Direction
	if direction == "" {
		direction = Ascending
	}
	return f.SortBy.Label() + " " + string(direction)
}

// ActiveCount counts the constraints shown as a badge on the filter panel.
// The date range counts only once both ends are set.
func (f FilterSpec) ActiveCount() int {
	count := 0
	if f.Search != "" {
		count++
	}
	if f.Status != "" {
		count++
	}
	if f.Importance != "" {
		count++
	}
	if f.From != "" && f.To != "" {
		count++
	}
	if f.OverdueOnly {
		count++
	}
	if f.DurationDays > 0 {
		count++
	}
	return count
}

// Narrowing reports whether the filter hides tasks the user might expect
// to see.
func (f FilterSpec) Narrowing() bool {
	return f.Search != "" || f.Status != "" || f.Importance != ""
}
