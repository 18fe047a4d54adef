package tasks

import (
	"strings"

	"github.com/Joseda-hg/lazytareas/internal/api"
	"github.com/Joseda-hg/lazytareas/internal/model"
)

// BuildQuery translates spec into the filter payload. Only constraints the
// user actually set are included; zero values are omitted, never sent as
// null or false.
func BuildQuery(spec model.FilterSpec) api.FilterQuery {
	query := api.FilterQuery{
		Search:      strings.TrimSpace(spec.Search),
		OverdueOnly: spec.OverdueOnly,
		From:        strings.TrimSpace(spec.From),
		To:          strings.TrimSpace(spec.To),
	}
	if spec.Status.Valid() {
		query.Status = string(spec.Status)
	}
	if spec.Importance.Valid() {
		query.Importance = string(spec.Importance)
	}
	if spec.DurationDays > 0 {
		query.DurationDays = spec.DurationDays
	}
	if spec.SortBy != model.SortNone {
		query.SortBy = string(spec.SortBy)
		query.Direction = string(model.Ascending)
		if spec.Direction == model.Descending {
			query.Direction = string(model.Descending)
		}
	}
	return query
}
