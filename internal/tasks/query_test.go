package tasks

import (
	"encoding/json"
	"testing"

	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQueryOmitsUnsetFields(t *testing.T) {
	cases := []struct {
		name string
		spec model.FilterSpec
		want string
	}{
		{"default", model.DefaultFilter(), `{}`},
		{"overdue false omitted", model.FilterSpec{OverdueOnly: false, Direction: model.Descending}, `{}`},
		{"overdue true sent", model.FilterSpec{OverdueOnly: true}, `{"soloVencidas":true}`},
		{"blank search omitted", model.FilterSpec{Search: "   "}, `{}`},
		{"search trimmed", model.FilterSpec{Search: " report "}, `{"busqueda":"report"}`},
		{"enums", model.FilterSpec{Status: model.StatusInProgress, Importance: model.ImportanceHigh}, `{"estado":"EN_PROGRESO","importancia":"ALTA"}`},
		{"unknown enum omitted", model.FilterSpec{Status: "DONE"}, `{}`},
		{"dates", model.FilterSpec{From: "2030-01-01", To: "2030-01-31"}, `{"fechaDesde":"2030-01-01","fechaHasta":"2030-01-31"}`},
		{"non positive duration omitted", model.FilterSpec{DurationDays: -2}, `{}`},
		{"duration", model.FilterSpec{DurationDays: 5}, `{"diasDuracion":5}`},
		{"sort defaults ascending", model.FilterSpec{SortBy: model.SortImportance}, `{"ordenarPor":"importancia","direccion":"ASC"}`},
		{"sort descending", model.FilterSpec{SortBy: model.SortCreatedAt, Direction: model.Descending}, `{"ordenarPor":"fechaCreacion","direccion":"DESC"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := json.Marshal(BuildQuery(tc.spec))
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(payload))
		})
	}
}
