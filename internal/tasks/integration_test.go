package tasks

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/api"
	"github.com/Joseda-hg/lazytareas/internal/db"
	"github.com/Joseda-hg/lazytareas/internal/fakeapi"
	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/Joseda-hg/lazytareas/internal/notify"
	"github.com/Joseda-hg/lazytareas/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	server  *fakeapi.Server
	store   *db.Store
	session *session.Store
	bus     *notify.Bus
	ctrl    *Controller
	toLogin atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	h := &harness{
		server: fakeapi.New(),
		store:  db.NewStore(conn),
		bus:    notify.NewBus(time.Minute),
	}
	t.Cleanup(h.server.Close)
	t.Cleanup(h.bus.Stop)

	h.session = session.New(h.store, nil)
	require.NoError(t, h.session.Login(ctx, h.server.IssueToken("ana@example.com")))

	client, err := api.New(h.server.URL, h.session, api.OnUnauthorized(func() { h.toLogin.Add(1) }))
	require.NoError(t, err)
	h.ctrl = New(client, h.bus, WithViews(h.store), WithRevealDelay(time.Millisecond))
	return h
}

func (h *harness) errorToasts() []string {
	var out []string
	for _, item := range h.bus.Items() {
		if item.Severity == notify.SeverityError {
			out = append(out, item.Message)
		}
	}
	return out
}

func TestUnauthorizedEndsSessionWithoutToast(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.server.Seed(model.Task{Name: "one", Importance: model.ImportanceLow})

	_, err := h.ctrl.Load(ctx, model.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, h.ctrl.Tasks(), 1)

	h.server.RevokeTokens()
	_, err = h.ctrl.Load(ctx, model.FilterSpec{Search: "one"})
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	assert.False(t, h.session.Authenticated())
	assert.EqualValues(t, 1, h.toLogin.Load())
	assert.Empty(t, h.errorToasts())

	persisted := session.New(h.store, nil)
	require.NoError(t, persisted.Restore(ctx))
	assert.False(t, persisted.Authenticated())
}

func TestDragAcrossZonesAgainstBackend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	days := 3
	seeded := h.server.Seed(model.Task{Name: "draft", Description: "notes", Importance: model.ImportanceHigh, DurationDays: &days})

	_, err := h.ctrl.Load(ctx, model.DefaultFilter())
	require.NoError(t, err)

	h.ctrl.BeginDrag(seeded[0])
	require.NoError(t, h.ctrl.Drop(ctx, model.StatusInProgress))

	puts := h.server.RequestsTo(http.MethodPut, "/tareas/1")
	require.Len(t, puts, 1)
	body := puts[0].JSON()
	assert.Equal(t, "EN_PROGRESO", body["estado"])
	assert.Equal(t, "draft", body["nombre"])
	assert.Equal(t, "notes", body["descripcion"])
	assert.Equal(t, "ALTA", body["importancia"])
	assert.EqualValues(t, 3, body["duracionDias"])

	stored, ok := h.server.Task(1)
	require.True(t, ok)
	assert.Equal(t, model.StatusInProgress, stored.Status)
	assert.Equal(t, model.StatusInProgress, h.ctrl.Tasks()[0].Status)
	assert.Equal(t, DragIdle, h.ctrl.Snapshot().Drag)
}

func TestSavedViewsRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.server.Seed(
		model.Task{Name: "alpha", Importance: model.ImportanceHigh, Status: model.StatusPending},
		model.Task{Name: "beta", Importance: model.ImportanceLow, Status: model.StatusCompleted},
	)

	require.NoError(t, h.ctrl.ApplyFilters(ctx, model.FilterSpec{Importance: model.ImportanceHigh}))
	_, err := h.ctrl.SaveView(ctx, "urgent")
	require.NoError(t, err)

	require.NoError(t, h.ctrl.ApplyFilters(ctx, model.FilterSpec{Status: model.StatusCompleted}))
	_, err = h.ctrl.SaveView(ctx, "done")
	require.NoError(t, err)

	require.NoError(t, h.ctrl.ClearFilters(ctx))
	require.Len(t, h.ctrl.Tasks(), 2)

	name, err := h.ctrl.NextView(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "done", name)
	require.Len(t, h.ctrl.Tasks(), 1)
	assert.Equal(t, "beta", h.ctrl.Tasks()[0].Name)

	name, err = h.ctrl.NextView(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "urgent", name)
	assert.Equal(t, model.ImportanceHigh, h.ctrl.Filter().Importance)
	assert.Equal(t, "alpha", h.ctrl.Tasks()[0].Name)

	require.NoError(t, h.ctrl.DeleteView(ctx, "done"))
	views, err := h.ctrl.Views(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "urgent", views[0].Name)
}

func TestViewsUnavailableWithoutStore(t *testing.T) {
	ctrl, _, _ := newTestController()
	_, err := ctrl.SaveView(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoViews)
	assert.ErrorIs(t, ctrl.ApplyView(context.Background(), "x"), ErrNoViews)
}
