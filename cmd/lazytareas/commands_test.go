package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/Joseda-hg/lazytareas/internal/fakeapi"
	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, server *fakeapi.Server) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	app, err := newApp(context.Background(), &CLI{
		Config: filepath.Join(dir, "config.json"),
		API:    server.URL,
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	out := &bytes.Buffer{}
	app.out = out
	return app, out
}

func TestCommandsAgainstBackend(t *testing.T) {
	ctx := context.Background()
	server := fakeapi.New()
	t.Cleanup(server.Close)
	server.Seed(
		model.Task{Name: "Comprar leche", Importance: model.ImportanceLow},
		model.Task{Name: "Informe", Importance: model.ImportanceHigh, Status: model.StatusCompleted},
	)
	server.SetStats(model.Stats{Total: 2, Completed: 1, Pending: 1})

	app, out := newTestApp(t, server)

	err := (&ListCmd{}).Run(ctx, app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")

	require.NoError(t, (&RegisterCmd{FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Password: "abc123"}).Run(ctx, app))
	require.NoError(t, (&LoginCmd{Email: "ana@example.com", Password: "abc123"}).Run(ctx, app))
	assert.True(t, app.session.Authenticated())

	out.Reset()
	require.NoError(t, (&ListCmd{Buscar: "leche"}).Run(ctx, app))
	assert.Contains(t, out.String(), "Comprar leche")
	assert.NotContains(t, out.String(), "Informe")

	out.Reset()
	require.NoError(t, (&StatsCmd{}).Run(ctx, app))
	assert.Contains(t, out.String(), "Total tasks: 2")

	require.NoError(t, (&LogoutCmd{}).Run(ctx, app))
	assert.False(t, app.session.Authenticated())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := fakeapi.New()
	t.Cleanup(server.Close)
	app, _ := newTestApp(t, server)

	err := (&LoginCmd{Email: "nobody@example.com", Password: "x"}).Run(context.Background(), app)
	assert.Error(t, err)
	assert.False(t, app.session.Authenticated())
}

func TestListSpec(t *testing.T) {
	cmd := &ListCmd{Estado: "PENDIENTE", Buscar: "  leche ", Vencidas: true, Ordenar: "nombre", Desc: true}
	assert.NoError(t, cmd.Validate())

	spec := cmd.spec()
	assert.Equal(t, model.StatusPending, spec.Status)
	assert.Equal(t, "leche", spec.Search)
	assert.True(t, spec.OverdueOnly)
	assert.Equal(t, model.SortName, spec.SortBy)
	assert.Equal(t, model.Descending, spec.Direction)
}

func TestListDefaultsToAscending(t *testing.T) {
	spec := (&ListCmd{}).spec()
	assert.Equal(t, model.Ascending, spec.Direction)
	assert.Zero(t, spec.ActiveCount())
}

func TestListValidateRejectsUnknownValues(t *testing.T) {
	assert.Error(t, (&ListCmd{Estado: "HECHA"}).Validate())
	assert.Error(t, (&ListCmd{Importancia: "URGENTE"}).Validate())
	assert.Error(t, (&ListCmd{Ordenar: "prioridad"}).Validate())
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	cli := &CLI{Config: filepath.Join(dir, "config.json"), API: "http://api.test", LogLevel: "debug"}

	cfg, path, err := loadConfig(cli)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.json"), path)
	assert.Equal(t, "http://api.test", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "lazytareas.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "lazytareas.log"), cfg.LogPath)
}
