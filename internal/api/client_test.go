package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Joseda-hg/lazytareas/internal/fakeapi"
	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	token   string
	expired int
}

func (s *fakeSession) Token() string { return s.token }

func (s *fakeSession) Expire(context.Context) error {
	s.expired++
	s.token = ""
	return nil
}

func newTestClient(t *testing.T, baseURL string, session Session, opts ...Option) *Client {
	t.Helper()
	client, err := New(baseURL, session, opts...)
	require.NoError(t, err)
	return client
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("/api", nil)
	assert.Error(t, err)
}

func TestLoginReturnsToken(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	server.AddUser("ana@example.com", "secret1")

	client := newTestClient(t, server.URL, &fakeSession{})
	token, err := client.Login(context.Background(), model.Credentials{Email: " ana@example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	reqs := server.RequestsTo(http.MethodPost, "/auth/login")
	require.Len(t, reqs, 1)
	body := reqs[0].JSON()
	assert.Equal(t, "ana@example.com", body["email"])
	assert.Equal(t, "secret1", body["clave"])
	assert.Empty(t, reqs[0].Auth)
}

func TestLoginWithBadCredentialsDoesNotTearDownSession(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()

	var hooked atomic.Int32
	session := &fakeSession{}
	client := newTestClient(t, server.URL, session, OnUnauthorized(func() { hooked.Add(1) }))

	_, err := client.Login(context.Background(), model.Credentials{Email: "nobody@example.com", Password: "nope"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Credenciales inválidas", UserMessage(err, "Login failed"))
	assert.Zero(t, session.expired)
	assert.Zero(t, hooked.Load())
}

func TestRequestsCarryBearerToken(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	token := server.IssueToken("ana@example.com")

	client := newTestClient(t, server.URL, &fakeSession{token: token})
	_, err := client.ListTasks(context.Background())
	require.NoError(t, err)

	reqs := server.RequestsTo(http.MethodGet, "/tareas")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+token, reqs[0].Auth)
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()

	var hooked atomic.Int32
	session := &fakeSession{token: "stale"}
	client := newTestClient(t, server.URL, session, OnUnauthorized(func() { hooked.Add(1) }))

	_, err := client.ListTasks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, KindUnauthorized, Classify(err))
	assert.Equal(t, 1, session.expired)
	assert.Empty(t, session.token)
	assert.EqualValues(t, 1, hooked.Load())
}

func TestForbiddenAndServerErrorsSurfaceAsError(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	token := server.IssueToken("ana@example.com")
	server.Fail(http.MethodDelete, "/tareas/3", http.StatusForbidden, `{"message":"no"}`)
	server.Fail(http.MethodGet, "/tareas", http.StatusInternalServerError, `{"message":"boom"}`)

	session := &fakeSession{token: token}
	client := newTestClient(t, server.URL, session)

	err := client.DeleteTask(context.Background(), 3)
	assert.Equal(t, KindForbidden, Classify(err))

	_, err = client.ListTasks(context.Background())
	assert.Equal(t, KindServer, Classify(err))
	assert.Equal(t, "Could not load tasks", UserMessage(err, "Could not load tasks"))
	assert.Zero(t, session.expired)
}

func TestValidationDetailsAreJoined(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	token := server.IssueToken("ana@example.com")
	server.Fail(http.MethodPost, "/tareas", http.StatusBadRequest,
		`{"message":"Validation failed","detalles":[{"campo":"nombre","error":"El nombre es obligatorio"},{"campo":"fechaVencimiento","error":"Fecha inválida"}]}`)

	client := newTestClient(t, server.URL, &fakeSession{token: token})
	due := model.NewDate(2030, 1, 2)
	_, err := client.CreateTask(context.Background(), model.Draft{Name: "x", Importance: model.ImportanceLow, DueDate: &due})
	require.Error(t, err)
	assert.Equal(t, KindClient, Classify(err))
	assert.Equal(t, "El nombre es obligatorio, Fecha inválida", UserMessage(err, "Could not create the task"))
}

func TestErrorWithoutBodyUsesGenericMessage(t *testing.T) {
	apiErr := &Error{Method: http.MethodGet, Path: "/tareas", StatusCode: http.StatusBadRequest}
	assert.Equal(t, genericMessage, apiErr.UserMessage())
	assert.Equal(t, "fallback", UserMessage(apiErr, "fallback"))
	assert.Contains(t, apiErr.Error(), "400 Bad Request")
}

func TestNetworkFailureClassified(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newTestClient(t, url, &fakeSession{token: "t"})
	_, err := client.ListTasks(context.Background())
	assert.Equal(t, KindNetwork, Classify(err))
}

func TestCanceledContextClassified(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := newTestClient(t, server.URL, &fakeSession{token: "t"})
	_, err := client.ListTasks(ctx)
	assert.Equal(t, KindCanceled, Classify(err))
}

func TestFilterTasksSendsOnlySetFields(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	token := server.IssueToken("ana@example.com")

	client := newTestClient(t, server.URL, &fakeSession{token: token})
	_, err := client.FilterTasks(context.Background(), FilterQuery{Search: "report", Status: "PENDIENTE"})
	require.NoError(t, err)

	reqs := server.RequestsTo(http.MethodPost, "/tareas/filtrar")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"busqueda":"report","estado":"PENDIENTE"}`, string(reqs[0].Body))
}

func TestCreateTaskSendsNullsForUnsetDates(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	token := server.IssueToken("ana@example.com")

	client := newTestClient(t, server.URL, &fakeSession{token: token})
	days := 5
	task, err := client.CreateTask(context.Background(), model.Draft{Name: "  Write report ", Importance: model.ImportanceHigh, DurationDays: &days})
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Name)
	assert.NotZero(t, task.ID)

	reqs := server.RequestsTo(http.MethodPost, "/tareas")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"nombre":"Write report","descripcion":"","importancia":"ALTA","duracionDias":5,"fechaInicio":null,"fechaVencimiento":null}`, string(reqs[0].Body))
}

func TestUpdateAndDeleteTask(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	token := server.IssueToken("ana@example.com")
	seeded := server.Seed(model.Task{Name: "Plan", Importance: model.ImportanceLow})

	client := newTestClient(t, server.URL, &fakeSession{token: token})
	update := model.UpdateFromTask(seeded[0])
	status := model.StatusInProgress
	update.Status = &status

	task, err := client.UpdateTask(context.Background(), seeded[0].ID, update)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, task.Status)

	require.NoError(t, client.DeleteTask(context.Background(), seeded[0].ID))
	_, ok := server.Task(seeded[0].ID)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	server := fakeapi.New()
	defer server.Close()
	token := server.IssueToken("ana@example.com")
	server.SetStats(model.Stats{Total: 4, Pending: 2, Completed: 1, Overdue: 1})

	client := newTestClient(t, server.URL, &fakeSession{token: token})
	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Overdue)
}
