package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Joseda-hg/lazytareas/internal/model"
)

// FilterQuery is the body of POST /tareas/filtrar. Omitted fields mean "no
// constraint"; the server never receives explicit nulls or false.
type FilterQuery struct {
	Search       string `json:"busqueda,omitempty"`
	Status       string `json:"estado,omitempty"`
	Importance   string `json:"importancia,omitempty"`
	From         string `json:"fechaDesde,omitempty"`
	To           string `json:"fechaHasta,omitempty"`
	OverdueOnly  bool   `json:"soloVencidas,omitempty"`
	DurationDays int    `json:"diasDuracion,omitempty"`
	SortBy       string `json:"ordenarPor,omitempty"`
	Direction    string `json:"direccion,omitempty"`
}

type loginResponse struct {
	Token string `json:"jwToken"`
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "/auth/login", creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("POST /auth/login: empty token in response")
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = strings.TrimSpace(reg.Email)
	return c.do(ctx, http.MethodPost, "/auth/registro", "/auth/registro", reg, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := c.do(ctx, http.MethodGet, "/tareas", "/tareas", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) FilterTasks(ctx context.Context, query FilterQuery) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := c.do(ctx, http.MethodPost, "/tareas/filtrar", "/tareas/filtrar", query, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, draft model.Draft) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/tareas", "/tareas", draft.Normalized(), &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, update model.TaskUpdate) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPut, "/tareas/{id}", fmt.Sprintf("/tareas/%d", id), update, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tareas/{id}", fmt.Sprintf("/tareas/%d", id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	if err := c.do(ctx, http.MethodGet, "/tareas/estadisticas", "/tareas/estadisticas", nil, &stats); err != nil {
		return model.Stats{}, err
	}
	return stats, nil
}
