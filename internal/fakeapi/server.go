// Package fakeapi is an in-memory implementation of the tareas backend
// contract for tests. It records every request so tests can assert on the
// exact payloads the client sent.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("fakeapi-secret")

type Request struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

// JSON decodes the recorded body into a generic map.
func (r Request) JSON() map[string]any {
	out := map[string]any{}
	_ = json.Unmarshal(r.Body, &out)
	return out
}

type failure struct {
	status int
	body   string
}

type user struct {
	reg model.Registration
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tasks    map[int64]model.Task
	nextID   int64
	users    map[string]user
	tokens   map[string]string
	requests []Request
	failures map[string][]failure
	stats    model.Stats
	now      func() time.Time
}

func New() *Server {
	s := &Server{
		tasks:    make(map[int64]model.Task),
		nextID:   1,
		users:    make(map[string]user),
		tokens:   make(map[string]string),
		failures: make(map[string][]failure),
		now:      time.Now,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Post("/auth/login", s.login)
	r.Post("/auth/registro", s.register)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/tareas", s.listTasks)
		r.Post("/tareas", s.createTask)
		r.Post("/tareas/filtrar", s.filterTasks)
		r.Get("/tareas/estadisticas", s.getStats)
		r.Put("/tareas/{id}", s.updateTask)
		r.Delete("/tareas/{id}", s.deleteTask)
	})
	return r
}

// AddUser registers credentials directly.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = user{reg: model.Registration{Email: email, Password: password}}
}

// IssueToken returns a valid bearer token for email without a login call.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email)
}

// RevokeTokens makes every issued token fail with 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

func (s *Server) issueLocked(email string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"exp": s.now().Add(24 * time.Hour).Unix(),
		"jti": strconv.Itoa(len(s.tokens) + 1),
	}).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.tokens[token] = email
	return token
}

// Seed stores tasks as-is, assigning ids to those without one.
func (s *Server) Seed(tasks ...model.Task) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID == 0 {
			task.ID = s.nextID
		}
		if task.ID >= s.nextID {
			s.nextID = task.ID + 1
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = model.Timestamp{Time: s.now()}
		}
		if task.Status == "" {
			task.Status = model.StatusPending
		}
		s.tasks[task.ID] = task
		out = append(out, s.derive(task))
	}
	return out
}

func (s *Server) SetStats(stats model.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
}

// Fail makes the next request matching method and path answer with status.
// Path uses the concrete URL path, e.g. "/tareas/5".
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo filters recorded requests by method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

func (s *Server) Task(id int64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	return s.derive(task), ok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[creds.Email]
	if !ok || u.reg.Password != creds.Password {
		writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jwToken": s.issueLocked(creds.Email)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[reg.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message":  "Validation failed",
			"detalles": []map[string]string{{"campo": "email", "error": "El email ya está registrado"}},
		})
		return
	}
	s.users[reg.Email] = user{reg: reg}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.query(filterBody{}))
}

// filterBody is the decoded POST /tareas/filtrar payload.
type filterBody struct {
	Search       string `json:"busqueda"`
	Status       string `json:"estado"`
	Importance   string `json:"importancia"`
	From         string `json:"fechaDesde"`
	To           string `json:"fechaHasta"`
	OverdueOnly  bool   `json:"soloVencidas"`
	DurationDays int    `json:"diasDuracion"`
	SortBy       string `json:"ordenarPor"`
	Direction    string `json:"direccion"`
}

func (s *Server) filterTasks(w http.ResponseWriter, r *http.Request) {
	var q filterBody
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.query(q))
}

func (s *Server) query(q filterBody) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Task, 0, len(s.tasks))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, stored := range s.tasks {
		task := s.derive(stored)
		if search != "" && !strings.Contains(strings.ToLower(task.Name+" "+task.Description), search) {
			continue
		}
		if q.Status != "" && string(task.Status) != q.Status {
			continue
		}
		if q.Importance != "" && string(task.Importance) != q.Importance {
			continue
		}
		if q.OverdueOnly && !task.Overdue {
			continue
		}
		if q.DurationDays > 0 && (task.DurationDays == nil || *task.DurationDays != q.DurationDays) {
			continue
		}
		if q.From != "" && (task.DueDate == nil || task.DueDate.String() < q.From) {
			continue
		}
		if q.To != "" && (task.DueDate == nil || task.DueDate.String() > q.To) {
			continue
		}
		result = append(result, task)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	less := intelligentLess
	switch q.SortBy {
	case "nombre":
		less = func(a, b model.Task) bool { return a.Name < b.Name }
	case "fechaCreacion":
		less = func(a, b model.Task) bool { return a.CreatedAt.Before(b.CreatedAt.Time) }
	case "importancia":
		less = func(a, b model.Task) bool { return importanceRank(a.Importance) < importanceRank(b.Importance) }
	case "fechaVencimiento":
		less = func(a, b model.Task) bool { return dueKey(a) < dueKey(b) }
	}
	desc := q.SortBy != "" && q.Direction == "DESC"
	sort.SliceStable(result, func(i, j int) bool {
		if desc {
			return less(result[j], result[i])
		}
		return less(result[i], result[j])
	})
	return result
}

func intelligentLess(a, b model.Task) bool {
	if a.Overdue != b.Overdue {
		return a.Overdue
	}
	return dueKey(a) < dueKey(b)
}

func dueKey(task model.Task) string {
	if task.DueDate == nil {
		return "9999-12-31"
	}
	return task.DueDate.String()
}

func importanceRank(importance model.Importance) int {
	switch importance {
	case model.ImportanceHigh:
		return 3
	case model.ImportanceMedium:
		return 2
	default:
		return 1
	}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(draft.Name) == "" || (draft.DueDate == nil && draft.DurationDays == nil) {
		writeError(w, http.StatusBadRequest, "Datos inválidos")
		return
	}

	s.mu.Lock()
	task := model.Task{
		ID:           s.nextID,
		Name:         draft.Name,
		Description:  draft.Description,
		Status:       model.StatusPending,
		Importance:   draft.Importance,
		CreatedAt:    model.Timestamp{Time: s.now()},
		StartDate:    draft.StartDate,
		DueDate:      draft.DueDate,
		DurationDays: draft.DurationDays,
	}
	if task.DueDate == nil && task.DurationDays != nil {
		due := model.Date{Time: s.now().AddDate(0, 0, *task.DurationDays)}
		task.DueDate = &due
	}
	s.nextID++
	s.tasks[task.ID] = task
	created := s.derive(task)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "invalid id")
		return
	}
	var update model.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, fmt.Sprintf("Tarea %d no encontrada", id))
		return
	}
	if update.Name != nil {
		task.Name = *update.Name
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		if *update.Status == model.StatusCompleted && task.Status != model.StatusCompleted {
			task.CompletedAt = &model.Timestamp{Time: s.now()}
		}
		task.Status = *update.Status
	}
	if update.Importance != nil {
		task.Importance = *update.Importance
	}
	if update.StartDate != nil {
		task.StartDate = update.StartDate
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.DurationDays != nil {
		task.DurationDays = update.DurationDays
	}
	s.tasks[id] = task
	updated := s.derive(task)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "invalid id")
		return
	}

	s.mu.Lock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Tarea %d no encontrada", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

// derive fills the server-computed fields. Callers hold s.mu.
func (s *Server) derive(task model.Task) model.Task {
	task.Overdue = false
	task.DaysRemaining = nil
	if task.DueDate == nil || task.Status.Closed() {
		return task
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	days := int(task.DueDate.Sub(today).Hours() / 24)
	task.DaysRemaining = &days
	task.Overdue = days < 0
	return task
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
