// Package tasks owns the task list shown to the user: the collection, the
// active filter, two-phase deletion and drag-and-drop status changes. Every
// mutation round-trips through the backend and then reloads.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/api"
	"github.com/Joseda-hg/lazytareas/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrValidation wraps draft validation failures. No request was sent.
	ErrValidation = errors.New("invalid task")
	// ErrSuperseded is returned by a load whose response arrived after a
	// newer load had already been issued.
	ErrSuperseded = errors.New("superseded by a newer load")
	ErrNoPending  = errors.New("no task staged for deletion")
)

// Backend is the slice of the api client the controller drives.
type Backend interface {
	FilterTasks(ctx context.Context, query api.FilterQuery) ([]model.Task, error)
	CreateTask(ctx context.Context, draft model.Draft) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, update model.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type Notifier interface {
	Success(message string) string
	Error(message string) string
}

type Controller struct {
	backend  Backend
	notifier Notifier
	views    ViewStore
	logger   *zap.Logger
	drag     *DragMachine

	mu              sync.Mutex
	tasks           []model.Task
	filter          model.FilterSpec
	draft           model.Draft
	loading         bool
	loaded          bool
	err             error
	filterPanelOpen bool
	pending         *model.Task
	issued          uint64
	applied         uint64

	listenerMu sync.Mutex
	listeners  []func()
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithRevealDelay(delay time.Duration) Option {
	return func(c *Controller) { c.drag = NewDragMachine(delay, c.changed) }
}

func WithViews(views ViewStore) Option {
	return func(c *Controller) { c.views = views }
}

func New(backend Backend, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		notifier: notifier,
		logger:   zap.NewNop(),
		filter:   model.DefaultFilter(),
		draft:    model.NewDraft(),
	}
	c.drag = NewDragMachine(DefaultRevealDelay, c.changed)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn to run after every state change. fn may run on any
// goroutine.
func (c *Controller) Subscribe(fn func()) {
	c.listenerMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.listenerMu.Unlock()
}

func (c *Controller) changed() {
	c.listenerMu.Lock()
	listeners := append([]func(){}, c.listeners...)
	c.listenerMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Load fetches the tasks matching spec. Only the newest issued load may
// replace the collection; older responses are dropped with ErrSuperseded.
func (c *Controller) Load(ctx context.Context, spec model.FilterSpec) ([]model.Task, error) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.loading = true
	c.mu.Unlock()
	c.changed()

	tasks, err := c.backend.FilterTasks(ctx, BuildQuery(spec))

	c.mu.Lock()
	if seq <= c.applied {
		c.mu.Unlock()
		c.logger.Debug("dropping stale task list", zap.Uint64("seq", seq))
		return nil, ErrSuperseded
	}
	c.applied = seq
	if seq == c.issued {
		c.loading = false
	}
	if err != nil {
		c.err = err
		c.mu.Unlock()
		c.fail(err, "Could not load tasks")
		c.changed()
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.tasks = tasks
	c.err = nil
	c.loaded = true
	result := append([]model.Task(nil), tasks...)
	c.mu.Unlock()

	c.changed()
	return result, nil
}

// Reset forgets everything tied to the previous session. Loads still in
// flight are dropped when they return.
func (c *Controller) Reset() {
	c.drag.Cancel()
	c.mu.Lock()
	c.tasks = nil
	c.filter = model.DefaultFilter()
	c.draft = model.NewDraft()
	c.loading = false
	c.loaded = false
	c.err = nil
	c.filterPanelOpen = false
	c.pending = nil
	c.applied = c.issued
	c.mu.Unlock()
	c.changed()
}

// Refresh reloads with the active filter; it doubles as the retry action.
func (c *Controller) Refresh(ctx context.Context) error {
	_, err := c.Load(ctx, c.Filter())
	return err
}

func (c *Controller) ApplyFilters(ctx context.Context, spec model.FilterSpec) error {
	if spec.Direction == "" {
		spec.Direction = model.Ascending
	}
	c.mu.Lock()
	c.filter = spec
	c.filterPanelOpen = false
	c.mu.Unlock()

	_, err := c.Load(ctx, spec)
	return err
}

func (c *Controller) ClearFilters(ctx context.Context) error {
	spec := model.DefaultFilter()
	c.mu.Lock()
	c.filter = spec
	c.mu.Unlock()

	_, err := c.Load(ctx, spec)
	if err == nil {
		c.notifier.Success("Filters cleared")
	}
	return err
}

// Create validates draft locally before sending it. The draft is kept on any
// failure and reset to a blank one on success.
func (c *Controller) Create(ctx context.Context, draft model.Draft) (model.Task, error) {
	c.mu.Lock()
	c.draft = draft
	c.mu.Unlock()

	if err := model.ValidateDraft(draft); err != nil {
		c.notifier.Error(err.Error())
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	task, err := c.backend.CreateTask(ctx, draft)
	if err != nil {
		c.fail(err, "Could not create the task")
		return model.Task{}, err
	}
	c.logger.Info("task created", zap.Int64("id", task.ID))

	c.mu.Lock()
	c.draft = model.NewDraft()
	c.mu.Unlock()

	c.reload(ctx)
	c.notifier.Success("Task created")
	return task, nil
}

func (c *Controller) Update(ctx context.Context, id int64, update model.TaskUpdate) (model.Task, error) {
	return c.update(ctx, id, update, "Task updated")
}

func (c *Controller) update(ctx context.Context, id int64, update model.TaskUpdate, success string) (model.Task, error) {
	task, err := c.backend.UpdateTask(ctx, id, update)
	if err != nil {
		c.fail(err, "Could not update the task")
		return model.Task{}, err
	}
	c.logger.Info("task updated", zap.Int64("id", id))

	c.reload(ctx)
	c.notifier.Success(success)
	return task, nil
}

// reload refreshes after a mutation. Its failure is already reported by Load
// and does not undo the mutation.
func (c *Controller) reload(ctx context.Context) {
	if _, err := c.Load(ctx, c.Filter()); err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.Warn("reload after mutation failed", zap.Error(err))
	}
}

// RequestDelete stages task for deletion, replacing any earlier candidate.
func (c *Controller) RequestDelete(task model.Task) {
	c.mu.Lock()
	c.pending = &task
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	c.changed()
}

// ConfirmDelete deletes the staged task. On success the task is removed from
// the collection by id without a reload.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return ErrNoPending
	}
	target := *c.pending
	c.mu.Unlock()

	err := c.backend.DeleteTask(ctx, target.ID)

	c.mu.Lock()
	if c.pending != nil && c.pending.ID == target.ID {
		c.pending = nil
	}
	if err == nil {
		c.tasks = removeByID(c.tasks, target.ID)
	}
	c.mu.Unlock()
	c.changed()

	if err != nil {
		c.fail(err, "Could not delete the task")
		return err
	}
	c.logger.Info("task deleted", zap.Int64("id", target.ID))
	c.notifier.Success("Task deleted")
	return nil
}

func removeByID(tasks []model.Task, id int64) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID != id {
			out = append(out, task)
		}
	}
	return out
}

func (c *Controller) BeginDrag(task model.Task) {
	c.drag.Begin(task)
}

func (c *Controller) CancelDrag() {
	c.drag.Cancel()
}

// Drop moves the dragged task to status. Dropping on the task's own status
// ends the gesture without a request. The whole task is resent with only the
// status changed.
func (c *Controller) Drop(ctx context.Context, status model.Status) error {
	task, ok := c.drag.Release()
	if !ok || task.Status == status {
		return nil
	}

	update := model.UpdateFromTask(task)
	update.Status = &status
	_, err := c.update(ctx, task.ID, update, movedMessage(status))
	return err
}

func movedMessage(status model.Status) string {
	switch status {
	case model.StatusPending:
		return "Task moved back to Pending"
	case model.StatusInProgress:
		return "Task started"
	case model.StatusCompleted:
		return "Task completed"
	case model.StatusCancelled:
		return "Task cancelled"
	default:
		return "Task moved"
	}
}

// fail reports err to the user. Unauthorized failures were already handled
// by tearing the session down and are not reported again.
func (c *Controller) fail(err error, fallback string) {
	message, show := api.Describe(err, fallback)
	if !show {
		c.logger.Debug(fallback, zap.Error(err))
		return
	}
	if api.Classify(err) == api.KindServer {
		c.logger.Error(fallback, zap.Error(err))
	} else {
		c.logger.Warn(fallback, zap.Error(err))
	}
	c.notifier.Error(message)
}

func (c *Controller) OpenFilterPanel() {
	c.setFilterPanel(true)
}

func (c *Controller) CloseFilterPanel() {
	c.setFilterPanel(false)
}

func (c *Controller) setFilterPanel(open bool) {
	c.mu.Lock()
	c.filterPanelOpen = open
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) Filter() model.FilterSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Draft returns the input retained from the last create attempt.
func (c *Controller) Draft() model.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Task(nil), c.tasks...)
}

func (c *Controller) Pending() (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return model.Task{}, false
	}
	return *c.pending, true
}

type Snapshot struct {
	Tasks           []model.Task
	Filter          model.FilterSpec
	Loading         bool
	Loaded          bool
	Err             error
	FilterPanelOpen bool
	Pending         *model.Task
	Drag            DragState
	Dragged         *model.Task
}

// Snapshot copies the state a view needs to render.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Tasks:           append([]model.Task(nil), c.tasks...),
		Filter:          c.filter,
		Loading:         c.loading,
		Loaded:          c.loaded,
		Err:             c.err,
		FilterPanelOpen: c.filterPanelOpen,
	}
	if c.pending != nil {
		pending := *c.pending
		snap.Pending = &pending
	}
	c.mu.Unlock()

	snap.Drag = c.drag.State()
	if dragged, ok := c.drag.Dragged(); ok {
		snap.Dragged = &dragged
	}
	return snap
}

// Empty reports a successful load that returned nothing.
func (s Snapshot) Empty() bool {
	return s.Loaded && len(s.Tasks) == 0
}

func (s Snapshot) EmptyHint() string {
	if s.Filter.ActiveCount() > 0 {
		return "No tasks match. Try adjusting the filters"
	}
	return "No tasks yet. Create your first task"
}
