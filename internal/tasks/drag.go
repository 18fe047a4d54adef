package tasks

import (
	"sync"
	"time"

	"github.com/Joseda-hg/lazytareas/internal/model"
)

type DragState int

const (
	DragIdle DragState = iota
	DragHidden
	DragVisible
)

func (s DragState) String() string {
	switch s {
	case DragHidden:
		return "DRAGGING_HIDDEN"
	case DragVisible:
		return "DRAGGING_VISIBLE"
	default:
		return "IDLE"
	}
}

const DefaultRevealDelay = 200 * time.Millisecond

// DragMachine tracks one drag gesture. The drop-zone overlay is revealed only
// after the reveal delay so short accidental drags never flash it.
type DragMachine struct {
	delay    time.Duration
	onChange func()

	mu    sync.Mutex
	state DragState
	task  *model.Task
	gen   uint64
	timer *time.Timer
}

func NewDragMachine(delay time.Duration, onChange func()) *DragMachine {
	if delay <= 0 {
		delay = DefaultRevealDelay
	}
	if onChange == nil {
		onChange = func() {}
	}
	return &DragMachine{delay: delay, onChange: onChange}
}

// Begin starts a gesture for task, replacing any gesture in progress.
func (m *DragMachine) Begin(task model.Task) {
	m.mu.Lock()
	m.stopLocked()
	m.gen++
	gen := m.gen
	m.state = DragHidden
	m.task = &task
	m.timer = time.AfterFunc(m.delay, func() { m.reveal(gen) })
	m.mu.Unlock()

	m.onChange()
}

func (m *DragMachine) reveal(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != DragHidden {
		m.mu.Unlock()
		return
	}
	m.state = DragVisible
	m.timer = nil
	m.mu.Unlock()

	m.onChange()
}

// Release ends the gesture and hands back the dragged task, if any.
func (m *DragMachine) Release() (model.Task, bool) {
	m.mu.Lock()
	task := m.task
	wasDragging := m.state != DragIdle
	m.resetLocked()
	m.mu.Unlock()

	if !wasDragging || task == nil {
		return model.Task{}, false
	}
	m.onChange()
	return *task, true
}

func (m *DragMachine) Cancel() {
	m.mu.Lock()
	wasDragging := m.state != DragIdle
	m.resetLocked()
	m.mu.Unlock()

	if wasDragging {
		m.onChange()
	}
}

func (m *DragMachine) State() DragState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Dragged returns a copy of the task being dragged.
func (m *DragMachine) Dragged() (model.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task == nil {
		return model.Task{}, false
	}
	return *m.task, true
}

func (m *DragMachine) OverlayVisible() bool {
	return m.State() == DragVisible
}

func (m *DragMachine) resetLocked() {
	m.stopLocked()
	m.gen++
	m.state = DragIdle
	m.task = nil
}

func (m *DragMachine) stopLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
