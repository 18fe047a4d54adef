package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

const DefaultDuration = 3 * time.Second

type Item struct {
	ID       string
	Message  string
	Severity Severity
	Duration time.Duration
	Created  time.Time
}

// Bus is an append-only toast queue. Every item removes itself after its
// duration; Close removes one early.
type Bus struct {
	mu              sync.Mutex
	items           []Item
	timers          map[string]*time.Timer
	defaultDuration time.Duration
	listeners       []func()
	now             func() time.Time
}

func NewBus(defaultDuration time.Duration) *Bus {
	if defaultDuration <= 0 {
		defaultDuration = DefaultDuration
	}
	return &Bus{
		timers:          make(map[string]*time.Timer),
		defaultDuration: defaultDuration,
		now:             time.Now,
	}
}

// Subscribe registers fn to run after every change to the queue. fn runs
// outside the bus lock, possibly from a timer goroutine.
func (b *Bus) Subscribe(fn func()) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Show appends a toast and returns its id. A zero duration uses the bus
// default.
func (b *Bus) Show(message string, severity Severity, duration time.Duration) string {
	if duration <= 0 {
		duration = b.defaultDuration
	}

	b.mu.Lock()
	now := b.now()
	item := Item{
		ID:       fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()),
		Message:  message,
		Severity: severity,
		Duration: duration,
		Created:  now,
	}
	b.items = append(b.items, item)
	id := item.ID
	b.timers[id] = time.AfterFunc(duration, func() {
		b.remove(id)
	})
	b.mu.Unlock()

	b.notify()
	return id
}

func (b *Bus) Success(message string) string {
	return b.Show(message, SeveritySuccess, 0)
}

func (b *Bus) Error(message string) string {
	return b.Show(message, SeverityError, 0)
}

func (b *Bus) Warning(message string) string {
	return b.Show(message, SeverityWarning, 0)
}

func (b *Bus) Info(message string) string {
	return b.Show(message, SeverityInfo, 0)
}

// Close dismisses a toast before its timer fires.
func (b *Bus) Close(id string) bool {
	return b.remove(id)
}

// CloseLatest dismisses the most recent toast, if any.
func (b *Bus) CloseLatest() bool {
	b.mu.Lock()
	if len(b.items) == 0 {
		b.mu.Unlock()
		return false
	}
	id := b.items[len(b.items)-1].ID
	b.mu.Unlock()
	return b.remove(id)
}

func (b *Bus) remove(id string) bool {
	b.mu.Lock()
	index := -1
	for i, item := range b.items {
		if item.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		b.mu.Unlock()
		return false
	}
	b.items = append(b.items[:index:index], b.items[index+1:]...)
	if timer, ok := b.timers[id]; ok {
		timer.Stop()
		delete(b.timers, id)
	}
	b.mu.Unlock()

	b.notify()
	return true
}

// Items returns the visible toasts in insertion order.
func (b *Bus) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Item(nil), b.items...)
}

// Stop cancels every pending dismissal timer.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}

func (b *Bus) notify() {
	b.mu.Lock()
	listeners := append([]func(){}, b.listeners...)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
