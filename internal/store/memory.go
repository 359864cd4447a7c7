package store

import (
	"sort"
	"sync"
	"time"

	"github.com/jpalmerr/telemetryboard/internal/widget"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Widget states are keyed by id; writing an unknown id creates the widget.
// Text, class and disabled writes that do not change anything are not
// published. Figure writes always are.
//
// Subscribers receive updates via buffered channels (buffer size 100). Updates
// are sent non-blocking; if a subscriber's buffer is full, the update is dropped
// for that subscriber to prevent blocking the render path.
type MemoryStore struct {
	mu          sync.RWMutex
	widgets     map[string]WidgetState
	subscribers map[chan WidgetState]struct{}
	subMu       sync.RWMutex
	now         func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		widgets:     make(map[string]WidgetState),
		subscribers: make(map[chan WidgetState]struct{}),
		now:         time.Now,
	}
}

// SetText implements [widget.Set].
func (m *MemoryStore) SetText(id, text string) {
	m.apply(id, func(w *WidgetState) bool {
		if w.Text == text {
			return false
		}
		w.Text = text
		return true
	})
}

// SetClass implements [widget.Set].
func (m *MemoryStore) SetClass(id, class string) {
	m.apply(id, func(w *WidgetState) bool {
		if w.Class == class {
			return false
		}
		w.Class = class
		return true
	})
}

// SetDisabled implements [widget.Set].
func (m *MemoryStore) SetDisabled(id string, disabled bool) {
	m.apply(id, func(w *WidgetState) bool {
		if w.Disabled == disabled {
			return false
		}
		w.Disabled = disabled
		return true
	})
}

// Render implements [widget.Set]. The figure is copied.
func (m *MemoryStore) Render(id string, fig widget.Figure) {
	m.setFigure(id, fig, FigureRendered)
}

// Update implements [widget.Set]. The figure is copied.
func (m *MemoryStore) Update(id string, fig widget.Figure) {
	m.setFigure(id, fig, FigureUpdated)
}

func (m *MemoryStore) setFigure(id string, fig widget.Figure, mode FigureMode) {
	cp := fig.Clone()
	m.apply(id, func(w *WidgetState) bool {
		w.Figure = &cp
		w.Mode = mode
		return true
	})
}

// apply mutates one widget and publishes the result if mutate reports a
// change. Publishing happens under the write lock so subscribers see
// changes in revision order.
func (m *MemoryStore) apply(id string, mutate func(*WidgetState) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.widgets[id]
	if !ok {
		w = WidgetState{ID: id}
	}
	if !mutate(&w) && ok {
		return
	}
	w.Revision++
	w.UpdatedAt = m.now()
	m.widgets[id] = w

	m.notifySubscribers(w)
}

// Get returns the state of the widget with the given id.
func (m *MemoryStore) Get(id string) (WidgetState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.widgets[id]
	return w, ok
}

// GetAll returns a snapshot of all widget states, ordered by id.
func (m *MemoryStore) GetAll() []WidgetState {
	m.mu.RLock()
	results := make([]WidgetState, 0, len(m.widgets))
	for _, w := range m.widgets {
		results = append(results, w)
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan WidgetState {
	ch := make(chan WidgetState, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan WidgetState) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(w WidgetState) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- w:
		default:
			// subscriber is slow, drop the message
		}
	}
}
