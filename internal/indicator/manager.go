package indicator

import (
	"log/slog"
	"sync"

	"github.com/smazurov/rgbnode/internal/events"
)

// recordState is satisfied by events.RecordStateEvent.
type recordState interface {
	GetRecord() string
	IsPending() bool
}

// Manager blinks the status LED while any record has unsaved changes and
// keeps it solid otherwise.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	unsubscribe func()
	logger      *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
	current Pattern
}

// NewManager creates a manager for controller fed by eventBus.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
		pending:    make(map[string]bool),
	}
}

// Start shows the initial state and subscribes to record events.
func (m *Manager) Start() {
	m.mu.Lock()
	m.apply()
	m.mu.Unlock()

	m.unsubscribe = m.eventBus.Subscribe(func(e events.RecordStateEvent) {
		m.handleEvent(e)
	})
	m.logger.Info("Status LED manager started", "led", m.controller.Name())
}

// Stop unsubscribes and turns the LED off.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if err := m.controller.Set(PatternOff); err != nil {
		m.logger.Warn("Failed to turn status LED off", "error", err)
	}
	m.logger.Info("Status LED manager stopped")
}

// Pattern returns the pattern last shown.
func (m *Manager) Pattern() Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) handleEvent(e recordState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending[e.GetRecord()] = e.IsPending()
	m.logger.Debug("Record state changed", "record", e.GetRecord(), "pending", e.IsPending())
	m.apply()
}

// apply must be called with mu held.
func (m *Manager) apply() {
	want := PatternSolid
	for _, pending := range m.pending {
		if pending {
			want = PatternBlink
			break
		}
	}
	if want == m.current {
		return
	}
	if err := m.controller.Set(want); err != nil {
		m.logger.Warn("Failed to set status LED", "pattern", want, "error", err)
		return
	}
	m.current = want
}
