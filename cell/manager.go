// Package cell assembles emulated cores into a managed processor complex.
package cell

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/sarchlab/cellsim/emu"
)

// CoreID identifies a core within one Manager. Identities are assigned
// monotonically at creation and never reused for the manager's lifetime.
type CoreID uint32

// Core is the lifecycle surface shared by both core families.
type Core interface {
	Start()
	Stop()
	Halt()
	Wait()
	State() emu.ExecState
	IsRunning() bool
	IsHalted() bool
}

// CoreBuilder constructs a core given its assigned identity.
type CoreBuilder func(id CoreID) Core

// Manager creates, tracks, and tears down cores. The collection is guarded
// by a mutex; execution-state transitions of individual cores are
// independent of collection-level locking.
type Manager struct {
	log logr.Logger

	mu     sync.Mutex
	cores  map[CoreID]Core
	order  []CoreID
	nextID CoreID
}

// ManagerOption is a functional option for configuring a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the manager's logging sink.
func WithManagerLogger(log logr.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		log:   logr.Discard(),
		cores: make(map[CoreID]Core),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates the next identity and constructs a core with it.
func (m *Manager) Create(build CoreBuilder) (CoreID, Core) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	core := build(id)
	m.cores[id] = core
	m.order = append(m.order, id)

	m.log.Info("core created", "id", id)
	return id, core
}

// Destroy stops the core if it is running and removes it. The identity is
// not reused. Returns false if the identity is unknown.
func (m *Manager) Destroy(id CoreID) bool {
	m.mu.Lock()
	core, ok := m.cores[id]
	if ok {
		delete(m.cores, id)
		for i, oid := range m.order {
			if oid == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	core.Stop()
	m.log.Info("core destroyed", "id", id)
	return true
}

// Get returns the core with the given identity.
func (m *Manager) Get(id CoreID) (Core, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	core, ok := m.cores[id]
	return core, ok
}

// List returns the tracked identities in creation order.
func (m *Manager) List() []CoreID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CoreID, len(m.order))
	copy(out, m.order)
	return out
}

// Count returns the number of tracked cores.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cores)
}

// snapshot copies the tracked cores in creation order, so bulk operations
// can run without holding the collection lock.
func (m *Manager) snapshot() []Core {
	m.mu.Lock()
	defer m.mu.Unlock()

	cores := make([]Core, 0, len(m.order))
	for _, id := range m.order {
		cores = append(cores, m.cores[id])
	}
	return cores
}

// StopAllAndClear stops every core and removes it, in creation order. Used
// at shutdown.
func (m *Manager) StopAllAndClear() {
	for _, core := range m.snapshot() {
		core.Stop()
	}

	m.mu.Lock()
	m.cores = make(map[CoreID]Core)
	m.order = nil
	m.mu.Unlock()
}
