package cell

import (
	"github.com/go-logr/logr"
)

// ThreadGroup is a Manager that additionally supports bulk lifecycle
// operations over its tracked cores, applied sequentially in creation
// order.
type ThreadGroup struct {
	*Manager

	id  uint32
	log logr.Logger
}

// NewThreadGroup creates an empty thread group with the given group
// identity.
func NewThreadGroup(id uint32, opts ...ManagerOption) *ThreadGroup {
	m := NewManager(opts...)
	return &ThreadGroup{
		Manager: m,
		id:      id,
		log:     m.log.WithValues("group", id),
	}
}

// GroupID returns the group identity.
func (g *ThreadGroup) GroupID() uint32 {
	return g.id
}

// StartAll starts every core in creation order.
func (g *ThreadGroup) StartAll() {
	g.log.Info("starting all cores", "count", g.Count())
	for _, core := range g.snapshot() {
		core.Start()
	}
}

// StopAll stops every core in creation order, joining each execution
// thread.
func (g *ThreadGroup) StopAll() {
	g.log.Info("stopping all cores", "count", g.Count())
	for _, core := range g.snapshot() {
		core.Stop()
	}
}

// WaitAll blocks until every core's execution loop has exited.
func (g *ThreadGroup) WaitAll() {
	for _, core := range g.snapshot() {
		core.Wait()
	}
}
