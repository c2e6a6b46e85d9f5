package param

import (
	"fmt"
	"sync"
)

// Group is a named collection of parameters shown together by hosts.
type Group struct {
	ID       int32
	Name     string
	ParentID int32
}

// Registry manages plugin parameters
type Registry struct {
	params map[uint32]*Parameter
	order  []uint32 // Maintain order for indexed access
	groups []Group
	mu     sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		order:  make([]uint32, 0),
	}
}

// Add registers parameters. Duplicate IDs are rejected.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("duplicate parameter id %d (%s)", p.ID, p.Name)
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	return nil
}

// AddGroup registers a parameter group. Group 0 is the implicit root and
// cannot be registered.
func (r *Registry) AddGroup(g Group) error {
	if g.ID == RootGroup {
		return fmt.Errorf("group id %d is reserved for the root group", RootGroup)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.groups {
		if existing.ID == g.ID {
			return fmt.Errorf("duplicate group id %d (%s)", g.ID, g.Name)
		}
	}
	r.groups = append(r.groups, g)
	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// GetByIndex retrieves a parameter by index
func (r *Registry) GetByIndex(index int32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= int32(len(r.order)) {
		return nil
	}

	id := r.order[index]
	return r.params[id]
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int32(len(r.order))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}

// GroupCount returns the number of named groups.
func (r *Registry) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.groups)
}

// GroupAt returns the group at index.
func (r *Registry) GroupAt(index int) (Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.groups) {
		return Group{}, false
	}
	return r.groups[index], true
}

// Group looks up a group by ID.
func (r *Registry) Group(id int32) (Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// ResetAll restores every parameter to its default.
func (r *Registry) ResetAll() {
	for _, p := range r.All() {
		p.Reset()
	}
}
