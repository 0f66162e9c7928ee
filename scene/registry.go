// Package scene keeps entities and their components for the samples.
// Components are plain values keyed by their dynamic type.
package scene

import (
	"reflect"
	"sort"

	"github.com/pkg/errors"
)

// ErrInvalidEntity is returned for entities that were destroyed
// or never created by the registry
var ErrInvalidEntity = errors.New("invalid entity")

// Entity identifies a set of components. Version changes when
// the ID is reused, so stale handles stay invalid.
type Entity struct {
	ID      uint32
	Version uint32
}

type entityMeta struct {
	version uint32
	alive   bool
}

// Registry owns entities and their components. It is not safe for
// concurrent use.
type Registry struct {
	entities []entityMeta
	free     []uint32
	stores   map[reflect.Type]map[uint32]interface{}
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[reflect.Type]map[uint32]interface{}),
	}
}

// Create returns a new entity without components
func (r *Registry) Create() Entity {
	if n := len(r.free); n > 0 {
		id := r.free[n-1]
		r.free = r.free[:n-1]
		meta := &r.entities[id]
		meta.version++
		if meta.version == 0 {
			meta.version = 1
		}
		meta.alive = true
		return Entity{ID: id, Version: meta.version}
	}

	id := uint32(len(r.entities))
	r.entities = append(r.entities, entityMeta{version: 1, alive: true})
	return Entity{ID: id, Version: 1}
}

// Valid reports whether e is alive
func (r *Registry) Valid(e Entity) bool {
	if int(e.ID) >= len(r.entities) {
		return false
	}
	meta := r.entities[e.ID]
	return meta.alive && meta.version == e.Version
}

// Len returns the number of live entities
func (r *Registry) Len() int {
	return len(r.entities) - len(r.free)
}

// Destroy removes e and all of its components
func (r *Registry) Destroy(e Entity) error {
	if !r.Valid(e) {
		return ErrInvalidEntity
	}
	for _, store := range r.stores {
		delete(store, e.ID)
	}
	r.entities[e.ID].alive = false
	r.free = append(r.free, e.ID)
	return nil
}

// Assign sets the component of c's type on e, replacing any previous one
func (r *Registry) Assign(e Entity, c interface{}) error {
	if !r.Valid(e) {
		return ErrInvalidEntity
	}
	if c == nil {
		return errors.New("nil component")
	}

	t := reflect.TypeOf(c)
	store, ok := r.stores[t]
	if !ok {
		store = make(map[uint32]interface{})
		r.stores[t] = store
	}
	store[e.ID] = c
	return nil
}

// Remove deletes the component of sample's type from e
func (r *Registry) Remove(e Entity, sample interface{}) error {
	if !r.Valid(e) {
		return ErrInvalidEntity
	}
	delete(r.stores[reflect.TypeOf(sample)], e.ID)
	return nil
}

// Get copies the component of e into out, which must be a pointer
// to the component type. It reports whether e has the component.
func (r *Registry) Get(e Entity, out interface{}) bool {
	if !r.Valid(e) {
		return false
	}

	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return false
	}

	c, ok := r.stores[ptr.Type().Elem()][e.ID]
	if !ok {
		return false
	}
	ptr.Elem().Set(reflect.ValueOf(c))
	return true
}

// Has reports whether e has a component of every sample's type
func (r *Registry) Has(e Entity, samples ...interface{}) bool {
	if !r.Valid(e) {
		return false
	}
	for _, s := range samples {
		if _, ok := r.stores[reflect.TypeOf(s)][e.ID]; !ok {
			return false
		}
	}
	return true
}

// View returns the entities that have a component of every
// sample's type, ordered by ID
func (r *Registry) View(samples ...interface{}) []Entity {
	if len(samples) == 0 {
		return nil
	}

	// walk the smallest store
	var smallest map[uint32]interface{}
	for _, s := range samples {
		store := r.stores[reflect.TypeOf(s)]
		if len(store) == 0 {
			return nil
		}
		if smallest == nil || len(store) < len(smallest) {
			smallest = store
		}
	}

	var view []Entity
	for id := range smallest {
		e := Entity{ID: id, Version: r.entities[id].version}
		if r.Has(e, samples...) {
			view = append(view, e)
		}
	}
	sort.Slice(view, func(i, j int) bool {
		return view[i].ID < view[j].ID
	})
	return view
}
