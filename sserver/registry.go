package sserver

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/gordian-engine/gsegtree/smulti"
)

// ErrUnknownTree is returned for an ID the registry does not hold.
var ErrUnknownTree = errors.New("unknown tree")

// Registry holds named engines.
//
// An [smulti.Engine] is not safe for concurrent use,
// so each engine is paired with its own mutex
// and only accessed through [Registry.With].
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*lockedEngine
}

type lockedEngine struct {
	mu sync.Mutex
	e  *smulti.Engine
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]*lockedEngine),
	}
}

// Create builds a new engine from values and returns its generated ID.
func (r *Registry) Create(values []int64) (string, error) {
	e := smulti.New()
	if err := e.Build(values); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newIDLocked()
	r.engines[id] = &lockedEngine{e: e}
	return id, nil
}

// newIDLocked returns an ID not yet in use.
// Two-word pet names collide rarely,
// so after a few attempts a numeric suffix is added.
func (r *Registry) newIDLocked() string {
	for range 8 {
		id := petname.Generate(2, "-")
		if _, ok := r.engines[id]; !ok {
			return id
		}
	}

	base := petname.Generate(2, "-")
	for i := 2; ; i++ {
		id := fmt.Sprintf("%s-%d", base, i)
		if _, ok := r.engines[id]; !ok {
			return id
		}
	}
}

// With calls fn with the engine for id while holding that engine's lock.
// fn must not retain e after returning.
func (r *Registry) With(id string, fn func(e *smulti.Engine) error) error {
	r.mu.RLock()
	le, ok := r.engines[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTree, id)
	}

	le.mu.Lock()
	defer le.mu.Unlock()
	return fn(le.e)
}

// Delete removes the engine for id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.engines[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTree, id)
	}
	delete(r.engines, id)
	return nil
}

// IDs returns the IDs of every held engine, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Len returns the number of held engines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}
