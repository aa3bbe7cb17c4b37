// Package prototype keeps a named catalogue of virtual machine templates that
// can be cloned into new machines.
package prototype

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"vmforge/internal/resource"
)

var (
	ErrPrototypeNotFound    = errors.New("prototype not found")
	ErrNonCloneableTemplate = errors.New("template does not support cloning")
	ErrInvalidName          = errors.New("prototype name is required")
)

// Entry is a registered template together with its name
type Entry struct {
	Name     string
	Template resource.VirtualMachine
}

// Registry maps names to templates. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]resource.VirtualMachine
	ids       resource.IDGenerator
}

// NewRegistry creates an empty registry. Clones get identifiers from ids,
// or random ones when ids is nil.
func NewRegistry(ids resource.IDGenerator) *Registry {
	if ids == nil {
		ids = resource.UUIDGenerator{}
	}
	return &Registry{
		templates: make(map[string]resource.VirtualMachine),
		ids:       ids,
	}
}

// Register stores a private copy of template under name, replacing any
// previous entry with that name.
func (r *Registry) Register(name string, template resource.VirtualMachine) error {
	if name == "" {
		return ErrInvalidName
	}
	if template == nil {
		return fmt.Errorf("%w: '%s'", ErrNonCloneableTemplate, name)
	}
	copied := template.Clone(template.ID())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = copied
	return nil
}

// Clone returns a new machine copied from the template registered under name.
// The clone carries a freshly generated identifier.
func (r *Registry) Clone(name string) (resource.VirtualMachine, error) {
	r.mu.RLock()
	template, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrPrototypeNotFound, name)
	}
	return template.Clone(r.ids.NewID(template.Provider(), resource.KindVM)), nil
}

// Get returns a copy of the template registered under name
func (r *Registry) Get(name string) (resource.VirtualMachine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrPrototypeNotFound, name)
	}
	return template.Clone(template.ID()), nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}

// List returns the registered names in lexical order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns copies of all entries ordered by name
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]Entry, 0, len(r.templates))
	for name, template := range r.templates {
		entries = append(entries, Entry{Name: name, Template: template.Clone(template.ID())})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Unregister removes name and reports whether it was present
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[name]; !ok {
		return false
	}
	delete(r.templates, name)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}
