// Package vars implements the variable context: the caller-supplied mapping
// from symbolic names to runtime objects (models, datasets, functions) that
// a report spec references through "var:" attribute values.
//
// The context is populated before a run starts and frozen by the engine at
// the beginning of execution, which keeps resolution deterministic and free
// of side effects for the whole run.
package vars

import (
	"fmt"
	"sort"
	"sync"
)

// DuplicateBindingError is returned when a name is bound twice within the
// same run.
type DuplicateBindingError struct {
	Name string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("variable %q is already bound", e.Name)
}

// UnboundVariableError is returned when resolution finds no binding for a
// name.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("variable %q is not bound", e.Name)
}

// FrozenContextError is returned when a binding is attempted after the run
// has started executing.
type FrozenContextError struct {
	Name string
}

func (e *FrozenContextError) Error() string {
	return fmt.Sprintf("cannot bind %q: variable context is frozen for the running report", e.Name)
}

// Context holds the bindings for one report execution.
type Context struct {
	mu       sync.RWMutex
	bindings map[string]any
	frozen   bool
}

// NewContext returns an empty, unfrozen context.
func NewContext() *Context {
	return &Context{bindings: make(map[string]any)}
}

// Bind registers a runtime object under a name.
func (c *Context) Bind(name string, obj any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return &FrozenContextError{Name: name}
	}
	if _, exists := c.bindings[name]; exists {
		return &DuplicateBindingError{Name: name}
	}
	c.bindings[name] = obj
	return nil
}

// MustBind is Bind for wiring code where a collision is a programmer error.
func (c *Context) MustBind(name string, obj any) {
	if err := c.Bind(name, obj); err != nil {
		panic(err)
	}
}

// Resolve returns the object bound under name.
func (c *Context) Resolve(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.bindings[name]
	if !ok {
		return nil, &UnboundVariableError{Name: name}
	}
	return obj, nil
}

// Freeze marks the context read-only. The engine calls it once before the
// section tree builder starts; further Bind calls fail.
func (c *Context) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Names returns the bound names in sorted order, for logging.
func (c *Context) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.bindings))
	for name := range c.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
