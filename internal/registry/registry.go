// Package registry provides the central glue for the component system.
//
// It maps the class-name strings used in report specs (e.g.
// "FeatureImportanceRanking", "Pdf") to the compiled Go factories that
// implement them. Registration happens once at startup through the Module
// interface; lookup failures during a run are reported as typed errors
// scoped to the offending section or writer.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/xreportgo/internal/component"
	"github.com/vk/xreportgo/internal/resolve"
)

// UnknownComponentClassError reports a component class no factory is
// registered for.
type UnknownComponentClassError struct {
	Class string
}

func (e *UnknownComponentClassError) Error() string {
	return fmt.Sprintf("unknown component class %q", e.Class)
}

// UnknownWriterClassError reports a writer class no factory is registered
// for.
type UnknownWriterClassError struct {
	Class string
}

func (e *UnknownWriterClassError) Error() string {
	return fmt.Sprintf("unknown writer class %q", e.Class)
}

// Module is the interface all pluggable modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the component and writer factories for a single
// application instance.
type Registry struct {
	components map[string]component.Factory
	writers    map[string]component.WriterFactory
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]component.Factory),
		writers:    make(map[string]component.WriterFactory),
	}
}

// RegisterComponent adds a component factory under a class name. A
// duplicate registration is a programmer error and panics.
func (r *Registry) RegisterComponent(class string, factory component.Factory) {
	if _, exists := r.components[class]; exists {
		panic(fmt.Sprintf("component class %q already registered", class))
	}
	slog.Debug("Registering component class.", "class", class)
	r.components[class] = factory
}

// RegisterWriter adds a writer factory under a class name. A duplicate
// registration is a programmer error and panics.
func (r *Registry) RegisterWriter(class string, factory component.WriterFactory) {
	if _, exists := r.writers[class]; exists {
		panic(fmt.Sprintf("writer class %q already registered", class))
	}
	slog.Debug("Registering writer class.", "class", class)
	r.writers[class] = factory
}

// CreateComponent looks up the factory for class and invokes it with the
// resolved attributes.
func (r *Registry) CreateComponent(class string, attrs resolve.AttrSet) (component.Component, error) {
	factory, ok := r.components[class]
	if !ok {
		return nil, &UnknownComponentClassError{Class: class}
	}
	return factory(attrs)
}

// CreateWriter looks up the writer factory for class and invokes it.
func (r *Registry) CreateWriter(class string, attrs resolve.AttrSet) (component.Writer, error) {
	factory, ok := r.writers[class]
	if !ok {
		return nil, &UnknownWriterClassError{Class: class}
	}
	return factory(attrs)
}

// ComponentClasses returns the registered component class names, sorted.
func (r *Registry) ComponentClasses() []string {
	return sortedKeys(r.components)
}

// WriterClasses returns the registered writer class names, sorted.
func (r *Registry) WriterClasses() []string {
	return sortedKeys(r.writers)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
