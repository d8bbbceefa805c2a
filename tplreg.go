// Package tplreg stores template sources by name, compiles them lazily
// through a pluggable engine, and renders them with data. Sources register
// as strings, string sequences, zero-argument providers, or selector
// lookups against an injected document; the compiled form is cached per
// name until removed.
//
// The root package re-exports the core registry types and hosts a
// process-wide default registry for applications with one active engine.
// Components that need their own engine or template set should construct
// an independent registry with New.
package tplreg

import (
	"log/slog"
	"sync"

	"github.com/goliatone/go-tplreg/pkg/registry"
)

// Registry stores template sources and their compiled forms; aliased here
// so most callers never import the registry package directly.
type Registry = registry.Registry

// Engine is the pluggable compile contract consumed by a Registry.
type Engine = registry.Engine

// Template is a compiled template ready to render against data.
type Template = registry.Template

// TemplateFunc adapts a plain render function to Template.
type TemplateFunc = registry.TemplateFunc

// CompileFunc adapts a compile function to Engine.
type CompileFunc = registry.CompileFunc

// Locator resolves selectors to inner markup for selector registration.
type Locator = registry.Locator

// Wrapper converts rendered markup for RenderWrapped.
type Wrapper = registry.Wrapper

// MarkupParser refines Wrapper with markup parsing.
type MarkupParser = registry.MarkupParser

// Option configures a Registry during construction.
type Option = registry.Option

// RegisterOption adjusts a single Register or RegisterAll call.
type RegisterOption = registry.RegisterOption

// Sentinel errors re-exported from the registry package.
var (
	ErrNoEngine    = registry.ErrNoEngine
	ErrNoWrapper   = registry.ErrNoWrapper
	ErrNoLocator   = registry.ErrNoLocator
	ErrNoMatch     = registry.ErrNoMatch
	ErrBadSource   = registry.ErrBadSource
	ErrBadCompiled = registry.ErrBadCompiled
)

// New constructs an independent registry.
func New(opts ...Option) *Registry {
	return registry.New(opts...)
}

// WithEngine sets the engine on a registry built with New.
func WithEngine(e Engine) Option {
	return registry.WithEngine(e)
}

// WithJoint sets the separator used when coercing sequence sources.
func WithJoint(sep string) Option {
	return registry.WithJoint(sep)
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return registry.WithLogger(logger)
}

// WithLocator sets the document locator for selector registration.
func WithLocator(l Locator) Option {
	return registry.WithLocator(l)
}

// WithWrapper sets the wrapper backing RenderWrapped.
func WithWrapper(w Wrapper) Option {
	return registry.WithWrapper(w)
}

// Query registers from the configured locator instead of the given value.
func Query(selector string) RegisterOption {
	return registry.Query(selector)
}

// Compiled stores the value directly in the compiled cache.
func Compiled() RegisterOption {
	return registry.Compiled()
}

// Joint overrides the sequence separator for one registration call.
func Joint(sep string) RegisterOption {
	return registry.Joint(sep)
}

var (
	defaultMu  sync.RWMutex
	defaultReg = registry.New()
)

// Default returns the process-wide registry behind the package-level
// functions.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultReg
}

// Reset replaces the default registry with a fresh, empty one and returns
// it. Primarily useful in tests.
func Reset() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = registry.New()
	return defaultReg
}

// Register stores a template in the default registry.
func Register(name string, value any, opts ...RegisterOption) *Registry {
	return Default().Register(name, value, opts...)
}

// Add registers a template in the default registry. Alias for Register.
func Add(name string, value any, opts ...RegisterOption) *Registry {
	return Default().Add(name, value, opts...)
}

// RegisterAll registers every entry of values in the default registry.
func RegisterAll(values map[string]any, opts ...RegisterOption) *Registry {
	return Default().RegisterAll(values, opts...)
}

// Remove deletes a template from the default registry.
func Remove(name string) *Registry {
	return Default().Remove(name)
}

// Render renders a named template from the default registry.
func Render(name string, data map[string]any) (string, error) {
	return Default().Render(name, data)
}

// RenderWrapped renders a named template and wraps the markup through the
// default registry's wrapper.
func RenderWrapped(name string, data map[string]any) (any, error) {
	return Default().RenderWrapped(name, data)
}

// SetEngine replaces the default registry's engine. The last engine set
// wins for every future compilation.
func SetEngine(e Engine) *Registry {
	return Default().SetEngine(e)
}

// CurrentEngine returns the default registry's engine, which may be nil.
func CurrentEngine() Engine {
	return Default().Engine()
}

// SetLocator replaces the default registry's document locator.
func SetLocator(l Locator) *Registry {
	return Default().SetLocator(l)
}

// SetWrapper replaces the default registry's wrapper.
func SetWrapper(w Wrapper) *Registry {
	return Default().SetWrapper(w)
}

// Source returns the raw source stored under name in the default registry.
func Source(name string) (string, bool) {
	return Default().Source(name)
}

// Sources returns a copy of the default registry's source map.
func Sources() map[string]string {
	return Default().Sources()
}

// Bind is a reserved slot for two-way template binding on the default
// registry. It is not implemented and panics when called.
func Bind(name string, target any) *Registry {
	return Default().Bind(name, target)
}
