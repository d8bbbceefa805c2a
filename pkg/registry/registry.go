package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry stores raw template sources by name and lazily compiles them
// through the configured Engine, caching the compiled form per name. Reads
// and writes are safe for concurrent use.
//
// Registration is forgiving: values that cannot be stored are reported
// through the logger and skipped, so a bad entry never aborts a bulk load.
// Rendering returns errors instead.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]string
	compiled map[string]Template
	engine   Engine
	locator  Locator
	wrapper  Wrapper
	joint    string
	logger   *slog.Logger
}

// New creates an empty Registry. Without WithEngine the registry can store
// sources but every render fails with ErrNoEngine until SetEngine is called.
func New(opts ...Option) *Registry {
	r := &Registry{
		sources:  make(map[string]string),
		compiled: make(map[string]Template),
		joint:    DefaultJoint,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register stores a template under name and returns the registry for
// chaining.
//
// The value is coerced to a source string: strings are trimmed, sequences
// joined with the joint separator, zero-argument functions invoked once for
// their value. Two options change the path entirely: Query (or a name
// starting with "#") resolves the template from the configured Locator, and
// Compiled stores the value straight into the compiled cache.
//
// Registering over an existing name replaces the source but keeps any
// cached compiled form; the cache is compile-once per name, so call Remove
// first when the new source must take effect.
func (r *Registry) Register(name string, value any, opts ...RegisterOption) *Registry {
	cfg := registerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	switch {
	case cfg.query != "" || strings.HasPrefix(name, "#"):
		selector := cfg.query
		if selector == "" {
			selector = name
		}
		r.registerSelector(name, selector)
	case cfg.compiled:
		r.registerCompiled(name, value)
	default:
		joint := r.jointFor(cfg)
		src, err := coerceSource(value, joint)
		if err != nil {
			r.logger.Warn("template source coercion failed, storing empty source",
				"name", name, "error", err)
		}
		r.setSource(name, src)
	}
	return r
}

// Add registers a template under name. It is an alias for Register.
func (r *Registry) Add(name string, value any, opts ...RegisterOption) *Registry {
	return r.Register(name, value, opts...)
}

// RegisterAll registers every entry of values. Options apply to each entry
// as if passed to Register individually.
func (r *Registry) RegisterAll(values map[string]any, opts ...RegisterOption) *Registry {
	for name, value := range values {
		r.Register(name, value, opts...)
	}
	return r
}

// Remove deletes the source and any cached compiled form for name. A later
// Register of the same name compiles fresh.
func (r *Registry) Remove(name string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, name)
	delete(r.compiled, name)
	return r
}

// Render resolves name to a compiled template and renders it with data. A
// nil data map renders as an empty one, so templates can rely on lookups
// never faulting. The compiled form is cached; later renders of the same
// name skip compilation until Remove.
func (r *Registry) Render(name string, data map[string]any) (string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}
	if data == nil {
		data = map[string]any{}
	}
	return tmpl.Render(data)
}

// RenderWrapped renders name like Render, then hands the markup to the
// configured Wrapper. When the wrapper also implements MarkupParser the
// output is parsed into nodes instead of wrapped as a raw string.
func (r *Registry) RenderWrapped(name string, data map[string]any) (any, error) {
	out, err := r.Render(name, data)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	w := r.wrapper
	r.mu.RUnlock()
	if w == nil {
		r.logger.Error("wrapped render failed", "name", name, "error", ErrNoWrapper)
		return nil, fmt.Errorf("wrap %q: %w", name, ErrNoWrapper)
	}
	if p, ok := w.(MarkupParser); ok {
		return p.ParseMarkup(out)
	}
	return w.Wrap(out)
}

// Engine returns the currently configured engine, which may be nil.
func (r *Registry) Engine() Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engine
}

// SetEngine replaces the engine. The last engine set wins for every future
// compilation; templates already compiled keep their cached form until
// removed.
func (r *Registry) SetEngine(e Engine) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine = e
	return r
}

// SetLocator replaces the document locator used by selector registration.
func (r *Registry) SetLocator(l Locator) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locator = l
	return r
}

// SetWrapper replaces the wrapper used by RenderWrapped.
func (r *Registry) SetWrapper(w Wrapper) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wrapper = w
	return r
}

// Source returns the raw source stored for name.
func (r *Registry) Source(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[name]
	return src, ok
}

// Sources returns a copy of the raw source map. Precompiled entries have no
// source and do not appear.
func (r *Registry) Sources() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.sources))
	for name, src := range r.sources {
		out[name] = src
	}
	return out
}

// Names returns the sorted names of every registered template, whether
// stored as source or precompiled.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.sources)+len(r.compiled))
	for name := range r.sources {
		seen[name] = struct{}{}
	}
	for name := range r.compiled {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered, as source or precompiled.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.sources[name]; ok {
		return true
	}
	_, ok := r.compiled[name]
	return ok
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.Names())
}

// MarshalJSON encodes the raw source map, making the registry portable
// across processes. Compiled templates are not serializable and are
// omitted.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Sources())
}

// Bind is a reserved slot for two-way template binding. It is not
// implemented and panics when called.
func (r *Registry) Bind(name string, target any) *Registry {
	panic(fmt.Sprintf("registry: Bind(%q) is not implemented", name))
}

// template resolves name through the two-tier cache: a cached compiled
// template wins, otherwise the raw source is compiled once and cached.
// Failed compiles are not cached, so a later engine swap can succeed.
func (r *Registry) template(name string) (Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.compiled[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	eng := r.engine
	r.mu.RUnlock()

	if eng == nil {
		r.logger.Error("render failed", "name", name, "error", ErrNoEngine)
		return nil, fmt.Errorf("render %q: %w", name, ErrNoEngine)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.compiled[name]; ok {
		return tmpl, nil
	}
	src, ok := r.sources[name]
	if !ok {
		r.logger.Debug("compiling unregistered template", "name", name)
	}
	tmpl, err := eng.Compile(src)
	if err != nil {
		r.logger.Error("template compile failed", "name", name, "error", err)
		return nil, fmt.Errorf("compile %q: %w", name, err)
	}
	r.compiled[name] = tmpl
	return tmpl, nil
}

func (r *Registry) registerSelector(name, selector string) {
	r.mu.RLock()
	loc := r.locator
	r.mu.RUnlock()

	if loc == nil {
		r.logger.Warn("selector registration skipped", "name", name,
			"selector", selector, "error", ErrNoLocator)
		return
	}
	markup, ok := loc.InnerHTML(selector)
	if !ok {
		r.logger.Warn("selector registration skipped", "name", name,
			"selector", selector, "error", ErrNoMatch)
		return
	}
	r.setSource(name, strings.TrimSpace(markup))
}

func (r *Registry) registerCompiled(name string, value any) {
	var tmpl Template
	switch v := value.(type) {
	case Template:
		tmpl = v
	case func(map[string]any) (string, error):
		tmpl = TemplateFunc(v)
	default:
		r.logger.Warn("compiled registration skipped", "name", name,
			"error", fmt.Errorf("%w: %T", ErrBadCompiled, value))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiled[name] = tmpl
}

func (r *Registry) setSource(name, src string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = src
}

func (r *Registry) jointFor(cfg registerConfig) string {
	if cfg.jointSet {
		return cfg.joint
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.joint
}
