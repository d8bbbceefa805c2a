// Package pongo adapts the pongo2 templating engine to the registry engine
// contract, giving registered sources Django-style syntax with filters and
// template-set globals.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tplreg/pkg/registry"
)

// FilterFunc is the engine-agnostic filter shape accepted by WithFilter.
// The param value is nil when the template applies the filter without an
// argument.
type FilterFunc func(in any, param any) (any, error)

// Option configures the adapter before construction.
type Option func(*config)

type config struct {
	globals map[string]any
	filters map[string]FilterFunc
}

// WithGlobals seeds context values available to every compiled template.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithFilter registers a template filter when the engine is constructed.
// Filter names are global to pongo2, so a name that already exists is an
// error at New.
func WithFilter(name string, fn FilterFunc) Option {
	return func(cfg *config) {
		if strings.TrimSpace(name) == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]FilterFunc)
		}
		cfg.filters[strings.TrimSpace(name)] = fn
	}
}

// Engine compiles Django-style templates through a dedicated pongo2
// template set. Globals and filters are fixed at construction, which keeps
// compiled templates safe for concurrent renders.
type Engine struct {
	set *pongo2.TemplateSet
}

var _ registry.Engine = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(opts ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	// pongo2 requires at least one loader even though FromString never
	// reads from it; an empty base dir keeps the loader inert.
	loader := pongo2.MustNewLocalFileSystemLoader("")
	e := &Engine{set: pongo2.NewSet("registry", loader)}
	registerDefaultFilters()

	for name, fn := range cfg.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register filter %q: %w", name, err)
		}
	}

	if len(cfg.globals) > 0 {
		ctx, err := convertContext(cfg.globals)
		if err != nil {
			return nil, fmt.Errorf("pongo: apply globals: %w", err)
		}
		if e.set.Globals == nil {
			e.set.Globals = make(pongo2.Context)
		}
		e.set.Globals.Update(ctx)
	}

	return e, nil
}

// Compile parses source into a reusable template.
func (e *Engine) Compile(source string) (registry.Template, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("pongo: engine is nil")
	}
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("pongo: parse template: %w", err)
	}
	return &compiledTemplate{tmpl: tmpl}, nil
}

type compiledTemplate struct {
	tmpl *pongo2.Template
}

func (c *compiledTemplate) Render(data map[string]any) (string, error) {
	ctx, err := convertContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: convert data: %w", err)
	}

	var buf bytes.Buffer
	if err := c.tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("pongo: execute template: %w", err)
	}
	return buf.String(), nil
}

func registerFilter(name string, fn FilterFunc) error {
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// convertContext normalizes render data into a pongo2 context. Primitive
// values pass through, nested maps and slices convert recursively, and
// anything else takes a JSON round trip so struct data renders by field
// name.
func convertContext(data map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(data))
	for key, value := range data {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return v, nil
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	case []string:
		return v, nil
	default:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		switch decoded := raw.(type) {
		case map[string]any:
			return convertMap(decoded)
		case []any:
			return convertSlice(decoded)
		default:
			return decoded, nil
		}
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
