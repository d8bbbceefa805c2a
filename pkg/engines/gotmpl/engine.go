// Package gotmpl adapts the standard library text/template package to the
// registry engine contract. Each Compile call parses one standalone
// template; helper functions and parse options are fixed on the engine at
// construction time.
package gotmpl

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/goliatone/go-tplreg/pkg/registry"
)

// Sentinel errors wrapped by Compile and render failures.
var (
	ErrParse   = errors.New("template parse failed")
	ErrExecute = errors.New("template execute failed")
)

// Option configures an Engine during construction.
type Option func(*Engine)

// WithFuncs merges custom helper functions over the defaults. Later entries
// win on name collisions.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			e.funcs[name] = fn
		}
	}
}

// WithStrict makes rendering fail when a template references a key missing
// from the data map, instead of printing "<no value>".
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithDelims overrides the default {{ }} action delimiters.
func WithDelims(left, right string) Option {
	return func(e *Engine) {
		e.left, e.right = left, right
	}
}

// Engine compiles Go text templates. The zero value is not usable; create
// engines with New.
type Engine struct {
	funcs  template.FuncMap
	strict bool
	left   string
	right  string
}

var _ registry.Engine = (*Engine)(nil)

// New creates an engine with the default helper functions.
func New(opts ...Option) *Engine {
	e := &Engine{funcs: defaultFuncs()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// AddFunc registers a helper function under name. Templates compiled before
// the call keep the function set they were parsed with.
func (e *Engine) AddFunc(name string, fn any) {
	e.funcs[name] = fn
}

// Compile parses source into a reusable template. The returned template is
// safe for concurrent renders.
func (e *Engine) Compile(source string) (registry.Template, error) {
	tmpl := template.New("template").Funcs(e.funcs)
	if e.left != "" || e.right != "" {
		tmpl = tmpl.Delims(e.left, e.right)
	}
	if e.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	parsed, err := tmpl.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return registry.TemplateFunc(func(data map[string]any) (string, error) {
		var buf strings.Builder
		if execErr := parsed.Execute(&buf, data); execErr != nil {
			return "", fmt.Errorf("%w: %w", ErrExecute, execErr)
		}
		return buf.String(), nil
	}), nil
}
