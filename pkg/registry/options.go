package registry

import "log/slog"

// Option configures a Registry during construction.
type Option func(*Registry)

// WithEngine sets the template engine used to compile sources.
func WithEngine(e Engine) Option {
	return func(r *Registry) {
		r.engine = e
	}
}

// WithJoint sets the separator used when coercing sequence-valued sources.
// The default is a newline.
func WithJoint(sep string) Option {
	return func(r *Registry) {
		r.joint = sep
	}
}

// WithLogger sets the logger used for registration and render diagnostics.
// A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLocator sets the document locator backing selector registration.
func WithLocator(l Locator) Option {
	return func(r *Registry) {
		r.locator = l
	}
}

// WithWrapper sets the wrapper backing RenderWrapped.
func WithWrapper(w Wrapper) Option {
	return func(r *Registry) {
		r.wrapper = w
	}
}

type registerConfig struct {
	query    string
	joint    string
	jointSet bool
	compiled bool
}

// RegisterOption adjusts how a single Register or RegisterAll call stores
// its values.
type RegisterOption func(*registerConfig)

// Query registers the template from a host document instead of the given
// value: the selector is resolved through the configured Locator and the
// matched element's inner markup becomes the source.
func Query(selector string) RegisterOption {
	return func(c *registerConfig) {
		c.query = selector
	}
}

// Compiled stores the value directly in the compiled cache, bypassing
// source coercion and the engine. The value must satisfy Template or be a
// func(map[string]any) (string, error).
func Compiled() RegisterOption {
	return func(c *registerConfig) {
		c.compiled = true
	}
}

// Joint overrides the sequence separator for this call only. An empty
// string is a valid separator.
func Joint(sep string) RegisterOption {
	return func(c *registerConfig) {
		c.joint = sep
		c.jointSet = true
	}
}
