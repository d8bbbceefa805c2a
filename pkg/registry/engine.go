package registry

// Template is a compiled template ready to render against data. Engines
// produce Templates; the registry caches them per name.
type Template interface {
	Render(data map[string]any) (string, error)
}

// TemplateFunc adapts a plain render function to the Template interface.
type TemplateFunc func(data map[string]any) (string, error)

// Render implements Template.
func (f TemplateFunc) Render(data map[string]any) (string, error) {
	return f(data)
}

// Engine compiles raw template source into an executable Template. The
// registry treats the engine as opaque: syntax, helper functions, and
// escaping are entirely the engine's business.
type Engine interface {
	Compile(source string) (Template, error)
}

// CompileFunc adapts a compile function to the Engine interface.
type CompileFunc func(source string) (Template, error)

// Compile implements Engine.
func (f CompileFunc) Compile(source string) (Template, error) {
	return f(source)
}

// Locator resolves a selector to the inner markup of a matching element in
// some host document. It backs selector-based registration; implementations
// live outside the registry so the core carries no markup dependency.
type Locator interface {
	// InnerHTML returns the inner markup of the first element matching the
	// selector, or ok=false when nothing matches.
	InnerHTML(selector string) (markup string, ok bool)
}

// Wrapper converts rendered markup into a host-specific document value,
// backing RenderWrapped.
type Wrapper interface {
	Wrap(markup string) (any, error)
}

// MarkupParser is an optional refinement of Wrapper. When a configured
// wrapper implements it, RenderWrapped parses the markup into nodes instead
// of wrapping the raw string.
type MarkupParser interface {
	ParseMarkup(markup string) (any, error)
}
