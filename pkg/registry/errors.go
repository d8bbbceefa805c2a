package registry

import "errors"

// Sentinel errors returned by registry operations. Callers can match them
// with errors.Is; rendering errors wrap these with the template name.
var (
	// ErrNoEngine is returned when a render needs to compile a source but
	// no engine has been configured.
	ErrNoEngine = errors.New("no engine configured")

	// ErrNoWrapper is returned by RenderWrapped when no wrapper has been
	// configured.
	ErrNoWrapper = errors.New("no wrapper configured")

	// ErrNoLocator is reported when a selector registration runs without a
	// configured locator.
	ErrNoLocator = errors.New("no locator configured")

	// ErrNoMatch is reported when a selector registration finds no element.
	ErrNoMatch = errors.New("selector matched no element")

	// ErrBadSource is reported when a registered value cannot be coerced to
	// a template source string.
	ErrBadSource = errors.New("unsupported template source type")

	// ErrBadCompiled is reported when a value registered as precompiled
	// does not satisfy the Template contract.
	ErrBadCompiled = errors.New("value is not a compiled template")
)
