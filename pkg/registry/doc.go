// Package registry implements a named template store with lazy,
// compile-once caching. Raw sources are registered by name, compiled on
// first render through a pluggable Engine, and the compiled form is reused
// until the name is removed. The package keeps the core free of any markup
// or engine dependency: document lookup and DOM wrapping arrive as injected
// Locator and Wrapper capabilities, and engines plug in behind a one-method
// compile contract.
package registry
