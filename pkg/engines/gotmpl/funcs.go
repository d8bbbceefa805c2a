package gotmpl

import (
	"strings"
	"text/template"
)

// defaultFuncs returns the built-in helper functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"trim":    strings.TrimSpace,
		"join":    strings.Join,
		"split":   strings.Split,
		"replace": strings.ReplaceAll,
		"default": defaultValue,
	}
}

// defaultValue substitutes fallback when the value is nil or an empty
// string. Other zero values pass through unchanged.
func defaultValue(fallback, val any) any {
	if val == nil {
		return fallback
	}
	if s, ok := val.(string); ok && s == "" {
		return fallback
	}
	return val
}
