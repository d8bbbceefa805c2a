package registry

import (
	"fmt"
	"strings"
)

// DefaultJoint separates sequence elements when no other joint is
// configured.
const DefaultJoint = "\n"

// coerceSource normalizes a registered value into a template source string.
//
// Zero-argument functions are invoked once to obtain the value; the result
// is not re-invoked even if it is itself callable. Strings are trimmed,
// sequences are joined with the joint separator and then trimmed. Anything
// else fails with ErrBadSource and an empty source.
func coerceSource(value any, joint string) (string, error) {
	value = callOnce(value)

	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case []byte:
		return strings.TrimSpace(string(v)), nil
	case []string:
		return strings.TrimSpace(strings.Join(v, joint)), nil
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return "", fmt.Errorf("%w: sequence element %d is %T", ErrBadSource, i, elem)
			}
			parts[i] = s
		}
		return strings.TrimSpace(strings.Join(parts, joint)), nil
	case fmt.Stringer:
		return strings.TrimSpace(v.String()), nil
	case nil:
		return "", fmt.Errorf("%w: nil", ErrBadSource)
	default:
		return "", fmt.Errorf("%w: %T", ErrBadSource, value)
	}
}

// callOnce unwraps a zero-argument source provider a single level.
func callOnce(value any) any {
	switch fn := value.(type) {
	case func() string:
		return fn()
	case func() []string:
		return fn()
	case func() any:
		return fn()
	}
	return value
}
