package resolve

import "fmt"

// AttrSet is a fully-resolved attribute map. Literal scalars appear as
// string/float64/bool, literal collections as []any/map[string]any, and
// resolved variable references as whatever Go object the caller bound.
type AttrSet map[string]any

// Has reports whether the attribute is present.
func (a AttrSet) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Any returns the raw value of a required attribute.
func (a AttrSet) Any(name string) (any, error) {
	v, ok := a[name]
	if !ok {
		return nil, fmt.Errorf("required attribute %q is missing", name)
	}
	return v, nil
}

// String returns a required string attribute.
func (a AttrSet) String(name string) (string, error) {
	v, err := a.Any(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("attribute %q must be a string, got %T", name, v)
	}
	return s, nil
}

// StringOr returns an optional string attribute, falling back to def.
func (a AttrSet) StringOr(name, def string) (string, error) {
	if !a.Has(name) {
		return def, nil
	}
	return a.String(name)
}

// Int returns a required integer attribute. JSON and YAML numbers arrive as
// float64; truncation is rejected.
func (a AttrSet) Int(name string) (int, error) {
	v, err := a.Any(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("attribute %q must be an integer, got %v", name, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("attribute %q must be a number, got %T", name, v)
	}
}

// IntOr returns an optional integer attribute, falling back to def.
func (a AttrSet) IntOr(name string, def int) (int, error) {
	if !a.Has(name) {
		return def, nil
	}
	return a.Int(name)
}

// Strings returns a required list-of-strings attribute. Both bound
// []string objects and literal lists decoded as []any are accepted.
func (a AttrSet) Strings(name string) ([]string, error) {
	v, err := a.Any(name)
	if err != nil {
		return nil, err
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("attribute %q element %d must be a string, got %T", name, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("attribute %q must be a list of strings, got %T", name, v)
	}
}

// Map returns an optional map-shaped attribute. Absent attributes yield an
// empty map.
func (a AttrSet) Map(name string) (map[string]any, error) {
	if !a.Has(name) {
		return map[string]any{}, nil
	}
	v := a[name]
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("attribute %q must be a mapping, got %T", name, v)
	}
	return m, nil
}
