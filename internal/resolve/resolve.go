// Package resolve turns the attribute map of a component or writer spec
// into concrete values. Literals pass through as native Go values, variable
// references are looked up in the run's variable context, and map-shaped
// attributes are resolved entry by entry so references may sit at any
// depth.
package resolve

import (
	"fmt"

	"github.com/vk/xreportgo/internal/ctyconv"
	"github.com/vk/xreportgo/internal/schema"
	"github.com/vk/xreportgo/internal/vars"
)

// UnresolvedVariableError reports a reference to a name the variable
// context does not hold. It names both the attribute and the missing
// variable, and is scoped to the enclosing component or writer only.
type UnresolvedVariableError struct {
	Attr string
	Var  string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("attribute %q references unbound variable %q", e.Attr, e.Var)
}

// Attrs resolves every attribute of spec against vc. Resolution is
// deterministic: the context is read-only during a run, so resolving the
// same map twice yields identical values.
func Attrs(spec map[string]schema.AttrValue, vc *vars.Context) (AttrSet, error) {
	out := make(AttrSet, len(spec))
	for name, av := range spec {
		if name == schema.CommentKey {
			continue
		}
		val, err := value(name, av, vc)
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}

func value(attr string, av schema.AttrValue, vc *vars.Context) (any, error) {
	switch av.Kind {
	case schema.AttrVarRef:
		obj, err := vc.Resolve(av.VarName)
		if err != nil {
			return nil, &UnresolvedVariableError{Attr: attr, Var: av.VarName}
		}
		return obj, nil
	case schema.AttrMap:
		out := make(map[string]any, len(av.Map))
		for k, nested := range av.Map {
			val, err := value(attr+"."+k, nested, vc)
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	default:
		return ctyconv.ToNative(av.Literal)
	}
}
