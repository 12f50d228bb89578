package schema

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// VarRefPrefix marks a string attribute value as a reference into the
// run's variable context rather than a literal.
const VarRefPrefix = "var:"

// CommentKey is a documentation-only attribute name that loaders drop.
const CommentKey = "_comment"

// AttrKind discriminates the arms of the AttrValue union.
type AttrKind int

const (
	// AttrLiteral is a plain value carried verbatim into resolution.
	AttrLiteral AttrKind = iota
	// AttrVarRef defers to a lookup in the variable context.
	AttrVarRef
	// AttrMap is a structured parameter whose entries are resolved
	// independently, so references may appear at any depth.
	AttrMap
)

// AttrValue is the tagged union of attribute values: a literal cty value, a
// variable reference, or a mapping of further AttrValues.
type AttrValue struct {
	Kind    AttrKind
	Literal cty.Value
	VarName string
	Map     map[string]AttrValue
}

// Lit wraps a cty value as a literal attribute value.
func Lit(v cty.Value) AttrValue {
	return AttrValue{Kind: AttrLiteral, Literal: v}
}

// Ref builds a variable reference to the given name.
func Ref(name string) AttrValue {
	return AttrValue{Kind: AttrVarRef, VarName: name}
}

// MapVal wraps a mapping of attribute values.
func MapVal(m map[string]AttrValue) AttrValue {
	return AttrValue{Kind: AttrMap, Map: m}
}

// IsRef reports whether the value is a variable reference.
func (a AttrValue) IsRef() bool { return a.Kind == AttrVarRef }

// FromCty classifies an already-decoded cty value into the AttrValue union.
// Strings carrying the VarRefPrefix become references; object and map
// values are walked entry by entry so nested references survive; everything
// else is a literal.
func FromCty(v cty.Value) AttrValue {
	if v.IsNull() {
		return Lit(v)
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		s := v.AsString()
		if strings.HasPrefix(s, VarRefPrefix) {
			return Ref(strings.TrimPrefix(s, VarRefPrefix))
		}
		return Lit(v)
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]AttrValue)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			name := k.AsString()
			if name == CommentKey {
				continue
			}
			m[name] = FromCty(ev)
		}
		return MapVal(m)
	default:
		return Lit(v)
	}
}
