// Package types holds the recovered shapes of Swift entities: type
// specifications, provenance and function signatures. Values are built
// by the reducer and are not mutated after a reduction completes.
package types

import (
	"sort"
	"strings"
)

// TypeAttributes are the positional attributes a parent reducer attaches
// to an element after construction: an external label and the variadic
// flag.
type TypeAttributes struct {
	Label    string
	Variadic bool
}

func (a *TypeAttributes) equal(o *TypeAttributes) bool {
	return a.Label == o.Label && a.Variadic == o.Variadic
}

// TypeSpec is the closed set of recovered Swift type shapes: NamedType,
// TupleType and ClosureType.
type TypeSpec interface {
	// Attributes exposes the element attributes for post-construction
	// labeling by a parent reducer.
	Attributes() *TypeAttributes
	// Equal reports structural equality, including attributes and
	// generic parameters, pairwise and in order.
	Equal(TypeSpec) bool
	String() string

	typeSpec()
}

// NamedType is a nominal or otherwise named type, optionally carrying
// bound generic parameters.
type NamedType struct {
	TypeAttributes
	FullName   string
	TypeParams []TypeSpec
}

func (t *NamedType) Attributes() *TypeAttributes { return &t.TypeAttributes }
func (*NamedType) typeSpec()                     {}

func (t *NamedType) Equal(o TypeSpec) bool {
	other, ok := o.(*NamedType)
	if !ok {
		return false
	}
	return t.FullName == other.FullName &&
		t.TypeAttributes.equal(&other.TypeAttributes) &&
		equalSpecs(t.TypeParams, other.TypeParams)
}

func (t *NamedType) String() string {
	var sb strings.Builder
	writeAttrs(&sb, &t.TypeAttributes)
	sb.WriteString(t.FullName)
	if len(t.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, param := range t.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(param.String())
		}
		sb.WriteByte('>')
	}
	if t.Variadic {
		sb.WriteString("...")
	}
	return sb.String()
}

// TupleType is an ordered sequence of element types. The zero-element
// tuple is the canonical Void.
type TupleType struct {
	TypeAttributes
	Elements []TypeSpec
}

func (t *TupleType) Attributes() *TypeAttributes { return &t.TypeAttributes }
func (*TupleType) typeSpec()                     {}

func (t *TupleType) Equal(o TypeSpec) bool {
	other, ok := o.(*TupleType)
	if !ok {
		return false
	}
	return t.TypeAttributes.equal(&other.TypeAttributes) &&
		equalSpecs(t.Elements, other.Elements)
}

func (t *TupleType) String() string {
	var sb strings.Builder
	writeAttrs(&sb, &t.TypeAttributes)
	sb.WriteByte('(')
	for i, elem := range t.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// ClosureType is a function type. Arguments is always a TupleType, even
// for zero or one parameter.
type ClosureType struct {
	TypeAttributes
	Arguments  *TupleType
	Return     TypeSpec
	Throws     bool
	Attrs      map[string]bool
	TypeParams []TypeSpec
}

// AttrEscaping marks a closure whose value may outlive its callee.
const AttrEscaping = "escaping"

func (t *ClosureType) Attributes() *TypeAttributes { return &t.TypeAttributes }
func (*ClosureType) typeSpec()                     {}

// HasAttr reports whether the closure carries the named attribute.
func (t *ClosureType) HasAttr(name string) bool {
	return t.Attrs[name]
}

func (t *ClosureType) Equal(o TypeSpec) bool {
	other, ok := o.(*ClosureType)
	if !ok {
		return false
	}
	if t.Throws != other.Throws ||
		!t.TypeAttributes.equal(&other.TypeAttributes) ||
		!t.Arguments.Equal(other.Arguments) ||
		!t.Return.Equal(other.Return) ||
		!equalSpecs(t.TypeParams, other.TypeParams) ||
		len(t.Attrs) != len(other.Attrs) {
		return false
	}
	for name, set := range t.Attrs {
		if other.Attrs[name] != set {
			return false
		}
	}
	return true
}

func (t *ClosureType) String() string {
	var sb strings.Builder
	writeAttrs(&sb, &t.TypeAttributes)
	if len(t.Attrs) > 0 {
		names := make([]string, 0, len(t.Attrs))
		for name, set := range t.Attrs {
			if set {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteByte('@')
			sb.WriteString(name)
			sb.WriteByte(' ')
		}
	}
	sb.WriteString(t.Arguments.String())
	if t.Throws {
		sb.WriteString(" throws")
	}
	sb.WriteString(" -> ")
	sb.WriteString(t.Return.String())
	return sb.String()
}

func writeAttrs(sb *strings.Builder, attrs *TypeAttributes) {
	if attrs.Label != "" {
		sb.WriteString(attrs.Label)
		sb.WriteString(": ")
	}
}

func equalSpecs(a, b []TypeSpec) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
