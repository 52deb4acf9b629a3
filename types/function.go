package types

import "strings"

// Function is a recovered Swift function signature: name, provenance,
// parameter tuple, generic parameters and return type.
type Function struct {
	Name       string
	Provenance Provenance
	Parameters *TupleType
	TypeParams []TypeSpec
	Return     TypeSpec
}

// Equal reports structural equality over every field, pairwise and in
// order for the parameter and generic parameter sequences.
func (f *Function) Equal(o *Function) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Name == o.Name &&
		f.Provenance.Equal(o.Provenance) &&
		f.Parameters.Equal(o.Parameters) &&
		equalSpecs(f.TypeParams, o.TypeParams) &&
		f.Return.Equal(o.Return)
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString(f.Provenance.String())
	sb.WriteByte('.')
	sb.WriteString(f.Name)
	if len(f.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, param := range f.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(param.String())
		}
		sb.WriteByte('>')
	}
	sb.WriteString(f.Parameters.String())
	sb.WriteString(" -> ")
	sb.WriteString(f.Return.String())
	return sb.String()
}
