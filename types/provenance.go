package types

import "strings"

// Provenance identifies the lexical home of a function or accessor:
// top-level in a module, or nested inside a nominal type.
type Provenance interface {
	// Module returns the defining module name.
	Module() string
	Equal(Provenance) bool
	String() string

	provenance()
}

// TopLevel places an entity directly in a module.
type TopLevel struct {
	ModuleName string
}

func (p *TopLevel) Module() string { return p.ModuleName }
func (*TopLevel) provenance()      {}

func (p *TopLevel) Equal(o Provenance) bool {
	other, ok := o.(*TopLevel)
	return ok && p.ModuleName == other.ModuleName
}

func (p *TopLevel) String() string { return p.ModuleName }

// Instance places an entity inside a nominal type, identified by the
// path of enclosing type names from the module outward.
type Instance struct {
	ModuleName string
	TypePath   []string
}

func (p *Instance) Module() string { return p.ModuleName }
func (*Instance) provenance()      {}

func (p *Instance) Equal(o Provenance) bool {
	other, ok := o.(*Instance)
	if !ok || p.ModuleName != other.ModuleName || len(p.TypePath) != len(other.TypePath) {
		return false
	}
	for i := range p.TypePath {
		if p.TypePath[i] != other.TypePath[i] {
			return false
		}
	}
	return true
}

func (p *Instance) String() string {
	return p.ModuleName + "." + strings.Join(p.TypePath, ".")
}

// ProvenanceOf splits a dotted full type name into an Instance
// provenance rooted at its first segment, or a TopLevel provenance when
// the name has a single segment.
func ProvenanceOf(fullName string) Provenance {
	parts := strings.Split(fullName, ".")
	if len(parts) <= 1 {
		return &TopLevel{ModuleName: fullName}
	}
	return &Instance{ModuleName: parts[0], TypePath: parts[1:]}
}
