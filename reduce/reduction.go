// Package reduce converts demangled node trees into typed descriptions
// of the Swift entities they encode. Reduction never panics and never
// returns nil: structural mismatches come back as ErrorReduction values
// carrying the originating symbol.
package reduce

import (
	"fmt"

	"github.com/appsworld/swiftbind/types"
)

// Severity classifies reduction failures. Low marks a local shape
// mismatch or an unhandled node kind; High marks a failure inside a
// structural form that voids the whole symbol (functions, allocators,
// protocol conformances, metadata accessors).
type Severity int

const (
	SeverityLow Severity = iota
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Reduction is the closed set of reduction outcomes. Every variant
// carries the mangled symbol it was reduced from.
type Reduction interface {
	// MangledSymbol returns the originating symbol string.
	MangledSymbol() string

	reduction()
}

// TypeSpecReduction carries a recovered type shape.
type TypeSpecReduction struct {
	Symbol string
	Spec   types.TypeSpec
}

func (r *TypeSpecReduction) MangledSymbol() string { return r.Symbol }
func (*TypeSpecReduction) reduction()              {}

// FunctionReduction carries a recovered function signature.
type FunctionReduction struct {
	Symbol   string
	Function *types.Function
}

func (r *FunctionReduction) MangledSymbol() string { return r.Symbol }
func (*FunctionReduction) reduction()              {}

// ProvenanceReduction carries the lexical home of an entity.
type ProvenanceReduction struct {
	Symbol     string
	Provenance types.Provenance
}

func (r *ProvenanceReduction) MangledSymbol() string { return r.Symbol }
func (*ProvenanceReduction) reduction()              {}

// MetadataAccessorReduction identifies a type metadata access function
// for a named type.
type MetadataAccessorReduction struct {
	Symbol       string
	AccessedType *types.NamedType
}

func (r *MetadataAccessorReduction) MangledSymbol() string { return r.Symbol }
func (*MetadataAccessorReduction) reduction()              {}

// DispatchThunkReduction wraps a function reduction for a dispatch
// thunk entry point.
type DispatchThunkReduction struct {
	Symbol   string
	Function *types.Function
}

func (r *DispatchThunkReduction) MangledSymbol() string { return r.Symbol }
func (*DispatchThunkReduction) reduction()              {}

// WitnessTableReduction identifies the protocol witness table binding an
// implementing type to a protocol.
type WitnessTableReduction struct {
	Symbol           string
	ImplementingType *types.NamedType
	ProtocolType     *types.NamedType
}

func (r *WitnessTableReduction) MangledSymbol() string { return r.Symbol }
func (*WitnessTableReduction) reduction()              {}

// ConformanceDescriptorReduction identifies a protocol conformance
// descriptor scoped to its defining module.
type ConformanceDescriptorReduction struct {
	Symbol           string
	ImplementingType *types.NamedType
	ProtocolType     *types.NamedType
	Module           string
}

func (r *ConformanceDescriptorReduction) MangledSymbol() string { return r.Symbol }
func (*ConformanceDescriptorReduction) reduction()              {}

// ErrorReduction reports a failed reduction with its severity.
type ErrorReduction struct {
	Symbol   string
	Message  string
	Severity Severity
}

func (r *ErrorReduction) MangledSymbol() string { return r.Symbol }
func (*ErrorReduction) reduction()              {}

func (r *ErrorReduction) Error() string {
	return fmt.Sprintf("%s severity: %s", r.Severity, r.Message)
}

func errorf(symbol string, severity Severity, format string, args ...any) *ErrorReduction {
	return &ErrorReduction{
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
	}
}

// escalate raises an error reduction to high severity; any other
// reduction passes through unchanged.
func escalate(r Reduction) Reduction {
	if err, ok := r.(*ErrorReduction); ok && err.Severity != SeverityHigh {
		return &ErrorReduction{Symbol: err.Symbol, Message: err.Message, Severity: SeverityHigh}
	}
	return r
}
