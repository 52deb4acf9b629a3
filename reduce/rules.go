package reduce

import (
	"fmt"

	"github.com/appsworld/swiftbind/demangle"
	"github.com/appsworld/swiftbind/types"
)

// rules is the ordered match table. It is built once at package
// initialization and never mutated. Assignment happens in init because
// the reducer functions recurse through Reduce, which reads the table.
var rules []rule

func init() {
	rules = []rule{
		{
			kinds: []demangle.NodeKind{
				demangle.KindGlobal,
				demangle.KindType,
				demangle.KindArgumentTuple,
				demangle.KindReturnType,
			},
			reduce: reduceUnwrap,
		},
		{
			kinds: []demangle.NodeKind{
				demangle.KindClass,
				demangle.KindStructure,
				demangle.KindEnum,
				demangle.KindProtocol,
			},
			reduce: reduceNominal,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindIdentifier},
			reduce: reduceIdentifier,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindModule},
			reduce: reduceModule,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindTuple},
			reduce: reduceTuple,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindTupleElement},
			reduce: reduceTupleElement,
		},
		{
			kinds: []demangle.NodeKind{
				demangle.KindFunctionType,
				demangle.KindNoEscapeFunctionType,
			},
			reduce: reduceFunctionType,
		},
		{
			kinds: []demangle.NodeKind{demangle.KindFunction},
			children: []childRule{
				{index: 1, kind: demangle.KindIdentifier},
			},
			reduce: reduceFunction,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindAllocator},
			reduce: reduceAllocator,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindDispatchThunk},
			reduce: reduceDispatchThunk,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindTypeMetadataAccessFunction},
			reduce: reduceMetadataAccessor,
		},
		{
			kinds: []demangle.NodeKind{
				demangle.KindBoundGenericClass,
				demangle.KindBoundGenericStructure,
				demangle.KindBoundGenericEnum,
			},
			reduce: reduceBoundGeneric,
		},
		{
			kinds: []demangle.NodeKind{demangle.KindProtocolWitnessTable},
			children: []childRule{
				{index: 0, kind: demangle.KindProtocolConformance},
			},
			reduce: reduceWitnessTable,
		},
		{
			kinds: []demangle.NodeKind{demangle.KindProtocolConformanceDescriptor},
			children: []childRule{
				{index: 0, kind: demangle.KindProtocolConformance},
			},
			reduce: reduceConformanceDescriptor,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindDependentGenericParamType},
			reduce: reduceDependentGenericParam,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindDependentMemberType},
			reduce: reduceDependentMember,
		},
		{
			kinds:  []demangle.NodeKind{demangle.KindDependentGenericType},
			reduce: reduceDependentGenericType,
		},
	}
}

func reduceUnwrap(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) == 0 {
		return errorf(symbol, SeverityLow,
			"expected a single child under %s but found none in symbol %s", n.Kind, symbol)
	}
	return Reduce(n.Children[0], symbol)
}

func reduceIdentifier(n *demangle.Node, symbol string) Reduction {
	if n.Text == "" {
		return errorf(symbol, SeverityLow,
			"expected identifier text but found an empty identifier in symbol %s", symbol)
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: &types.NamedType{FullName: n.Text}}
}

func reduceModule(n *demangle.Node, symbol string) Reduction {
	return &ProvenanceReduction{
		Symbol:     symbol,
		Provenance: &types.TopLevel{ModuleName: n.Text},
	}
}

func reduceNominal(n *demangle.Node, symbol string) Reduction {
	name, errRed := nominalName(n, symbol)
	if errRed != nil {
		return errRed
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: &types.NamedType{FullName: name}}
}

// nominalName recovers the dotted full name of a nominal node by walking
// nested nominal contexts depth-first down to the module.
func nominalName(n *demangle.Node, symbol string) (string, *ErrorReduction) {
	if len(n.Children) < 2 {
		return "", errorf(symbol, SeverityLow,
			"expected context and identifier under %s but found %d children in symbol %s",
			n.Kind, len(n.Children), symbol)
	}
	id := n.Children[1]
	if id.Kind != demangle.KindIdentifier {
		return "", errorf(symbol, SeverityLow,
			"expected %s at child 1 of %s but found %s in symbol %s",
			demangle.KindIdentifier, n.Kind, id.Kind, symbol)
	}
	ctx := n.Children[0]
	switch {
	case ctx.Kind == demangle.KindModule:
		return ctx.Text + "." + id.Text, nil
	case ctx.IsNominal():
		parent, errRed := nominalName(ctx, symbol)
		if errRed != nil {
			return "", errRed
		}
		return parent + "." + id.Text, nil
	default:
		return "", errorf(symbol, SeverityLow,
			"expected a module or nominal context under %s but found %s in symbol %s",
			n.Kind, ctx.Kind, symbol)
	}
}

func reduceTuple(n *demangle.Node, symbol string) Reduction {
	tuple := &types.TupleType{}
	for i, child := range n.Children {
		switch red := Reduce(child, symbol).(type) {
		case *TypeSpecReduction:
			tuple.Elements = append(tuple.Elements, red.Spec)
		case *ErrorReduction:
			return red
		default:
			return errorf(symbol, SeverityLow,
				"expected a type spec for tuple element %d but found %s in symbol %s",
				i, reductionName(red), symbol)
		}
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: tuple}
}

func reduceTupleElement(n *demangle.Node, symbol string) Reduction {
	idx := 0
	variadic := false
	if idx < len(n.Children) && n.Children[idx].Kind == demangle.KindVariadicMarker {
		variadic = true
		idx++
	}
	label := ""
	if idx < len(n.Children) && n.Children[idx].Kind == demangle.KindTupleElementName {
		label = n.Children[idx].Text
		idx++
	}
	if idx >= len(n.Children) {
		return errorf(symbol, SeverityLow,
			"expected an element type under %s but found none in symbol %s", n.Kind, symbol)
	}
	spec, errRed := reduceTypeSpecChild(n.Children[idx], symbol)
	if errRed != nil {
		return errRed
	}
	if variadic {
		// A variadic element is collected into an implicit Swift.Array
		// of the element type.
		spec.Attributes().Variadic = true
		spec = &types.NamedType{
			FullName:   "Swift.Array",
			TypeParams: []types.TypeSpec{spec},
		}
	}
	if label != "" {
		spec.Attributes().Label = label
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: spec}
}

func reduceFunctionType(n *demangle.Node, symbol string) Reduction {
	idx := 0
	throws := false
	if idx < len(n.Children) && n.Children[idx].Kind == demangle.KindThrowsAnnotation {
		throws = true
		idx++
	}
	if len(n.Children) < idx+2 {
		return errorf(symbol, SeverityLow,
			"expected argument tuple and return type under %s but found %d children in symbol %s",
			n.Kind, len(n.Children), symbol)
	}
	argSpec, errRed := reduceTypeSpecChild(n.Children[idx], symbol)
	if errRed != nil {
		return errRed
	}
	args, ok := argSpec.(*types.TupleType)
	if !ok {
		// A single bare argument still forms a one-element tuple.
		args = &types.TupleType{Elements: []types.TypeSpec{argSpec}}
	}
	ret, errRed := reduceTypeSpecChild(n.Children[idx+1], symbol)
	if errRed != nil {
		return errRed
	}
	attrs := map[string]bool{}
	if n.Kind != demangle.KindNoEscapeFunctionType {
		attrs[types.AttrEscaping] = true
	}
	closure := &types.ClosureType{
		Arguments: args,
		Return:    ret,
		Throws:    throws,
		Attrs:     attrs,
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: closure}
}

func reduceFunction(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) < 3 {
		return errorf(symbol, SeverityHigh,
			"expected provenance, identifier and type under %s but found %d children in symbol %s",
			n.Kind, len(n.Children), symbol)
	}
	prov, errRed := reduceProvenanceChild(n.Children[0], symbol)
	if errRed != nil {
		return errRed
	}
	name := n.Children[1].Text
	idx := 2
	var labels []string
	if n.Children[idx].Kind == demangle.KindLabelList {
		for _, labelNode := range n.Children[idx].Children {
			labels = append(labels, labelNode.Text)
		}
		idx++
	}
	if idx >= len(n.Children) {
		return errorf(symbol, SeverityHigh,
			"expected a function type under %s but found none in symbol %s", n.Kind, symbol)
	}
	closure, errRed := reduceClosureChild(n.Children[idx], symbol)
	if errRed != nil {
		return errRed
	}
	applyLabels(closure.Arguments, labels)
	fn := &types.Function{
		Name:       name,
		Provenance: prov,
		Parameters: closure.Arguments,
		TypeParams: closure.TypeParams,
		Return:     closure.Return,
	}
	return &FunctionReduction{Symbol: symbol, Function: fn}
}

// allocatorName is the synthesized name of the implicit allocating
// initializer entry point.
const allocatorName = "init"

func reduceAllocator(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) < 2 {
		return errorf(symbol, SeverityHigh,
			"expected provenance and type under %s but found %d children in symbol %s",
			n.Kind, len(n.Children), symbol)
	}
	prov, errRed := reduceProvenanceChild(n.Children[0], symbol)
	if errRed != nil {
		return errRed
	}
	closure, errRed := reduceClosureChild(n.Children[1], symbol)
	if errRed != nil {
		return errRed
	}
	fn := &types.Function{
		Name:       allocatorName,
		Provenance: prov,
		Parameters: closure.Arguments,
		TypeParams: closure.TypeParams,
		Return:     closure.Return,
	}
	return &FunctionReduction{Symbol: symbol, Function: fn}
}

func reduceDispatchThunk(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) == 0 {
		return errorf(symbol, SeverityHigh,
			"expected a function under %s but found no children in symbol %s", n.Kind, symbol)
	}
	switch red := Reduce(n.Children[0], symbol).(type) {
	case *FunctionReduction:
		return &DispatchThunkReduction{Symbol: symbol, Function: red.Function}
	case *ErrorReduction:
		return escalate(red)
	default:
		return errorf(symbol, SeverityHigh,
			"expected a function under %s but found %s in symbol %s",
			n.Kind, reductionName(red), symbol)
	}
}

func reduceMetadataAccessor(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) == 0 {
		return errorf(symbol, SeverityHigh,
			"expected a type under %s but found no children in symbol %s", n.Kind, symbol)
	}
	switch red := Reduce(n.Children[0], symbol).(type) {
	case *TypeSpecReduction:
		named, ok := red.Spec.(*types.NamedType)
		if !ok {
			return errorf(symbol, SeverityHigh,
				"expected a named type under %s but found %s in symbol %s",
				n.Kind, specName(red.Spec), symbol)
		}
		return &MetadataAccessorReduction{Symbol: symbol, AccessedType: named}
	case *ErrorReduction:
		return escalate(red)
	default:
		return errorf(symbol, SeverityHigh,
			"expected a type spec under %s but found %s in symbol %s",
			n.Kind, reductionName(red), symbol)
	}
}

func reduceBoundGeneric(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) < 2 {
		return errorf(symbol, SeverityLow,
			"expected base type and type list under %s but found %d children in symbol %s",
			n.Kind, len(n.Children), symbol)
	}
	var base *types.NamedType
	switch red := Reduce(n.Children[0], symbol).(type) {
	case *TypeSpecReduction:
		named, ok := red.Spec.(*types.NamedType)
		if !ok {
			return errorf(symbol, SeverityLow,
				"expected a named base type under %s but found %s in symbol %s",
				n.Kind, specName(red.Spec), symbol)
		}
		base = named
	case *ErrorReduction:
		return red
	default:
		return errorf(symbol, SeverityLow,
			"expected a type spec base under %s but found %s in symbol %s",
			n.Kind, reductionName(red), symbol)
	}
	list := n.Children[1]
	if list.Kind != demangle.KindTypeList {
		return errorf(symbol, SeverityLow,
			"expected %s at child 1 of %s but found %s in symbol %s",
			demangle.KindTypeList, n.Kind, list.Kind, symbol)
	}
	for i, arg := range list.Children {
		red, ok := Reduce(arg, symbol).(*TypeSpecReduction)
		if !ok {
			return errorf(symbol, SeverityLow,
				"cannot convert type list element %d of %s in symbol %s", i, n.Kind, symbol)
		}
		base.TypeParams = append(base.TypeParams, red.Spec)
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: base}
}

func reduceWitnessTable(n *demangle.Node, symbol string) Reduction {
	conf := n.Children[0]
	impl, proto, errRed := reduceConformancePair(conf, symbol)
	if errRed != nil {
		return errRed
	}
	return &WitnessTableReduction{
		Symbol:           symbol,
		ImplementingType: impl,
		ProtocolType:     proto,
	}
}

func reduceConformanceDescriptor(n *demangle.Node, symbol string) Reduction {
	conf := n.Children[0]
	impl, proto, errRed := reduceConformancePair(conf, symbol)
	if errRed != nil {
		return errRed
	}
	if len(conf.Children) < 3 {
		return errorf(symbol, SeverityHigh,
			"expected a module under %s but found %d children in symbol %s",
			conf.Kind, len(conf.Children), symbol)
	}
	switch red := Reduce(conf.Children[2], symbol).(type) {
	case *ProvenanceReduction:
		top, ok := red.Provenance.(*types.TopLevel)
		if !ok {
			return errorf(symbol, SeverityHigh,
				"expected a top-level provenance under %s but found a nested one in symbol %s",
				conf.Kind, symbol)
		}
		return &ConformanceDescriptorReduction{
			Symbol:           symbol,
			ImplementingType: impl,
			ProtocolType:     proto,
			Module:           top.ModuleName,
		}
	case *ErrorReduction:
		return escalate(red)
	default:
		return errorf(symbol, SeverityHigh,
			"expected a provenance under %s but found %s in symbol %s",
			conf.Kind, reductionName(red), symbol)
	}
}

func reduceConformancePair(conf *demangle.Node, symbol string) (impl, proto *types.NamedType, errRed *ErrorReduction) {
	if len(conf.Children) < 2 {
		return nil, nil, errorf(symbol, SeverityHigh,
			"expected implementing and protocol types under %s but found %d children in symbol %s",
			conf.Kind, len(conf.Children), symbol)
	}
	impl, errRed = reduceNamedChild(conf.Children[0], symbol)
	if errRed != nil {
		return nil, nil, errRed
	}
	proto, errRed = reduceNamedChild(conf.Children[1], symbol)
	if errRed != nil {
		return nil, nil, errRed
	}
	return impl, proto, nil
}

func reduceDependentGenericParam(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) < 2 ||
		n.Children[0].Kind != demangle.KindIndex ||
		n.Children[1].Kind != demangle.KindIndex {
		return errorf(symbol, SeverityLow,
			"expected depth and index children under %s in symbol %s", n.Kind, symbol)
	}
	name := genericParamName(n.Children[0].Index, n.Children[1].Index)
	return &TypeSpecReduction{Symbol: symbol, Spec: &types.NamedType{FullName: name}}
}

func genericParamName(depth, index int) string {
	return fmt.Sprintf("T_%d_%d", depth, index)
}

func reduceDependentMember(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) == 0 {
		return errorf(symbol, SeverityLow,
			"expected a base type under %s but found no children in symbol %s", n.Kind, symbol)
	}
	spec, errRed := reduceTypeSpecChild(n.Children[0], symbol)
	if errRed != nil {
		return errRed
	}
	named, ok := spec.(*types.NamedType)
	if !ok {
		return errorf(symbol, SeverityLow,
			"expected a named base type under %s but found %s in symbol %s",
			n.Kind, specName(spec), symbol)
	}
	if len(n.Children) >= 2 {
		nameNode := n.Children[1]
		switch nameNode.Kind {
		case demangle.KindDependentAssociatedTypeRef, demangle.KindIdentifier:
			named.FullName += "." + nameNode.Text
		default:
			return errorf(symbol, SeverityLow,
				"expected an associated type name under %s but found %s in symbol %s",
				n.Kind, nameNode.Kind, symbol)
		}
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: named}
}

func reduceDependentGenericType(n *demangle.Node, symbol string) Reduction {
	if len(n.Children) < 2 {
		return errorf(symbol, SeverityLow,
			"expected generic signature and type under %s but found %d children in symbol %s",
			n.Kind, len(n.Children), symbol)
	}
	sig := n.Children[0]
	if sig.Kind != demangle.KindDependentGenericSignature {
		return errorf(symbol, SeverityLow,
			"expected %s at child 0 of %s but found %s in symbol %s",
			demangle.KindDependentGenericSignature, n.Kind, sig.Kind, symbol)
	}
	if len(sig.Children) == 0 || sig.Children[0].Kind != demangle.KindDependentGenericParamCount {
		return errorf(symbol, SeverityLow,
			"expected %s under %s in symbol %s",
			demangle.KindDependentGenericParamCount, sig.Kind, symbol)
	}
	spec, errRed := reduceTypeSpecChild(n.Children[1], symbol)
	if errRed != nil {
		return errRed
	}
	count := sig.Children[0].Index
	params := make([]types.TypeSpec, 0, count)
	for i := 0; i < count; i++ {
		params = append(params, &types.NamedType{FullName: genericParamName(0, i)})
	}
	switch embedded := spec.(type) {
	case *types.NamedType:
		embedded.TypeParams = append(embedded.TypeParams, params...)
	case *types.ClosureType:
		embedded.TypeParams = append(embedded.TypeParams, params...)
	default:
		return errorf(symbol, SeverityLow,
			"cannot attach generic parameters to %s in symbol %s", specName(spec), symbol)
	}
	return &TypeSpecReduction{Symbol: symbol, Spec: spec}
}

// reduceTypeSpecChild reduces a child that must yield a type spec,
// propagating child errors unchanged.
func reduceTypeSpecChild(n *demangle.Node, symbol string) (types.TypeSpec, *ErrorReduction) {
	switch red := Reduce(n, symbol).(type) {
	case *TypeSpecReduction:
		return red.Spec, nil
	case *ErrorReduction:
		return nil, red
	default:
		return nil, errorf(symbol, SeverityLow,
			"expected a type spec from %s but found %s in symbol %s",
			n.Kind, reductionName(red), symbol)
	}
}

// reduceNamedChild is reduceTypeSpecChild restricted to named types for
// must-succeed conformance shapes; every failure is high severity.
func reduceNamedChild(n *demangle.Node, symbol string) (*types.NamedType, *ErrorReduction) {
	switch red := Reduce(n, symbol).(type) {
	case *TypeSpecReduction:
		named, ok := red.Spec.(*types.NamedType)
		if !ok {
			return nil, errorf(symbol, SeverityHigh,
				"expected a named type from %s but found %s in symbol %s",
				n.Kind, specName(red.Spec), symbol)
		}
		return named, nil
	case *ErrorReduction:
		return nil, escalate(red).(*ErrorReduction)
	default:
		return nil, errorf(symbol, SeverityHigh,
			"expected a named type from %s but found %s in symbol %s",
			n.Kind, reductionName(red), symbol)
	}
}

// reduceProvenanceChild reduces a provenance position child. A nominal
// type reduction here is re-interpreted as an instance provenance rather
// than consumed as a type.
func reduceProvenanceChild(n *demangle.Node, symbol string) (types.Provenance, *ErrorReduction) {
	switch red := Reduce(n, symbol).(type) {
	case *ProvenanceReduction:
		return red.Provenance, nil
	case *TypeSpecReduction:
		named, ok := red.Spec.(*types.NamedType)
		if !ok {
			return nil, errorf(symbol, SeverityHigh,
				"expected a named type as provenance but found %s in symbol %s",
				specName(red.Spec), symbol)
		}
		return types.ProvenanceOf(named.FullName), nil
	case *ErrorReduction:
		return nil, escalate(red).(*ErrorReduction)
	default:
		return nil, errorf(symbol, SeverityHigh,
			"expected a provenance from %s but found %s in symbol %s",
			n.Kind, reductionName(red), symbol)
	}
}

// reduceClosureChild reduces the type position of a function entity,
// which must yield a closure; every failure voids the symbol.
func reduceClosureChild(n *demangle.Node, symbol string) (*types.ClosureType, *ErrorReduction) {
	switch red := Reduce(n, symbol).(type) {
	case *TypeSpecReduction:
		closure, ok := red.Spec.(*types.ClosureType)
		if !ok {
			return nil, errorf(symbol, SeverityHigh,
				"expected a closure type from %s but found %s in symbol %s",
				n.Kind, specName(red.Spec), symbol)
		}
		return closure, nil
	case *ErrorReduction:
		return nil, escalate(red).(*ErrorReduction)
	default:
		return nil, errorf(symbol, SeverityHigh,
			"expected a closure type from %s but found %s in symbol %s",
			n.Kind, reductionName(red), symbol)
	}
}

// applyLabels attaches external parameter labels positionally onto the
// argument tuple elements. Empty labels leave the element unlabeled.
func applyLabels(args *types.TupleType, labels []string) {
	for i, label := range labels {
		if i >= len(args.Elements) {
			return
		}
		if label != "" {
			args.Elements[i].Attributes().Label = label
		}
	}
}

func specName(spec types.TypeSpec) string {
	switch spec.(type) {
	case *types.NamedType:
		return "a named type"
	case *types.TupleType:
		return "a tuple type"
	case *types.ClosureType:
		return "a closure type"
	default:
		return "an unknown type spec"
	}
}

func reductionName(r Reduction) string {
	switch r.(type) {
	case *TypeSpecReduction:
		return "a type spec reduction"
	case *FunctionReduction:
		return "a function reduction"
	case *ProvenanceReduction:
		return "a provenance reduction"
	case *MetadataAccessorReduction:
		return "a metadata accessor reduction"
	case *DispatchThunkReduction:
		return "a dispatch thunk reduction"
	case *WitnessTableReduction:
		return "a witness table reduction"
	case *ConformanceDescriptorReduction:
		return "a conformance descriptor reduction"
	case *ErrorReduction:
		return "an error reduction"
	default:
		return "an unknown reduction"
	}
}
