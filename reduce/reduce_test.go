package reduce

import (
	"strings"
	"testing"

	"github.com/appsworld/swiftbind/demangle"
	"github.com/appsworld/swiftbind/types"
)

const testSymbol = "$sTEST"

func typeNode(inner *demangle.Node) *demangle.Node {
	t := demangle.NewNode(demangle.KindType, "")
	t.Append(inner)
	return t
}

func identifierNode(text string) *demangle.Node {
	return demangle.NewNode(demangle.KindIdentifier, text)
}

func nominalNode(kind demangle.NodeKind, module string, path ...string) *demangle.Node {
	node := demangle.NewNode(demangle.KindModule, module)
	for _, name := range path {
		parent := node
		node = demangle.NewNode(kind, "")
		node.Append(parent, identifierNode(name))
	}
	return node
}

func specOf(t *testing.T, red Reduction) types.TypeSpec {
	t.Helper()
	ts, ok := red.(*TypeSpecReduction)
	if !ok {
		t.Fatalf("reduction = %T; want *TypeSpecReduction (%v)", red, red)
	}
	return ts.Spec
}

func reduceSymbol(t *testing.T, symbol string) Reduction {
	t.Helper()
	node, err := demangle.Parse(symbol)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", symbol, err)
	}
	return Reduce(node, symbol)
}

func TestReduceTuplePreservesOrder(t *testing.T) {
	tuple := demangle.NewNode(demangle.KindTuple, "")
	for _, name := range []string{"Swift.Int", "Swift.String", "Swift.Bool"} {
		elem := demangle.NewNode(demangle.KindTupleElement, "")
		elem.Append(typeNode(identifierNode(name)))
		tuple.Append(elem)
	}

	spec := specOf(t, Reduce(tuple, testSymbol))
	want := &types.TupleType{Elements: []types.TypeSpec{
		&types.NamedType{FullName: "Swift.Int"},
		&types.NamedType{FullName: "Swift.String"},
		&types.NamedType{FullName: "Swift.Bool"},
	}}
	if !spec.Equal(want) {
		t.Errorf("tuple = %s; want %s", spec, want)
	}
}

func TestReduceEmptyTupleIsCanonicalVoid(t *testing.T) {
	spec := specOf(t, Reduce(demangle.NewNode(demangle.KindTuple, ""), testSymbol))
	if !spec.Equal(&types.TupleType{}) {
		t.Errorf("empty tuple = %s; want ()", spec)
	}
}

func TestReduceFunctionTypeThrows(t *testing.T) {
	fnType := demangle.NewNode(demangle.KindFunctionType, "")
	fnType.Append(demangle.NewNode(demangle.KindThrowsAnnotation, ""))
	args := demangle.NewNode(demangle.KindArgumentTuple, "")
	args.Append(typeNode(demangle.NewNode(demangle.KindTuple, "")))
	ret := demangle.NewNode(demangle.KindReturnType, "")
	ret.Append(typeNode(identifierNode("Swift.Int")))
	fnType.Append(args, ret)

	closure, ok := specOf(t, Reduce(fnType, testSymbol)).(*types.ClosureType)
	if !ok {
		t.Fatal("reduction did not yield a closure type")
	}
	if !closure.Throws {
		t.Error("closure.Throws = false; want true")
	}
	if !closure.HasAttr(types.AttrEscaping) {
		t.Error("function type closure is not escaping")
	}
}

func TestReduceNoEscapeFunctionType(t *testing.T) {
	fnType := demangle.NewNode(demangle.KindNoEscapeFunctionType, "")
	args := demangle.NewNode(demangle.KindArgumentTuple, "")
	args.Append(typeNode(demangle.NewNode(demangle.KindTuple, "")))
	ret := demangle.NewNode(demangle.KindReturnType, "")
	ret.Append(typeNode(demangle.NewNode(demangle.KindTuple, "")))
	fnType.Append(args, ret)

	closure, ok := specOf(t, Reduce(fnType, testSymbol)).(*types.ClosureType)
	if !ok {
		t.Fatal("reduction did not yield a closure type")
	}
	if closure.HasAttr(types.AttrEscaping) {
		t.Error("no-escape closure carries the escaping attribute")
	}
}

func TestReduceFunctionTypeWrapsBareArgument(t *testing.T) {
	// A single non-tuple argument still yields a one-element tuple.
	fnType := demangle.NewNode(demangle.KindFunctionType, "")
	args := demangle.NewNode(demangle.KindArgumentTuple, "")
	args.Append(typeNode(identifierNode("Swift.Int")))
	ret := demangle.NewNode(demangle.KindReturnType, "")
	ret.Append(typeNode(demangle.NewNode(demangle.KindTuple, "")))
	fnType.Append(args, ret)

	closure, ok := specOf(t, Reduce(fnType, testSymbol)).(*types.ClosureType)
	if !ok {
		t.Fatal("reduction did not yield a closure type")
	}
	want := &types.TupleType{Elements: []types.TypeSpec{
		&types.NamedType{FullName: "Swift.Int"},
	}}
	if !closure.Arguments.Equal(want) {
		t.Errorf("arguments = %s; want %s", closure.Arguments, want)
	}
}

func TestReduceConformanceDescriptorBadModule(t *testing.T) {
	conf := demangle.NewNode(demangle.KindProtocolConformance, "")
	conf.Append(
		typeNode(nominalNode(demangle.KindStructure, "test", "Simple")),
		typeNode(nominalNode(demangle.KindProtocol, "test", "Proto")),
		identifierNode("not a module"),
	)
	desc := demangle.NewNode(demangle.KindProtocolConformanceDescriptor, "")
	desc.Append(conf)

	errRed, ok := Reduce(desc, testSymbol).(*ErrorReduction)
	if !ok {
		t.Fatal("reduction did not yield an error")
	}
	if errRed.Severity != SeverityHigh {
		t.Errorf("severity = %s; want high", errRed.Severity)
	}
}

func TestReduceVariadicElementWrapsInArray(t *testing.T) {
	elem := demangle.NewNode(demangle.KindTupleElement, "")
	elem.Append(
		demangle.NewNode(demangle.KindVariadicMarker, ""),
		typeNode(identifierNode("Swift.Int")),
	)

	named, ok := specOf(t, Reduce(elem, testSymbol)).(*types.NamedType)
	if !ok {
		t.Fatal("reduction did not yield a named type")
	}
	if named.FullName != "Swift.Array" {
		t.Fatalf("element type = %q; want Swift.Array", named.FullName)
	}
	if len(named.TypeParams) != 1 {
		t.Fatalf("array has %d type parameters; want 1", len(named.TypeParams))
	}
	inner := named.TypeParams[0]
	if !inner.Attributes().Variadic {
		t.Error("inner element is not marked variadic")
	}
}

func TestReduceNestedNominalName(t *testing.T) {
	inner := nominalNode(demangle.KindStructure, "M", "O", "I")
	named, ok := specOf(t, Reduce(inner, testSymbol)).(*types.NamedType)
	if !ok {
		t.Fatal("reduction did not yield a named type")
	}
	if named.FullName != "M.O.I" {
		t.Errorf("full name = %q; want M.O.I", named.FullName)
	}
}

func TestReduceBoundGenericStructure(t *testing.T) {
	bound := demangle.NewNode(demangle.KindBoundGenericStructure, "")
	list := demangle.NewNode(demangle.KindTypeList, "")
	list.Append(typeNode(identifierNode("Swift.Int")), typeNode(identifierNode("Swift.String")))
	bound.Append(typeNode(nominalNode(demangle.KindStructure, "M", "Pair")), list)

	named, ok := specOf(t, Reduce(bound, testSymbol)).(*types.NamedType)
	if !ok {
		t.Fatal("reduction did not yield a named type")
	}
	want := &types.NamedType{FullName: "M.Pair", TypeParams: []types.TypeSpec{
		&types.NamedType{FullName: "Swift.Int"},
		&types.NamedType{FullName: "Swift.String"},
	}}
	if !named.Equal(want) {
		t.Errorf("bound generic = %s; want %s", named, want)
	}
}

func TestReduceFunctionMissingIdentifierIsHighSeverity(t *testing.T) {
	fn := demangle.NewNode(demangle.KindFunction, "")
	fn.Append(
		demangle.NewNode(demangle.KindModule, "test"),
		demangle.NewNode(demangle.KindModule, "oops"),
		typeNode(demangle.NewNode(demangle.KindFunctionType, "")),
	)

	errRed, ok := Reduce(fn, testSymbol).(*ErrorReduction)
	if !ok {
		t.Fatal("reduction did not yield an error")
	}
	if errRed.Severity != SeverityHigh {
		t.Errorf("severity = %s; want high", errRed.Severity)
	}
	if !strings.Contains(errRed.Message, "child 1") {
		t.Errorf("message %q does not name the failed child position", errRed.Message)
	}
}

func TestReduceDependentGenericParamName(t *testing.T) {
	node := demangle.NewNode(demangle.KindDependentGenericParamType, "")
	node.Append(
		demangle.NewIndexNode(demangle.KindIndex, 0),
		demangle.NewIndexNode(demangle.KindIndex, 2),
	)
	named, ok := specOf(t, Reduce(node, testSymbol)).(*types.NamedType)
	if !ok {
		t.Fatal("reduction did not yield a named type")
	}
	if named.FullName != "T_0_2" {
		t.Errorf("name = %q; want T_0_2", named.FullName)
	}
}

func TestReduceDependentMemberType(t *testing.T) {
	node := demangle.NewNode(demangle.KindDependentMemberType, "")
	node.Append(
		typeNode(identifierNode("T_0_0")),
		demangle.NewNode(demangle.KindDependentAssociatedTypeRef, "Element"),
	)
	named, ok := specOf(t, Reduce(node, testSymbol)).(*types.NamedType)
	if !ok {
		t.Fatal("reduction did not yield a named type")
	}
	if named.FullName != "T_0_0.Element" {
		t.Errorf("name = %q; want T_0_0.Element", named.FullName)
	}
}

func TestReduceUnhandledKindIsLowSeverity(t *testing.T) {
	node := demangle.NewNode(demangle.KindVariadicMarker, "")
	errRed, ok := Reduce(node, testSymbol).(*ErrorReduction)
	if !ok {
		t.Fatal("reduction did not yield an error")
	}
	if errRed.Severity != SeverityLow {
		t.Errorf("severity = %s; want low", errRed.Severity)
	}
	if !strings.Contains(errRed.Message, string(demangle.KindVariadicMarker)) {
		t.Errorf("message %q does not name the unhandled kind", errRed.Message)
	}
}

func TestReduceNilNode(t *testing.T) {
	errRed, ok := Reduce(nil, testSymbol).(*ErrorReduction)
	if !ok {
		t.Fatal("reduction did not yield an error")
	}
	if errRed.Severity != SeverityLow {
		t.Errorf("severity = %s; want low", errRed.Severity)
	}
}

func TestReduceDispatchThunkEscalates(t *testing.T) {
	thunk := demangle.NewNode(demangle.KindDispatchThunk, "")
	thunk.Append(demangle.NewNode(demangle.KindModule, "test"))

	errRed, ok := Reduce(thunk, testSymbol).(*ErrorReduction)
	if !ok {
		t.Fatal("reduction did not yield an error")
	}
	if errRed.Severity != SeverityHigh {
		t.Errorf("severity = %s; want high", errRed.Severity)
	}
}

func TestReduceFunctionSymbol(t *testing.T) {
	symbol := "$s4test5greet4name3ageSSSS_SitF"
	raw := reduceSymbol(t, symbol)
	red, ok := raw.(*FunctionReduction)
	if !ok {
		t.Fatalf("reduction = %T; want *FunctionReduction (%v)", raw, raw)
	}
	want := &types.Function{
		Name:       "greet",
		Provenance: &types.TopLevel{ModuleName: "test"},
		Parameters: &types.TupleType{Elements: []types.TypeSpec{
			&types.NamedType{
				TypeAttributes: types.TypeAttributes{Label: "name"},
				FullName:       "Swift.String",
			},
			&types.NamedType{
				TypeAttributes: types.TypeAttributes{Label: "age"},
				FullName:       "Swift.Int",
			},
		}},
		Return: &types.NamedType{FullName: "Swift.String"},
	}
	if !red.Function.Equal(want) {
		t.Errorf("function = %s; want %s", red.Function, want)
	}
	if red.MangledSymbol() != symbol {
		t.Errorf("symbol = %q; want %q", red.MangledSymbol(), symbol)
	}
}

func TestReduceAllocatorSymbol(t *testing.T) {
	red, ok := reduceSymbol(t, "$s4test6SimpleVABycfC").(*FunctionReduction)
	if !ok {
		t.Fatal("reduction did not yield a function")
	}
	want := &types.Function{
		Name:       "init",
		Provenance: &types.Instance{ModuleName: "test", TypePath: []string{"Simple"}},
		Parameters: &types.TupleType{},
		Return:     &types.NamedType{FullName: "test.Simple"},
	}
	if !red.Function.Equal(want) {
		t.Errorf("allocator = %s; want %s", red.Function, want)
	}
}

func TestReduceGenericFunctionSymbol(t *testing.T) {
	red, ok := reduceSymbol(t, "$s4test2idyxxlF").(*FunctionReduction)
	if !ok {
		t.Fatal("reduction did not yield a function")
	}
	want := &types.Function{
		Name:       "id",
		Provenance: &types.TopLevel{ModuleName: "test"},
		Parameters: &types.TupleType{Elements: []types.TypeSpec{
			&types.NamedType{FullName: "T_0_0"},
		}},
		TypeParams: []types.TypeSpec{&types.NamedType{FullName: "T_0_0"}},
		Return:     &types.NamedType{FullName: "T_0_0"},
	}
	if !red.Function.Equal(want) {
		t.Errorf("generic function = %s; want %s", red.Function, want)
	}
}

func TestReduceMetadataAccessorSymbol(t *testing.T) {
	red, ok := reduceSymbol(t, "$s4test4PairVySiSSGMa").(*MetadataAccessorReduction)
	if !ok {
		t.Fatal("reduction did not yield a metadata accessor")
	}
	want := &types.NamedType{FullName: "test.Pair", TypeParams: []types.TypeSpec{
		&types.NamedType{FullName: "Swift.Int"},
		&types.NamedType{FullName: "Swift.String"},
	}}
	if !red.AccessedType.Equal(want) {
		t.Errorf("accessed type = %s; want %s", red.AccessedType, want)
	}
}

func TestReduceWitnessTableSymbol(t *testing.T) {
	red, ok := reduceSymbol(t, "$s4test6SimpleVAA5ProtoPWP").(*WitnessTableReduction)
	if !ok {
		t.Fatal("reduction did not yield a witness table")
	}
	if red.ImplementingType.FullName != "test.Simple" {
		t.Errorf("implementing type = %q; want test.Simple", red.ImplementingType.FullName)
	}
	if red.ProtocolType.FullName != "test.Proto" {
		t.Errorf("protocol = %q; want test.Proto", red.ProtocolType.FullName)
	}
}

func TestReduceConformanceDescriptorSymbol(t *testing.T) {
	red, ok := reduceSymbol(t, "$s4test6SimpleVAA5ProtoPMc").(*ConformanceDescriptorReduction)
	if !ok {
		t.Fatal("reduction did not yield a conformance descriptor")
	}
	if red.Module != "test" {
		t.Errorf("module = %q; want test", red.Module)
	}
	if red.ImplementingType.FullName != "test.Simple" || red.ProtocolType.FullName != "test.Proto" {
		t.Errorf("conformance = %s : %s; want test.Simple : test.Proto",
			red.ImplementingType, red.ProtocolType)
	}
}

func TestReduceDispatchThunkSymbol(t *testing.T) {
	red, ok := reduceSymbol(t, "$s4test5ProtoP3fooyyFTj").(*DispatchThunkReduction)
	if !ok {
		t.Fatal("reduction did not yield a dispatch thunk")
	}
	if red.Function.Name != "foo" {
		t.Errorf("thunk target name = %q; want foo", red.Function.Name)
	}
	want := &types.Instance{ModuleName: "test", TypePath: []string{"Proto"}}
	if !red.Function.Provenance.Equal(want) {
		t.Errorf("thunk provenance = %s; want %s", red.Function.Provenance, want)
	}
}
