package demangle

// NodeKind identifies the grammatical role of a node in a demangled
// symbol tree. The set is closed; reduction dispatches on it.
type NodeKind string

const (
	KindUnknown NodeKind = "unknown"

	// Structure / provenance.
	KindGlobal     NodeKind = "global"
	KindModule     NodeKind = "module"
	KindIdentifier NodeKind = "identifier"
	KindType       NodeKind = "type"

	// Nominal types.
	KindClass     NodeKind = "class"
	KindStructure NodeKind = "structure"
	KindEnum      NodeKind = "enum"
	KindProtocol  NodeKind = "protocol"

	// Structural types.
	KindTuple            NodeKind = "tuple"
	KindTupleElement     NodeKind = "tupleElement"
	KindTupleElementName NodeKind = "tupleElementName"
	KindVariadicMarker   NodeKind = "variadicMarker"

	// Function shapes.
	KindFunctionType         NodeKind = "functionType"
	KindNoEscapeFunctionType NodeKind = "noEscapeFunctionType"
	KindThrowsAnnotation     NodeKind = "throwsAnnotation"
	KindArgumentTuple        NodeKind = "argumentTuple"
	KindReturnType           NodeKind = "returnType"
	KindFunction             NodeKind = "function"
	KindAllocator            NodeKind = "allocator"
	KindLabelList            NodeKind = "labelList"

	// Entity wrappers.
	KindDispatchThunk              NodeKind = "dispatchThunk"
	KindTypeMetadataAccessFunction NodeKind = "typeMetadataAccessFunction"

	// Generics.
	KindBoundGenericClass           NodeKind = "boundGenericClass"
	KindBoundGenericStructure       NodeKind = "boundGenericStructure"
	KindBoundGenericEnum            NodeKind = "boundGenericEnum"
	KindTypeList                    NodeKind = "typeList"
	KindDependentGenericParamType   NodeKind = "dependentGenericParamType"
	KindDependentMemberType         NodeKind = "dependentMemberType"
	KindDependentGenericType        NodeKind = "dependentGenericType"
	KindDependentGenericSignature   NodeKind = "dependentGenericSignature"
	KindDependentGenericParamCount  NodeKind = "dependentGenericParamCount"
	KindDependentAssociatedTypeRef  NodeKind = "dependentAssociatedTypeRef"

	// Protocol conformances.
	KindProtocolConformance           NodeKind = "protocolConformance"
	KindProtocolWitnessTable          NodeKind = "protocolWitnessTable"
	KindProtocolConformanceDescriptor NodeKind = "protocolConformanceDescriptor"

	// Numeric payload.
	KindIndex NodeKind = "index"
)

// Node is one element of a demangled symbol tree. Child order is
// semantically significant; Index is meaningful only for index-bearing
// kinds (KindIndex, KindDependentGenericParamCount). Trees are read-only
// once handed to the reducer.
type Node struct {
	Kind     NodeKind
	Text     string
	Index    int
	Children []*Node
}

// NewNode creates a new node with the given kind and text.
func NewNode(kind NodeKind, text string) *Node {
	return &Node{
		Kind: kind,
		Text: text,
	}
}

// NewIndexNode creates a node carrying a numeric payload.
func NewIndexNode(kind NodeKind, index int) *Node {
	return &Node{
		Kind:  kind,
		Index: index,
	}
}

// Append appends child nodes to the receiver.
func (n *Node) Append(children ...*Node) {
	if len(children) == 0 {
		return
	}
	n.Children = append(n.Children, children...)
}

// Clone shallow-copies the node. Children references are copied as-is.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:  n.Kind,
		Text:  n.Text,
		Index: n.Index,
	}
	if len(n.Children) > 0 {
		out.Children = append([]*Node(nil), n.Children...)
	}
	return out
}

var nominalKinds = map[NodeKind]bool{
	KindClass:     true,
	KindStructure: true,
	KindEnum:      true,
	KindProtocol:  true,
}

// IsNominal reports whether the node declares a named nominal type.
func (n *Node) IsNominal() bool {
	return n != nil && nominalKinds[n.Kind]
}
