package demangle

import (
	"fmt"
)

// contextKinds maps a nominal kind code to the node kind it declares.
var contextKinds = map[byte]NodeKind{
	'V': KindStructure,
	'C': KindClass,
	'O': KindEnum,
	'P': KindProtocol,
}

// Parse converts a mangled Swift symbol into a node tree rooted at a
// Global node. The grammar covered is the stable ($s) mangling subset
// needed for binding recovery: module/context chains, nominal kind codes,
// standard-library short forms, context substitutions, tuples, function
// signatures with throws and no-escape markers, variadic and label
// markers, bound generics, dependent generic parameters and signatures,
// and the entity suffixes F, fC, Ma, WP, Mc and Tj. Punycode identifiers
// and word substitutions are not supported.
func Parse(symbol string) (*Node, error) {
	p := &parser{data: []byte(symbol)}
	node, err := p.parseSymbol()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("trailing characters at position %d", p.pos)
	}
	global := NewNode(KindGlobal, "")
	global.Append(node)
	return global, nil
}

type parser struct {
	data  []byte
	pos   int
	subst []*Node
}

type parserState struct {
	pos   int
	subst int
}

func (p *parser) save() parserState {
	return parserState{pos: p.pos, subst: len(p.subst)}
}

func (p *parser) restore(s parserState) {
	p.pos = s.pos
	p.subst = p.subst[:s.subst]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.data)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.data[p.pos]
}

func (p *parser) consume() byte {
	if p.eof() {
		return 0
	}
	b := p.data[p.pos]
	p.pos++
	return b
}

func (p *parser) matchString(s string) bool {
	if len(p.data)-p.pos < len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if p.data[p.pos+i] != s[i] {
			return false
		}
	}
	return true
}

func (p *parser) pushSubstitution(n *Node) {
	p.subst = append(p.subst, n)
}

func (p *parser) lookupSubstitution(index int) (*Node, error) {
	if index < 0 || index >= len(p.subst) {
		return nil, fmt.Errorf("substitution index %d out of range (have %d)", index, len(p.subst))
	}
	return p.subst[index], nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isTypeStart(b byte) bool {
	return isDigit(b) || b == 'y' || b == 'x' || b == 'q' || b == 'A' || b == 'S'
}

func (p *parser) readNumber() (int, error) {
	if p.eof() || !isDigit(p.peek()) {
		return 0, fmt.Errorf("expected digit at position %d", p.pos)
	}
	total := 0
	for !p.eof() && isDigit(p.peek()) {
		total = total*10 + int(p.consume()-'0')
	}
	return total, nil
}

func (p *parser) readIdentifierText() (string, error) {
	if p.eof() || !isDigit(p.peek()) {
		return "", fmt.Errorf("expected identifier length at position %d", p.pos)
	}
	if p.peek() == '0' {
		return "", fmt.Errorf("punycode identifier at position %d is not supported", p.pos)
	}
	length, err := p.readNumber()
	if err != nil {
		return "", err
	}
	if p.pos+length > len(p.data) {
		return "", fmt.Errorf("identifier of length %d overruns input at position %d", length, p.pos)
	}
	text := string(p.data[p.pos : p.pos+length])
	p.pos += length
	return text, nil
}

// readMangledIndex reads the '_'-terminated index form: '_' is 0, a digit
// run followed by '_' is n+1.
func (p *parser) readMangledIndex() (int, error) {
	if p.eof() {
		return 0, fmt.Errorf("unexpected end while reading index")
	}
	if p.peek() == '_' {
		p.consume()
		return 0, nil
	}
	n, err := p.readNumber()
	if err != nil {
		return 0, err
	}
	if p.eof() || p.peek() != '_' {
		return 0, fmt.Errorf("unterminated index at position %d", p.pos)
	}
	p.consume()
	return n + 1, nil
}

func buildNominal(kind NodeKind, parent *Node, name string) *Node {
	node := NewNode(kind, "")
	node.Append(parent, NewNode(KindIdentifier, name))
	return node
}

func typeWrap(n *Node) *Node {
	t := NewNode(KindType, "")
	t.Append(n)
	return t
}

func (p *parser) parseSymbol() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("empty symbol")
	}
	if p.peek() == '_' {
		p.consume()
	}
	if p.eof() || p.consume() != '$' {
		return nil, fmt.Errorf("missing mangling prefix")
	}
	if prefix := p.consume(); prefix != 's' && prefix != 'S' {
		return nil, fmt.Errorf("unsupported symbol prefix %q", prefix)
	}
	if p.eof() {
		return nil, fmt.Errorf("missing symbol body")
	}

	moduleNode, context, err := p.parseSymbolContext()
	if err != nil {
		return nil, err
	}
	entity, err := p.parseEntity(moduleNode, context)
	if err != nil {
		return nil, err
	}
	return p.applySymbolSuffixes(entity)
}

// parseSymbolContext reads the module and any nominal context chain,
// registering each level as a substitution. It stops (restoring position)
// at the first identifier not followed by a nominal kind code, which is
// taken to be the entity name.
func (p *parser) parseSymbolContext() (module *Node, context *Node, err error) {
	if p.peek() == 's' {
		p.consume()
		module = NewNode(KindModule, "Swift")
	} else if isDigit(p.peek()) {
		name, err := p.readIdentifierText()
		if err != nil {
			return nil, nil, fmt.Errorf("read module: %w", err)
		}
		module = NewNode(KindModule, name)
	} else {
		return nil, nil, fmt.Errorf("unsupported symbol body at position %d", p.pos)
	}
	p.pushSubstitution(module)

	parent := module
	for {
		save := p.pos
		if p.eof() || !isDigit(p.peek()) {
			break
		}
		name, err := p.readIdentifierText()
		if err != nil {
			p.pos = save
			break
		}
		if p.eof() {
			p.pos = save
			break
		}
		kind, ok := contextKinds[p.peek()]
		if !ok {
			p.pos = save
			break
		}
		p.consume()
		parent = buildNominal(kind, parent, name)
		p.pushSubstitution(parent)
	}
	if parent != module {
		context = parent
	}
	return module, context, nil
}

func (p *parser) parseEntity(module, context *Node) (*Node, error) {
	prov := module
	if context != nil {
		prov = context
	}
	if node, ok := p.tryParseFunction(prov); ok {
		return node, nil
	}
	if context != nil {
		if node, ok := p.tryParseAllocator(context); ok {
			return node, nil
		}
		if node, ok := p.tryParseConformance(module, context); ok {
			return node, nil
		}
		// Plain type symbol (metadata accessors, bound generics).
		base, err := p.parseTypeSuffix(context.Clone())
		if err != nil {
			return nil, err
		}
		return typeWrap(base), nil
	}
	return nil, fmt.Errorf("unsupported entity at position %d", p.pos)
}

func (p *parser) tryParseFunction(prov *Node) (*Node, bool) {
	start := p.save()
	name, err := p.readIdentifierText()
	if err != nil {
		p.restore(start)
		return nil, false
	}
	afterName := p.save()

	if labels := p.parseExplicitLabels(); len(labels) > 0 {
		if node, ok := p.finishFunction(prov, name, labels); ok {
			return node, true
		}
		p.restore(afterName)
	}
	// A 'y' here is the empty label list marker; if the signature does
	// not parse with it consumed, it was the return type instead.
	if !p.eof() && p.peek() == 'y' {
		p.consume()
		if node, ok := p.finishFunction(prov, name, nil); ok {
			return node, true
		}
		p.restore(afterName)
	}
	if node, ok := p.finishFunction(prov, name, nil); ok {
		return node, true
	}
	p.restore(start)
	return nil, false
}

func (p *parser) parseExplicitLabels() []string {
	var labels []string
	for !p.eof() {
		switch {
		case p.peek() == '_':
			p.consume()
			labels = append(labels, "")
		case isDigit(p.peek()):
			save := p.pos
			label, err := p.readIdentifierText()
			if err != nil {
				p.pos = save
				return labels
			}
			labels = append(labels, label)
		default:
			return labels
		}
	}
	return labels
}

func (p *parser) finishFunction(prov *Node, name string, labels []string) (*Node, bool) {
	state := p.save()
	sig, ok := p.parseFunctionSignature()
	if !ok {
		p.restore(state)
		return nil, false
	}
	genSig := p.parseGenericSignature()
	if p.eof() || p.peek() != 'F' {
		p.restore(state)
		return nil, false
	}
	p.consume()

	typeChild := typeWrap(sig)
	if genSig != nil {
		dep := NewNode(KindDependentGenericType, "")
		dep.Append(genSig, typeWrap(sig))
		typeChild = typeWrap(dep)
	}
	fn := NewNode(KindFunction, "")
	fn.Append(prov.Clone(), NewNode(KindIdentifier, name))
	if len(labels) > 0 {
		list := NewNode(KindLabelList, "")
		for _, label := range labels {
			list.Append(NewNode(KindTupleElementName, label))
		}
		fn.Append(list)
	}
	fn.Append(typeChild)
	return fn, true
}

// parseFunctionSignature parses the return type followed by the
// parameter tuple and an optional throws marker, producing a
// FunctionType node.
func (p *parser) parseFunctionSignature() (*Node, bool) {
	state := p.save()
	result, err := p.parseType()
	if err != nil {
		p.restore(state)
		return nil, false
	}
	params, ok := p.parseParamTuple()
	if !ok {
		p.restore(state)
		return nil, false
	}
	throws := false
	if !p.eof() && p.peek() == 'K' {
		p.consume()
		throws = true
	}
	return buildFunctionType(KindFunctionType, throws, params, result), true
}

func buildFunctionType(kind NodeKind, throws bool, params, result *Node) *Node {
	fn := NewNode(kind, "")
	if throws {
		fn.Append(NewNode(KindThrowsAnnotation, ""))
	}
	args := NewNode(KindArgumentTuple, "")
	args.Append(typeWrap(params))
	ret := NewNode(KindReturnType, "")
	ret.Append(typeWrap(result))
	fn.Append(args, ret)
	return fn
}

func (p *parser) parseParamTuple() (*Node, bool) {
	if p.eof() {
		return nil, false
	}
	if p.peek() == 'y' {
		p.consume()
		return NewNode(KindTuple, ""), true
	}
	var elems []*Node
	for {
		elem, ok := p.parseTupleElem()
		if !ok {
			return nil, false
		}
		elems = append(elems, elem)
		if p.eof() {
			break
		}
		if p.peek() == 't' {
			p.consume()
			break
		}
		if p.peek() == '_' {
			p.consume()
			continue
		}
		if isTypeStart(p.peek()) {
			continue
		}
		break
	}
	tuple := NewNode(KindTuple, "")
	tuple.Append(elems...)
	return tuple, true
}

func (p *parser) parseTupleElem() (*Node, bool) {
	t, err := p.parseType()
	if err != nil {
		return nil, false
	}
	elem := NewNode(KindTupleElement, "")
	if !p.eof() && p.peek() == 'd' {
		p.consume()
		elem.Append(NewNode(KindVariadicMarker, ""))
	}
	elem.Append(typeWrap(t))
	return elem, true
}

func (p *parser) parseGenericSignature() *Node {
	count := 0
	switch {
	case p.eof():
		return nil
	case p.peek() == 'l':
		p.consume()
		count = 1
	case isDigit(p.peek()):
		save := p.pos
		n, err := p.readNumber()
		if err != nil || p.eof() || p.peek() != 'l' {
			p.pos = save
			return nil
		}
		p.consume()
		count = n
	default:
		return nil
	}
	sig := NewNode(KindDependentGenericSignature, "")
	sig.Append(NewIndexNode(KindDependentGenericParamCount, count))
	return sig
}

func (p *parser) tryParseAllocator(context *Node) (*Node, bool) {
	state := p.save()
	sig, ok := p.parseFunctionSignature()
	if !ok {
		p.restore(state)
		return nil, false
	}
	if !p.eof() && p.peek() == 'c' {
		p.consume()
	}
	if !p.matchString("fC") {
		p.restore(state)
		return nil, false
	}
	p.pos += 2
	alloc := NewNode(KindAllocator, "")
	alloc.Append(context.Clone(), typeWrap(sig))
	return alloc, true
}

func (p *parser) tryParseConformance(module, context *Node) (*Node, bool) {
	state := p.save()
	proto, err := p.parseType()
	if err != nil {
		p.restore(state)
		return nil, false
	}
	var kind NodeKind
	switch {
	case p.matchString("WP"):
		kind = KindProtocolWitnessTable
	case p.matchString("Mc"):
		kind = KindProtocolConformanceDescriptor
	default:
		p.restore(state)
		return nil, false
	}
	p.pos += 2
	conf := NewNode(KindProtocolConformance, "")
	conf.Append(typeWrap(context.Clone()), typeWrap(proto), module.Clone())
	node := NewNode(kind, "")
	node.Append(conf)
	return node, true
}

func (p *parser) applySymbolSuffixes(node *Node) (*Node, error) {
	current := node
	for !p.eof() {
		switch {
		case p.matchString("Ma"):
			p.pos += 2
			child := current
			if child.Kind != KindType {
				child = typeWrap(child)
			}
			wrapped := NewNode(KindTypeMetadataAccessFunction, "")
			wrapped.Append(child)
			current = wrapped
		case p.matchString("Tj"):
			p.pos += 2
			wrapped := NewNode(KindDispatchThunk, "")
			wrapped.Append(current)
			current = wrapped
		default:
			return current, nil
		}
	}
	return current, nil
}

func (p *parser) parseType() (*Node, error) {
	prim, err := p.parsePrimaryType()
	if err != nil {
		return nil, err
	}
	return p.parseTypeSuffix(prim)
}

func (p *parser) parsePrimaryType() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing type")
	}
	switch b := p.peek(); {
	case b == 'y':
		p.consume()
		return NewNode(KindTuple, ""), nil
	case b == 'x':
		p.consume()
		return dependentParam(0, 0), nil
	case b == 'q':
		p.consume()
		index, err := p.readMangledIndex()
		if err != nil {
			return nil, err
		}
		return dependentParam(0, index+1), nil
	case b == 'A':
		return p.parseSubstitution()
	case b == 'S':
		if p.pos+1 < len(p.data) {
			if text, ok := standardTypes[p.data[p.pos+1]]; ok {
				p.pos += 2
				node := NewNode(KindIdentifier, text)
				p.pushSubstitution(node)
				return node, nil
			}
		}
		return nil, fmt.Errorf("unknown standard type short form at position %d", p.pos)
	case isDigit(b):
		return p.parseNominalType()
	default:
		return nil, fmt.Errorf("unsupported mangled sequence starting at position %d", p.pos)
	}
}

func dependentParam(depth, index int) *Node {
	node := NewNode(KindDependentGenericParamType, "")
	node.Append(NewIndexNode(KindIndex, depth), NewIndexNode(KindIndex, index))
	return node
}

// parseSubstitution resolves an 'A'-run context substitution: 'A'
// followed by an uppercase letter indexing previously registered
// modules, nominal types and type terms.
func (p *parser) parseSubstitution() (*Node, error) {
	p.consume() // 'A'
	if p.eof() {
		return nil, fmt.Errorf("unterminated substitution at end of input")
	}
	c := p.consume()
	if c < 'A' || c > 'Z' {
		return nil, fmt.Errorf("invalid substitution index %q at position %d", c, p.pos-1)
	}
	node, err := p.lookupSubstitution(int(c - 'A'))
	if err != nil {
		return nil, err
	}
	node = node.Clone()
	// A module or nominal substitution may be the context of a longer
	// nominal chain.
	if (node.Kind == KindModule || node.IsNominal()) && !p.eof() && isDigit(p.peek()) {
		return p.parseNominalChain(node)
	}
	return node, nil
}

func (p *parser) parseNominalType() (*Node, error) {
	name, err := p.readIdentifierText()
	if err != nil {
		return nil, err
	}
	if p.eof() || !isDigit(p.peek()) {
		// A bare identifier with no nominal chain.
		node := NewNode(KindIdentifier, name)
		p.pushSubstitution(node)
		return node, nil
	}
	module := NewNode(KindModule, name)
	p.pushSubstitution(module)
	return p.parseNominalChain(module)
}

// parseNominalChain reads identifier/kind-code pairs building nested
// nominal nodes onto parent. Consecutive identifiers before one kind code
// collapse into a chain of that kind.
func (p *parser) parseNominalChain(parent *Node) (*Node, error) {
	node := parent
	var pending []string
	for !p.eof() && isDigit(p.peek()) {
		name, err := p.readIdentifierText()
		if err != nil {
			return nil, err
		}
		pending = append(pending, name)
		if p.eof() {
			break
		}
		if kind, ok := contextKinds[p.peek()]; ok {
			p.consume()
			for _, n := range pending {
				node = buildNominal(kind, node, n)
			}
			pending = nil
			p.pushSubstitution(node)
		}
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("nominal type name without kind code at position %d", p.pos)
	}
	if node == parent {
		return nil, fmt.Errorf("empty nominal chain at position %d", p.pos)
	}
	return node, nil
}

func (p *parser) parseTypeSuffix(base *Node) (*Node, error) {
	current := base
	for !p.eof() {
		if p.peek() == 'y' && (current.IsNominal() || current.Kind == KindIdentifier) {
			save := p.save()
			bound, ok := p.tryParseBoundGeneric(current)
			if !ok {
				p.restore(save)
				return current, nil
			}
			current = bound
			continue
		}
		if p.matchString("Sg") {
			p.pos += 2
			current = wrapOptional(current)
			continue
		}
		if fn, ok := p.tryParseFunctionTypeSuffix(current); ok {
			current = fn
			continue
		}
		return current, nil
	}
	return current, nil
}

func (p *parser) tryParseBoundGeneric(base *Node) (*Node, bool) {
	p.consume() // 'y'
	list := NewNode(KindTypeList, "")
	for {
		if p.eof() {
			return nil, false
		}
		if p.peek() == 'G' {
			p.consume()
			break
		}
		arg, err := p.parseType()
		if err != nil {
			return nil, false
		}
		list.Append(typeWrap(arg))
		if !p.eof() && p.peek() == '_' {
			p.consume()
		}
	}
	node := NewNode(boundGenericKind(base), "")
	node.Append(typeWrap(base), list)
	p.pushSubstitution(node)
	return node, true
}

func boundGenericKind(base *Node) NodeKind {
	switch {
	case base.Kind == KindClass:
		return KindBoundGenericClass
	case base.Kind == KindEnum:
		return KindBoundGenericEnum
	case base.Kind == KindIdentifier && base.Text == "Swift.Optional":
		return KindBoundGenericEnum
	default:
		return KindBoundGenericStructure
	}
}

// wrapOptional expands the Sg sugar into Swift.Optional<T>.
func wrapOptional(inner *Node) *Node {
	node := NewNode(KindBoundGenericEnum, "")
	list := NewNode(KindTypeList, "")
	list.Append(typeWrap(inner))
	node.Append(typeWrap(NewNode(KindIdentifier, "Swift.Optional")), list)
	return node
}

// tryParseFunctionTypeSuffix interprets the already parsed type as a
// closure return type when it is followed by a parameter tuple and a
// function marker ('c', or 'XE' for no-escape closures).
func (p *parser) tryParseFunctionTypeSuffix(result *Node) (*Node, bool) {
	state := p.save()
	params, ok := p.parseParamTuple()
	if !ok {
		p.restore(state)
		return nil, false
	}
	throws := false
	if !p.eof() && p.peek() == 'K' {
		p.consume()
		throws = true
	}
	kind := KindFunctionType
	switch {
	case !p.eof() && p.peek() == 'c':
		p.consume()
	case p.matchString("XE"):
		p.pos += 2
		kind = KindNoEscapeFunctionType
	default:
		p.restore(state)
		return nil, false
	}
	return buildFunctionType(kind, throws, params, result), true
}
