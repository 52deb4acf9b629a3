package reduce

import (
	"github.com/appsworld/swiftbind/demangle"
)

// reducerFunc converts a matched node into a reduction.
type reducerFunc func(n *demangle.Node, symbol string) Reduction

// childRule asserts the kind of a child at a fixed index before the
// reducer runs. A mismatch voids the symbol with a high-severity error;
// reducers still index children positionally, so these are fast-fail
// assertions rather than dispatch criteria.
type childRule struct {
	index int
	kind  demangle.NodeKind
}

// rule binds a set of node kinds to a reduction function.
type rule struct {
	kinds    []demangle.NodeKind
	children []childRule
	reduce   reducerFunc
}

func (r *rule) matches(kind demangle.NodeKind) bool {
	for _, k := range r.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (r *rule) checkChildren(n *demangle.Node, symbol string) *ErrorReduction {
	for _, cr := range r.children {
		if cr.index >= len(n.Children) {
			return errorf(symbol, SeverityHigh,
				"expected %s at child %d of %s but found only %d children in symbol %s",
				cr.kind, cr.index, n.Kind, len(n.Children), symbol)
		}
		if got := n.Children[cr.index].Kind; got != cr.kind {
			return errorf(symbol, SeverityHigh,
				"expected %s at child %d of %s but found %s in symbol %s",
				cr.kind, cr.index, n.Kind, got, symbol)
		}
	}
	return nil
}

// Reduce converts one node into exactly one reduction, recursively.
// Rules are tried in table order and the first whose kind set contains
// the node's kind wins. An unmatched kind is a low-severity error.
func Reduce(node *demangle.Node, symbol string) Reduction {
	if node == nil {
		return errorf(symbol, SeverityLow, "cannot reduce an absent node in symbol %s", symbol)
	}
	for i := range rules {
		r := &rules[i]
		if !r.matches(node.Kind) {
			continue
		}
		if errRed := r.checkChildren(node, symbol); errRed != nil {
			return errRed
		}
		return r.reduce(node, symbol)
	}
	return errorf(symbol, SeverityLow, "no reduction rule for node kind %s in symbol %s", node.Kind, symbol)
}
