package compiler

import "github.com/dmbetz/mbasic/isa"

// nodeKind tags the variant a node holds, replacing the original's
// type-punned pointer fields with an explicit, exhaustively-switched enum
// per spec.md design note on tagged variants over function pointers.
type nodeKind int

const (
	nodeInteger nodeKind = iota
	nodeString
	nodeSymbolRef
	nodeArrayRef
	nodeCall
	nodeUnary
	nodeBinary
	nodeAnd
	nodeOr
)

// nodeRef indexes into a compiler's node arena. The zero value refers to
// node 0 and is never used as a "no node" marker; callers track absence
// with a separate bool or a -1 sentinel where needed.
type nodeRef int

// node is one AST node. Only the fields relevant to kind are populated;
// this is the tagged-variant shape spec.md's design notes call for instead
// of a pointer-typed union.
type node struct {
	kind nodeKind

	ival  isa.Cell     // nodeInteger
	str   *stringEntry // nodeString
	sym   *symbol      // nodeSymbolRef, nodeArrayRef, nodeCall (callee)
	index nodeRef      // nodeArrayRef: subscript expression

	// args is the nodeCall argument list, left to right, and also the
	// nodeAnd/nodeOr operand list, left to right, so the code generator
	// can emit a single short-circuit chain instead of a nested binary
	// tree of tests.
	args []nodeRef

	op          tokenKind // nodeUnary, nodeBinary: operator token
	left, right nodeRef   // nodeUnary (left only), nodeBinary
}

// arena owns every node allocated while compiling one translation unit. It
// is not reset between functions: nodes accumulate for the whole compile
// (and stay charged against heapMax), and Go's collector reclaims the
// backing array once Compile returns.
type arena struct {
	nodes []node
}

func (a *arena) alloc(n node) nodeRef {
	a.nodes = append(a.nodes, n)
	return nodeRef(len(a.nodes) - 1)
}

func (a *arena) get(r nodeRef) *node {
	return &a.nodes[r]
}

// allocNode charges one nodeCost against the compiler heap budget before
// handing the node to the arena, so an AST that grows without bound (deeply
// nested expressions, a huge argument list) hits heapMax instead of
// growing Go's slice forever.
func (c *Compiler) allocNode(n node) nodeRef {
	c.chargeHeap(nodeCost)
	return c.nodes.alloc(n)
}

func (c *Compiler) newInteger(v isa.Cell) nodeRef {
	return c.allocNode(node{kind: nodeInteger, ival: v})
}

func (c *Compiler) newString(s *stringEntry) nodeRef {
	return c.allocNode(node{kind: nodeString, str: s})
}

func (c *Compiler) newSymbolRef(sym *symbol) nodeRef {
	return c.allocNode(node{kind: nodeSymbolRef, sym: sym})
}

func (c *Compiler) newArrayRef(sym *symbol, index nodeRef) nodeRef {
	return c.allocNode(node{kind: nodeArrayRef, sym: sym, index: index})
}

func (c *Compiler) newCall(sym *symbol, args []nodeRef) nodeRef {
	return c.allocNode(node{kind: nodeCall, sym: sym, args: args})
}

func (c *Compiler) newUnary(op tokenKind, left nodeRef) nodeRef {
	return c.allocNode(node{kind: nodeUnary, op: op, left: left})
}

func (c *Compiler) newBinary(op tokenKind, left, right nodeRef) nodeRef {
	return c.allocNode(node{kind: nodeBinary, op: op, left: left, right: right})
}

// newAnd and newOr take the whole chain of operands at once (AND/OR are
// n-ary, not binary): "a AND b AND c" is one nodeAnd with a 3-element args
// list, not two nested nodeAnd nodes.
func (c *Compiler) newAnd(operands []nodeRef) nodeRef {
	return c.allocNode(node{kind: nodeAnd, args: operands})
}

func (c *Compiler) newOr(operands []nodeRef) nodeRef {
	return c.allocNode(node{kind: nodeOr, args: operands})
}
