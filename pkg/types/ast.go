package types

import "math/big"

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types for the formula grammar.
const (
	NodeNumber   NodeType = "number"   // Numeric literal (decimal, fraction, or mixed fraction)
	NodeVariable NodeType = "variable" // Base variable reference
	NodeCall     NodeType = "call"     // Function call: c(x), I(expr), poly(x, k), log(x), ...
	NodeBinary   NodeType = "binary"   // +, -, :, *, ^
)

// ASTNode represents a node in the formula expression tree.
//
// Trees are built once per parse, consumed by term expansion, then
// discarded. Each node exclusively owns its children; trees are acyclic.
type ASTNode struct {
	Type     NodeType
	Name     string   // Variable or function name
	Op       string   // Binary operator: "+", "-", ":", "*", "^"
	Num      *big.Rat // Exact numeric value for NodeNumber
	Position int

	LHS       *ASTNode   // Left operand (binary ops)
	RHS       *ASTNode   // Right operand (binary ops)
	Arguments []*ASTNode // Function call arguments
}

// NewASTNode creates a new AST node of the specified type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena
// chunk. Formulas are small; nearly all fit in a single chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for ASTNode values.
//
// Instead of allocating each node individually on the heap, the arena
// pre-allocates fixed-size chunks of ASTNode structs and returns pointers
// into them. A typical formula (< 64 nodes) requires only a single chunk
// allocation.
//
// The arena must stay alive as long as any pointer returned by Alloc is
// reachable. The parser owns the arena for the duration of one parse call;
// expression trees do not outlive expansion, so the arena is released with
// the parser.
//
// NodeArena is not thread-safe. Each parser owns its own arena and the
// arena is never shared across goroutines.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int // next free index in the last chunk
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
		pos:    0,
	}
}

// Alloc returns a pointer to a zero-valued ASTNode inside the arena, with
// Type and Position set. All other fields remain at their zero values and
// must be filled by the caller.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *ASTNode {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}

// IsLiteral reports whether the node is the numeric literal v.
// Used to recognize the intercept toggles 1 and 0.
func (n *ASTNode) IsLiteral(v int64) bool {
	return n.Type == NodeNumber && n.Num != nil && n.Num.Cmp(big.NewRat(v, 1)) == 0
}
