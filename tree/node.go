package tree

import (
	"fmt"
	"strings"
	"sync"
)

// Type identifies the kind of a syntax tree node. Types are interned:
// grammar definitions obtain them with TypeOf, so comparing two types
// is an integer comparison.
type Type uint16

// Predefined node types.
const (
	// Fragment marks an unrooted ordered list of sibling nodes,
	// produced by rules that do not introduce a wrapping node.
	Fragment Type = iota

	// Text is the default type for leaves produced by terminal rules.
	Text
)

var typeRegistry = struct {
	sync.RWMutex
	names []string
	ids   map[string]Type
}{
	names: []string{"fragment", "text"},
	ids:   map[string]Type{"fragment": Fragment, "text": Text},
}

// TypeOf returns the Type for the given name, interning it on first
// use. Calling TypeOf with the same name always returns the same Type.
func TypeOf(name string) Type {
	typeRegistry.RLock()
	t, ok := typeRegistry.ids[name]
	typeRegistry.RUnlock()
	if ok {
		return t
	}

	typeRegistry.Lock()
	defer typeRegistry.Unlock()
	if t, ok := typeRegistry.ids[name]; ok {
		return t
	}
	t = Type(len(typeRegistry.names))
	typeRegistry.names = append(typeRegistry.names, name)
	typeRegistry.ids[name] = t
	return t
}

// String returns the name the type was registered with.
func (t Type) String() string {
	typeRegistry.RLock()
	defer typeRegistry.RUnlock()
	if int(t) < len(typeRegistry.names) {
		return typeRegistry.names[t]
	}
	return fmt.Sprintf("type(%d)", uint16(t))
}

// Node is a syntax tree node. Nodes store a type, a length in code
// units, and ordered children; they never store absolute positions.
// A node's absolute range is recovered during traversal by
// accumulating the lengths of preceding siblings (see Anchored).
//
// For any node with children, the node's length equals the sum of its
// children's lengths.
type Node struct {
	typ      Type
	length   int
	children []*Node

	// shared marks a node that may be referenced by a previously
	// published tree or by the memoization table. A shared node is
	// never mutated; leaf merging clones it first.
	shared bool
}

// New creates a node of the given type and length with no children.
func New(t Type, length int) *Node {
	return &Node{typ: t, length: length}
}

// NewFragment creates an empty fragment node.
func NewFragment() *Node {
	return &Node{typ: Fragment}
}

// Type returns the node's type.
func (n *Node) Type() Type {
	return n.typ
}

// Length returns the count of code units this node and its children
// cover.
func (n *Node) Length() int {
	return n.length
}

// Children returns the node's children. The returned slice must be
// treated as read-only.
func (n *Node) Children() []*Node {
	return n.children
}

// IsFragment returns true if the node is an unrooted sibling list.
func (n *Node) IsFragment() bool {
	return n.typ == Fragment
}

// IsLeaf returns true if the node is a childless non-fragment node.
func (n *Node) IsLeaf() bool {
	return n.typ != Fragment && len(n.children) == 0
}

// AppendChild appends c to the node's children and grows the node's
// length.
//
// Fragments are spliced: their children are appended in order rather
// than nesting the fragment itself. When the current last child and
// the incoming node are both leaves of the same type, they are merged
// into a single leaf covering both, so runs of like-typed text do not
// bloat the tree into one node per rule application. A shared last
// child is cloned before being extended.
func (n *Node) AppendChild(c *Node) {
	if c.IsFragment() {
		for _, gc := range c.children {
			n.AppendChild(gc)
		}
		return
	}

	if last := n.lastChild(); last != nil && last.IsLeaf() && c.IsLeaf() && last.typ == c.typ {
		if last.shared {
			last = &Node{typ: last.typ, length: last.length}
			n.children[len(n.children)-1] = last
		}
		last.length += c.length
		n.length += c.length
		return
	}

	n.children = append(n.children, c)
	n.length += c.length
}

// lastChild returns the node's last child, or nil.
func (n *Node) lastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// Freeze marks the node and its descendants as shared. Frozen nodes
// are safe to splice into new trees; any attempt to extend them during
// leaf merging clones first.
func (n *Node) Freeze() *Node {
	if n.shared {
		return n
	}
	n.shared = true
	for _, c := range n.children {
		c.Freeze()
	}
	return n
}

// Equal reports whether two trees are structurally identical: same
// types, same lengths, same child structure.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.typ != b.typ || a.length != b.length || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// String returns a compact s-expression representation, e.g.
// (document (heading 3) (text 5)).
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteByte('(')
	b.WriteString(n.typ.String())
	if len(n.children) == 0 {
		fmt.Fprintf(b, " %d", n.length)
	} else {
		for _, c := range n.children {
			b.WriteByte(' ')
			c.write(b)
		}
	}
	b.WriteByte(')')
}
