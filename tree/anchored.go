package tree

import (
	"errors"

	"github.com/dshills/incremark/piece"
)

// ErrIndexOutOfRange is returned by Path when the requested index is
// not covered by the anchored node.
var ErrIndexOutOfRange = errors.New("index out of range")

// Anchored pairs a node with its absolute start offset. It is a cheap,
// recomputed view: the tree stores only lengths, and anchors are
// derived during traversal by accumulating the lengths of preceding
// siblings. Anchored performs no caching.
type Anchored struct {
	Node  *Node
	Start int
}

// Root anchors a node at offset 0.
func Root(n *Node) Anchored {
	return Anchored{Node: n}
}

// End returns the absolute offset one past the anchored node.
func (a Anchored) End() int {
	return a.Start + a.Node.Length()
}

// Range returns the absolute range the anchored node covers.
func (a Anchored) Range() piece.Range {
	return piece.Range{Start: a.Start, End: a.End()}
}

// Children returns the node's children anchored at their absolute
// offsets.
func (a Anchored) Children() []Anchored {
	children := a.Node.Children()
	if len(children) == 0 {
		return nil
	}
	out := make([]Anchored, len(children))
	offset := a.Start
	for i, c := range children {
		out[i] = Anchored{Node: c, Start: offset}
		offset += c.Length()
	}
	return out
}

// Path returns the chain of anchored nodes from this node down to the
// deepest node covering index. It returns ErrIndexOutOfRange if index
// is not within the anchored node's range.
func (a Anchored) Path(index int) ([]Anchored, error) {
	if index < a.Start || index >= a.End() {
		return nil, ErrIndexOutOfRange
	}

	path := []Anchored{a}
	cur := a
	for {
		children := cur.Node.Children()
		if len(children) == 0 {
			return path, nil
		}
		offset := cur.Start
		descended := false
		for _, c := range children {
			end := offset + c.Length()
			// Zero-length children never cover an index.
			if index >= offset && index < end {
				cur = Anchored{Node: c, Start: offset}
				path = append(path, cur)
				descended = true
				break
			}
			offset = end
		}
		if !descended {
			return path, nil
		}
	}
}

// Find walks the subtree in pre-order and returns every anchored node
// for which pred returns true, including this node itself.
func (a Anchored) Find(pred func(*Node) bool) []Anchored {
	var out []Anchored
	a.find(pred, &out)
	return out
}

func (a Anchored) find(pred func(*Node) bool, out *[]Anchored) {
	if pred(a.Node) {
		*out = append(*out, a)
	}
	offset := a.Start
	for _, c := range a.Node.Children() {
		child := Anchored{Node: c, Start: offset}
		child.find(pred, out)
		offset += c.Length()
	}
}

// FindType returns every anchored node of the given type in pre-order.
func (a Anchored) FindType(t Type) []Anchored {
	return a.Find(func(n *Node) bool { return n.Type() == t })
}
