package compiler

import "github.com/aretw0/machi/pkg/domain"

// Walk visits every node in pre-order (a fork before its children). Returning
// false from fn stops the walk below that node.
func Walk[C, D any](nodes []*Node[C, D], fn func(n *Node[C, D]) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		Walk(n.Children, fn)
	}
}

// Flatten lists every node in pre-order, which is also declaration order.
func Flatten[C, D any](nodes []*Node[C, D]) []*Node[C, D] {
	var out []*Node[C, D]
	Walk(nodes, func(n *Node[C, D]) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Index maps internal ids to their nodes.
func Index[C, D any](nodes []*Node[C, D]) map[string]*Node[C, D] {
	idx := make(map[string]*Node[C, D])
	Walk(nodes, func(n *Node[C, D]) bool {
		idx[n.InternalID] = n
		return true
	})
	return idx
}

// Conditions yields every condition of the tree along with the node it
// belongs to.
func Conditions[C, D any](nodes []*Node[C, D], fn func(n *Node[C, D], c domain.Condition[C])) {
	Walk(nodes, func(n *Node[C, D]) bool {
		if e := n.Entry(); e != nil {
			for _, c := range e.IsDone {
				fn(n, c)
			}
		}
		if f := n.Fork(); f != nil {
			for _, c := range f.Requirements {
				fn(n, c)
			}
		}
		return true
	})
}
