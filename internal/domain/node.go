package domain

import "fmt"

// Node is a single fog or cloud compute resource. It serializes its
// assigned tasks in start-time order; components that track a node's
// availability (the evaluator, initializer, repair and baselines) keep it
// in their own local maps, never in fields on Node itself (Node is
// immutable once built).
type Node struct {
	ID           int
	MIPS         float64
	RAM          float64
	Bandwidth    float64
	Storage      float64
	IsCloud      bool
	CostPerSec   float64
	LatencyMs    float64
	X, Y         float64
	EnergyPerSec float64
}

// NodeSet is an ordered, id-indexed collection of nodes. IDs are unique
// within a NodeSet by construction (NewNodeSet rejects duplicates).
type NodeSet struct {
	order []int
	byID  map[int]Node
}

// NewNodeSet builds a NodeSet from a slice of nodes, rejecting duplicate
// IDs. Order is preserved for any iteration that cares about stability.
func NewNodeSet(nodes []Node) (NodeSet, error) {
	ns := NodeSet{byID: make(map[int]Node, len(nodes))}
	for _, n := range nodes {
		if _, exists := ns.byID[n.ID]; exists {
			return NodeSet{}, fmt.Errorf("nodeset: duplicate node id %d", n.ID)
		}
		ns.byID[n.ID] = n
		ns.order = append(ns.order, n.ID)
	}
	return ns, nil
}

// Len reports the number of nodes in the set.
func (ns NodeSet) Len() int { return len(ns.order) }

// Get returns the node with the given id.
func (ns NodeSet) Get(id int) (Node, bool) {
	n, ok := ns.byID[id]
	return n, ok
}

// IDs returns node ids in insertion order.
func (ns NodeSet) IDs() []int {
	out := make([]int, len(ns.order))
	copy(out, ns.order)
	return out
}

// FogIDs returns the ids of fog-capable (non-cloud) nodes, in insertion order.
func (ns NodeSet) FogIDs() []int {
	var out []int
	for _, id := range ns.order {
		if !ns.byID[id].IsCloud {
			out = append(out, id)
		}
	}
	return out
}

// CloudIDs returns the ids of cloud nodes, in insertion order.
func (ns NodeSet) CloudIDs() []int {
	var out []int
	for _, id := range ns.order {
		if ns.byID[id].IsCloud {
			out = append(out, id)
		}
	}
	return out
}

// Subset returns a new NodeSet containing only the given ids (order
// preserved as in the original set), used by the outer placement search to
// restrict the inner scheduler to the active fog nodes plus all cloud nodes.
func (ns NodeSet) Subset(ids []int) NodeSet {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := NodeSet{byID: make(map[int]Node, len(ids))}
	for _, id := range ns.order {
		if want[id] {
			out.byID[id] = ns.byID[id]
			out.order = append(out.order, id)
		}
	}
	return out
}
