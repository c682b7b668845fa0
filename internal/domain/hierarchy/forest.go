// Package hierarchy keeps the parent links between concepts while aggregates
// are built.  Nodes live in an arena and refer to each other by NodeID so the
// structure holds no pointers into itself and tolerates cycles.
package hierarchy

import (
	"fmt"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// NodeID indexes a node in the Forest arena.
type NodeID int

// Node is one concept in the Forest.
type Node struct {
	ID         NodeID
	Coordinate concept.Coordinate
	Parents    []NodeID
}

// Forest is a set of parent-linked trees keyed by coordinate.
type Forest struct {
	index map[concept.Coordinate]NodeID
	nodes []Node
}

func NewForest() *Forest {
	return &Forest{index: make(map[concept.Coordinate]NodeID)}
}

// AddNode registers c.  Adding an existing coordinate returns its id.
func (f *Forest) AddNode(c concept.Coordinate) NodeID {
	if id, ok := f.index[c]; ok {
		return id
	}
	id := NodeID(len(f.nodes))
	f.nodes = append(f.nodes, Node{ID: id, Coordinate: c})
	f.index[c] = id
	return id
}

// AddEdge makes parent a parent of child, registering both as needed.  A
// repeated edge is ignored.
func (f *Forest) AddEdge(child, parent concept.Coordinate) {
	cid := f.AddNode(child)
	pid := f.AddNode(parent)
	for _, p := range f.nodes[cid].Parents {
		if p == pid {
			return
		}
	}
	f.nodes[cid].Parents = append(f.nodes[cid].Parents, pid)
}

func (f *Forest) Contains(c concept.Coordinate) bool {
	_, ok := f.index[c]
	return ok
}

func (f *Forest) Len() int { return len(f.nodes) }

// Node returns the node registered for c.
func (f *Forest) Node(c concept.Coordinate) (Node, bool) {
	id, ok := f.index[c]
	if !ok {
		return Node{}, false
	}
	return f.nodes[id], true
}

// Parents returns the direct parents of c in insertion order.
func (f *Forest) Parents(c concept.Coordinate) []concept.Coordinate {
	id, ok := f.index[c]
	if !ok {
		return nil
	}
	out := make([]concept.Coordinate, 0, len(f.nodes[id].Parents))
	for _, p := range f.nodes[id].Parents {
		out = append(out, f.nodes[p].Coordinate)
	}
	return out
}

// Roots returns the unparented nodes reachable from c by following parent
// links.  An unknown c has no roots; an unparented c is its own root.  The
// order is the depth-first discovery order along parent insertion order.
func (f *Forest) Roots(c concept.Coordinate) []concept.Coordinate {
	start, ok := f.index[c]
	if !ok {
		return nil
	}

	var roots []concept.Coordinate
	visited := make(map[NodeID]bool)
	stack := []NodeID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		parents := f.nodes[id].Parents
		if len(parents) == 0 {
			roots = append(roots, f.nodes[id].Coordinate)
			continue
		}
		for i := len(parents) - 1; i >= 0; i-- {
			if !visited[parents[i]] {
				stack = append(stack, parents[i])
			}
		}
	}
	return roots
}

// Root returns the single root of c.  Several roots are an invariant
// violation; none means c is unknown or only reaches a cycle.
func (f *Forest) Root(c concept.Coordinate) (concept.Coordinate, error) {
	roots := f.Roots(c)
	switch len(roots) {
	case 1:
		return roots[0], nil
	case 0:
		return concept.Coordinate{}, errors.DataConsistency("no root reachable in hierarchy", c.String())
	default:
		return concept.Coordinate{}, errors.InvariantViolation("concept has more than one hierarchy root",
			fmt.Sprintf("%s has %d roots", c, len(roots)))
	}
}

//Personal.AI order the ending
