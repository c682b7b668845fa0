package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

func coord(id string) concept.Coordinate {
	return concept.Coordinate{SourceID: id, Source: "test"}
}

func TestForest_AddNodeIsIdempotent(t *testing.T) {
	f := NewForest()
	a := f.AddNode(coord("a"))
	b := f.AddNode(coord("a"))

	assert.Equal(t, a, b)
	assert.Equal(t, 1, f.Len())
	assert.True(t, f.Contains(coord("a")))
	assert.False(t, f.Contains(coord("b")))
}

func TestForest_AddEdgeIgnoresDuplicates(t *testing.T) {
	f := NewForest()
	f.AddEdge(coord("gene"), coord("cluster"))
	f.AddEdge(coord("gene"), coord("cluster"))

	assert.Equal(t, []concept.Coordinate{coord("cluster")}, f.Parents(coord("gene")))
	assert.Empty(t, f.Parents(coord("cluster")))
	assert.Nil(t, f.Parents(coord("missing")))

	n, ok := f.Node(coord("gene"))
	require.True(t, ok)
	assert.Len(t, n.Parents, 1)
}

func TestForest_Roots(t *testing.T) {
	f := NewForest()
	// gene -> c1 -> top ; gene -> c2 -> top ; gene -> h
	f.AddEdge(coord("gene"), coord("c1"))
	f.AddEdge(coord("gene"), coord("c2"))
	f.AddEdge(coord("gene"), coord("h"))
	f.AddEdge(coord("c1"), coord("top"))
	f.AddEdge(coord("c2"), coord("top"))

	assert.Nil(t, f.Roots(coord("unknown")))
	assert.Equal(t, []concept.Coordinate{coord("top")}, f.Roots(coord("top")))
	assert.Equal(t, []concept.Coordinate{coord("top"), coord("h")}, f.Roots(coord("gene")))
	assert.Equal(t, []concept.Coordinate{coord("top")}, f.Roots(coord("c2")))
}

func TestForest_RootsIsCycleSafe(t *testing.T) {
	f := NewForest()
	f.AddEdge(coord("a"), coord("b"))
	f.AddEdge(coord("b"), coord("a"))
	f.AddEdge(coord("b"), coord("r"))

	assert.Equal(t, []concept.Coordinate{coord("r")}, f.Roots(coord("a")))

	f2 := NewForest()
	f2.AddEdge(coord("x"), coord("y"))
	f2.AddEdge(coord("y"), coord("x"))
	assert.Empty(t, f2.Roots(coord("x")))
}

func TestForest_Root(t *testing.T) {
	f := NewForest()
	f.AddEdge(coord("g1"), coord("c1"))
	f.AddEdge(coord("g2"), coord("c1"))
	f.AddEdge(coord("g2"), coord("c2"))
	f.AddEdge(coord("x"), coord("y"))
	f.AddEdge(coord("y"), coord("x"))

	root, err := f.Root(coord("g1"))
	require.NoError(t, err)
	assert.Equal(t, coord("c1"), root)

	_, err = f.Root(coord("g2"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvariantViolation))
	assert.Contains(t, err.Error(), "g2@test has 2 roots")

	_, err = f.Root(coord("missing"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataConsistency))

	_, err = f.Root(coord("x"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataConsistency))
}

//Personal.AI order the ending
