package aggregation

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/gene"
)

// universe builds genes with ids 1..n named name<id>.
func universe(t *testing.T, n int) *gene.Universe {
	t.Helper()
	u := gene.NewUniverse()
	for i := 1; i <= n; i++ {
		id := strconv.Itoa(i)
		g := &concept.Concept{
			Coordinates: concept.NewCoordinates(id, concept.SourceNCBIGene),
			PrefName:    "name" + id,
			Facets:      []string{"fid_genes"},
		}
		require.NoError(t, u.Add(g, "9606"))
	}
	return u
}

// relations parses "group other" pairs, one per line, into an index.
func relations(t *testing.T, pairs ...string) *RelationIndex {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("#tax_id\tGeneID\trelationship\tOther_tax_id\tOther_GeneID\n")
	for _, p := range pairs {
		f := strings.Fields(p)
		sb.WriteString("9606\t" + f[0] + "\tOrtholog\t10090\t" + f[1] + "\n")
	}
	x, err := ParseOrthologyRelations(context.Background(), strings.NewReader(sb.String()))
	require.NoError(t, err)
	return x
}

// fixturePairs are the groups g1={1,2}, g2={2,3,4}, g4={4,5,6,7},
// g7={7,8,9} and g11={10,11}.
var fixturePairs = []string{
	"1 2",
	"2 3", "2 4",
	"4 5", "4 6", "4 7",
	"7 8", "7 9",
	"11 10",
}

func key(id, source string) concept.Coordinate {
	return concept.Coordinate{SourceID: id, Source: source}
}

func geneKey(id string) concept.Coordinate {
	return key(id, concept.SourceNCBIGene)
}

func groupKey(id string) concept.Coordinate {
	return key(id, concept.SourceGeneGroup)
}

func keys(cs []concept.Coordinates) []concept.Coordinate {
	out := make([]concept.Coordinate, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Key())
	}
	return out
}

func aggregatesWithLabel(res *Result, label string) []*concept.Concept {
	var out []*concept.Concept
	for _, a := range res.Aggregates {
		if a.HasLabel(label) {
			out = append(out, a)
		}
	}
	return out
}

//Personal.AI order the ending
