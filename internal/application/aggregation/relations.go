package aggregation

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/tabular"
)

// RelationOrtholog is the only relationship that forms gene groups.
const RelationOrtholog = "Ortholog"

const relationColumns = 5

// RelationIndex maps a group id, itself a gene id, to the ids of the genes
// declared its orthologs.
type RelationIndex struct {
	groups  map[string]map[string]struct{}
	ignored map[string]int
	rows    int
}

func NewRelationIndex() *RelationIndex {
	return &RelationIndex{
		groups:  make(map[string]map[string]struct{}),
		ignored: make(map[string]int),
	}
}

// Add records other as an ortholog of group.
func (x *RelationIndex) Add(group, other string) {
	set, ok := x.groups[group]
	if !ok {
		set = make(map[string]struct{})
		x.groups[group] = set
	}
	set[other] = struct{}{}
	x.rows++
}

// ParseOrthologyRelations reads an NCBI gene_orthologs file with the columns
// tax_id, GeneID, relationship, Other_tax_id and Other_GeneID.  Rows whose
// relationship is not "Ortholog" are counted and dropped.
func ParseOrthologyRelations(ctx context.Context, r io.Reader) (*RelationIndex, error) {
	x := NewRelationIndex()
	err := tabular.Scan(ctx, r, "gene_orthologs", func(line int, fields []string) error {
		if len(fields) < relationColumns {
			return errors.MalformedRecord("gene_orthologs", line,
				fmt.Sprintf("expected %d fields, got %d", relationColumns, len(fields)))
		}
		group := strings.TrimSpace(fields[1])
		other := strings.TrimSpace(fields[4])
		if group == "" || other == "" {
			return errors.MalformedRecord("gene_orthologs", line, "empty gene id")
		}
		if rel := strings.TrimSpace(fields[2]); rel != RelationOrtholog {
			x.ignored[rel]++
			return nil
		}
		x.Add(group, other)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return x, nil
}

// Groups returns the group ids in sorted order.
func (x *RelationIndex) Groups() []string {
	out := make([]string, 0, len(x.groups))
	for g := range x.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Orthologs returns the sorted ortholog ids of group.
func (x *RelationIndex) Orthologs(group string) []string {
	set := x.groups[group]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (x *RelationIndex) Len() int { return len(x.groups) }

// Rows returns the number of ortholog rows indexed.
func (x *RelationIndex) Rows() int { return x.rows }

// Ignored returns the number of dropped rows per relationship.
func (x *RelationIndex) Ignored() map[string]int {
	out := make(map[string]int, len(x.ignored))
	for k, v := range x.ignored {
		out[k] = v
	}
	return out
}

//Personal.AI order the ending
