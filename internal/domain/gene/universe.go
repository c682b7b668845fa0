// Package gene provides the set of known gene concepts an import works on,
// and readers for the NCBI files it is built from.
package gene

import (
	"sort"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// Universe maps gene ids to their concepts.  Only genes in the universe can
// take part in aggregation.
type Universe struct {
	byID  map[string]*concept.Concept
	order []string
	taxa  map[string]string
}

func NewUniverse() *Universe {
	return &Universe{
		byID: make(map[string]*concept.Concept),
		taxa: make(map[string]string),
	}
}

// Add registers g under its source id.  taxID may be empty.
func (u *Universe) Add(g *concept.Concept, taxID string) error {
	id := g.Coordinates.SourceID
	if id == "" {
		return errors.InvalidParam("gene concept has no source id")
	}
	if _, dup := u.byID[id]; dup {
		return errors.DataConsistency("gene id registered twice", id)
	}
	u.byID[id] = g
	u.order = append(u.order, id)
	if taxID != "" {
		u.taxa[id] = taxID
	}
	return nil
}

func (u *Universe) Get(id string) (*concept.Concept, bool) {
	g, ok := u.byID[id]
	return g, ok
}

func (u *Universe) Has(id string) bool {
	_, ok := u.byID[id]
	return ok
}

// TaxID returns the organism of a gene, if known.
func (u *Universe) TaxID(id string) string {
	return u.taxa[id]
}

func (u *Universe) Len() int { return len(u.order) }

// IDs returns the gene ids in insertion order.
func (u *Universe) IDs() []string {
	out := make([]string, len(u.order))
	copy(out, u.order)
	return out
}

// SortedIDs returns the gene ids in lexical order.
func (u *Universe) SortedIDs() []string {
	out := u.IDs()
	sort.Strings(out)
	return out
}

// Concepts returns the gene concepts in insertion order.
func (u *Universe) Concepts() []*concept.Concept {
	out := make([]*concept.Concept, 0, len(u.order))
	for _, id := range u.order {
		out = append(out, u.byID[id])
	}
	return out
}

//Personal.AI order the ending
