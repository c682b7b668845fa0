package aggregation

import (
	"context"
	"fmt"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// unifyTopHomology merges the aggregate roots a gene still reaches into one.
// When one of those roots is already a top-homology aggregate it is extended
// with the other roots, never skipped and never duplicated.
// Only roots of the registered aggregate kinds count; anything else sharing
// the forest is left alone.
func (r *run) unifyTopHomology(ctx context.Context) error {
	for i, id := range r.universe.SortedIDs() {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if !r.hasMembership(id) {
			continue
		}
		g, _ := r.universe.Get(id)
		roots := r.aggregateRoots(g.Key())
		if len(roots) <= 1 {
			continue
		}

		var top *concept.Concept
		var others []*concept.Concept
		for _, key := range roots {
			agg, ok := r.byKey[key]
			if !ok {
				return errors.DataConsistency("hierarchy root is not a created aggregate", key.String())
			}
			if top == nil && key.HasPrefix(PrefixTopHomology) {
				top = agg
				continue
			}
			others = append(others, agg)
		}

		if top == nil {
			top = concept.NewAggregate(
				concept.NewCoordinates(r.topHomology.Next(), concept.SourceGeneGroup),
				concept.LabelAggregateTopHomology, concept.LabelNoProcessingGazetteer)
			top.AggregateCopyProperties = []string{concept.PropPreferredName, concept.PropFacets}
			if err := r.register(top); err != nil {
				return err
			}
			r.stats.TopHomology++
			r.log.Debug("top homology aggregate created",
				logging.String("coordinate", top.Coordinates.SourceID),
				logging.String("gene", id),
				logging.Int("roots", len(others)))
		} else {
			r.stats.TopHomologyExtended++
		}

		for _, agg := range others {
			if agg == top {
				continue
			}
			top.AddElement(agg.Coordinates)
			if top.PrefName == "" {
				top.PrefName = agg.PrefName
			}
			top.AddFacets(agg.Facets...)
			agg.AddParent(top.Coordinates)
			r.forest.AddEdge(agg.Key(), top.Key())
		}
	}
	return nil
}

func (r *run) hasMembership(gene string) bool {
	return len(r.geneClusters[gene]) > 0 || len(r.geneHomology[gene]) > 0
}

// aggregateRoots returns the forest roots of c whose coordinates carry one
// of the registered aggregate prefixes.
func (r *run) aggregateRoots(c concept.Coordinate) []concept.Coordinate {
	var out []concept.Coordinate
	for _, root := range r.forest.Roots(c) {
		for _, p := range r.rootPrefixes {
			if root.HasPrefix(p) {
				out = append(out, root)
				break
			}
		}
	}
	return out
}

// verify checks that every gene taking part in aggregation reaches exactly
// one aggregate root.
func (r *run) verify(ctx context.Context) error {
	for _, id := range r.universe.SortedIDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.hasMembership(id) {
			continue
		}
		g, _ := r.universe.Get(id)
		roots := r.aggregateRoots(g.Key())
		switch len(roots) {
		case 1:
		case 0:
			return errors.DataConsistency("gene reaches no aggregate root", g.Key().String())
		default:
			return errors.InvariantViolation("gene reaches more than one aggregate root",
				fmt.Sprintf("%s has %d roots", g.Key(), len(roots)))
		}
	}
	return nil
}

//Personal.AI order the ending
