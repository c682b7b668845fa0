package aggregation

import (
	"context"
	"sort"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// unifyTopOrthology gives every gene with more than one cluster a single top
// orthology aggregate above all of its clusters.  Clusters connected through
// shared genes always end up under the same aggregate.
func (r *run) unifyTopOrthology(ctx context.Context) error {
	for i, id := range r.universe.SortedIDs() {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		clusters := r.geneClusters[id]
		if len(clusters) <= 1 {
			continue
		}

		top, err := r.findTopOrtholog(id)
		if err != nil {
			return err
		}
		if top == nil {
			top = concept.NewAggregate(
				concept.NewCoordinates(r.topOrthology.Next(), concept.SourceGeneGroup),
				concept.LabelAggregateTopOrthology, concept.LabelNoProcessingGazetteer)
			if err := r.register(top); err != nil {
				return err
			}
			r.stats.TopOrthology++
			r.log.Debug("top orthology aggregate created",
				logging.String("coordinate", top.Coordinates.SourceID),
				logging.String("gene", id))
		}

		for _, key := range clusters {
			cluster, ok := r.byKey[key]
			if !ok {
				return errors.DataConsistency("cluster referenced by a gene was never created", key.String())
			}
			if existing, ok := r.clusterTop[key]; ok && existing != top {
				return errors.InvariantViolation("cluster assigned to two top orthology aggregates",
					key.String()+" -> "+existing.Coordinates.SourceID+", "+top.Coordinates.SourceID)
			}
			if top.AddElement(cluster.Coordinates) {
				if top.PrefName == "" {
					top.PrefName = cluster.PrefName
				}
				top.AddFacets(cluster.Facets...)
			}
			r.clusterTop[key] = top
			cluster.AddParent(top.Coordinates)
			r.forest.AddEdge(key, top.Key())
		}
	}
	return nil
}

// findTopOrtholog searches the clusters reachable from gene through shared
// member genes for one that already has a top orthology aggregate.  The walk
// uses an explicit stack and visited sets so overlapping groups that form
// cycles terminate.  Candidates are visited in sorted order and the first hit
// wins.
func (r *run) findTopOrtholog(gene string) (*concept.Concept, error) {
	visitedGenes := map[string]bool{gene: true}
	visitedClusters := make(map[concept.Coordinate]bool)
	stack := []string{gene}

	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		clusters := sortedKeys(r.geneClusters[g])
		for _, c := range clusters {
			if top, ok := r.clusterTop[c]; ok {
				return top, nil
			}
		}

		var next []string
		for _, c := range clusters {
			if visitedClusters[c] {
				continue
			}
			visitedClusters[c] = true
			members, ok := r.clusterMembers[c]
			if !ok {
				return nil, errors.DataConsistency("cluster has no recorded members", c.String())
			}
			ids := append([]string(nil), members...)
			sort.Strings(ids)
			for _, m := range ids {
				if !visitedGenes[m] {
					visitedGenes[m] = true
					next = append(next, m)
				}
			}
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return nil, nil
}

func sortedKeys(keys []concept.Coordinate) []concept.Coordinate {
	out := append([]concept.Coordinate(nil), keys...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

//Personal.AI order the ending
