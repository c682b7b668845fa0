package aggregation

import (
	"context"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
)

// buildClusters creates one orthology cluster per group that has more than
// one known member and links the members to it.
func (r *run) buildClusters(ctx context.Context, x *RelationIndex) error {
	for i, group := range x.Groups() {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		members := r.knownMembers(group, x.Orthologs(group))
		if len(members) <= 1 {
			r.stats.GroupsSkipped++
			continue
		}
		if err := r.createCluster(group, members); err != nil {
			return err
		}
	}

	for _, id := range r.universe.SortedIDs() {
		clusters := r.geneClusters[id]
		if len(clusters) == 0 {
			continue
		}
		g, _ := r.universe.Get(id)
		for _, c := range clusters {
			g.AddParent(r.byKey[c].Coordinates)
		}
		if len(clusters) > 1 {
			g.AddLabels(concept.LabelNoQueryDictionary, concept.LabelNoSuggestions)
			r.stats.MultiClusterGenes++
		}
	}
	return nil
}

// knownMembers returns the group gene followed by its orthologs, restricted
// to genes in the universe and without repeats.
func (r *run) knownMembers(group string, orthologs []string) []*concept.Concept {
	var out []*concept.Concept
	seen := make(map[string]bool, len(orthologs)+1)
	for _, id := range append([]string{group}, orthologs...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		if g, ok := r.universe.Get(id); ok {
			out = append(out, g)
		}
	}
	return out
}

func (r *run) createCluster(group string, members []*concept.Concept) error {
	coords := concept.NewCoordinates(PrefixGeneGroup+group, concept.SourceGeneGroup)
	cluster := concept.NewAggregate(coords, concept.LabelAggregateGeneGroup, concept.LabelNoProcessingGazetteer)
	if rep, ok := r.universe.Get(group); ok {
		cluster.PrefName = rep.PrefName
	} else {
		cluster.PrefName = members[0].PrefName
	}
	if err := r.register(cluster); err != nil {
		return err
	}

	key := cluster.Key()
	for _, g := range members {
		id := g.Coordinates.SourceID
		cluster.AddElement(g.Coordinates)
		cluster.AddFacets(g.Facets...)
		r.clusterMembers[key] = append(r.clusterMembers[key], id)
		r.geneClusters[id] = appendUnique(r.geneClusters[id], key)
		r.forest.AddEdge(g.Key(), key)
	}
	r.stats.Clusters++
	r.log.Debug("orthology cluster created",
		logging.String("coordinate", coords.SourceID),
		logging.Int("genes", len(members)))
	return nil
}

//Personal.AI order the ending
