package aggregation

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/tabular"
)

const homologeneColumns = 4

// HomologyMember is one gene row of a HomoloGene cluster.
type HomologyMember struct {
	TaxID  string
	GeneID string
	Symbol string
}

// HomologyIndex holds externally computed homology clusters keyed by
// HomoloGene id.
type HomologyIndex struct {
	clusters map[string][]HomologyMember
}

func NewHomologyIndex() *HomologyIndex {
	return &HomologyIndex{clusters: make(map[string][]HomologyMember)}
}

// Add appends m to cluster hid.  A gene listed twice in a cluster is kept once.
func (h *HomologyIndex) Add(hid string, m HomologyMember) {
	for _, existing := range h.clusters[hid] {
		if existing.GeneID == m.GeneID {
			return
		}
	}
	h.clusters[hid] = append(h.clusters[hid], m)
}

// ParseHomoloGene reads homologene.data: HID, TaxID, GeneID, Symbol,
// ProteinGI and ProteinAcc, tab separated.  Only the first four columns are
// required.
func ParseHomoloGene(ctx context.Context, r io.Reader) (*HomologyIndex, error) {
	h := NewHomologyIndex()
	err := tabular.Scan(ctx, r, "homologene", func(line int, fields []string) error {
		if len(fields) < homologeneColumns {
			return errors.MalformedRecord("homologene", line,
				fmt.Sprintf("expected at least %d fields, got %d", homologeneColumns, len(fields)))
		}
		hid := strings.TrimSpace(fields[0])
		geneID := strings.TrimSpace(fields[2])
		if hid == "" || geneID == "" {
			return errors.MalformedRecord("homologene", line, "empty HID or GeneID")
		}
		h.Add(hid, HomologyMember{
			TaxID:  strings.TrimSpace(fields[1]),
			GeneID: geneID,
			Symbol: strings.TrimSpace(fields[3]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// IDs returns the HomoloGene ids in sorted order.
func (h *HomologyIndex) IDs() []string {
	out := make([]string, 0, len(h.clusters))
	for id := range h.clusters {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (h *HomologyIndex) Members(hid string) []HomologyMember {
	return h.clusters[hid]
}

func (h *HomologyIndex) Len() int { return len(h.clusters) }

// attachHomology turns every HomoloGene cluster with more than one known gene
// into an aggregate that becomes a parent of its genes.  The homologene:
// prefix is registered as an aggregate root kind for the top homology stage.
func (r *run) attachHomology(ctx context.Context, h *HomologyIndex) error {
	r.rootPrefixes = append(r.rootPrefixes, PrefixHomoloGene)

	for i, hid := range h.IDs() {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var members []*concept.Concept
		prefName := ""
		for _, m := range h.Members(hid) {
			g, ok := r.universe.Get(m.GeneID)
			if !ok {
				continue
			}
			members = append(members, g)
			if prefName == "" {
				prefName = m.Symbol
			}
		}
		if len(members) <= 1 {
			r.stats.HomologyClustersSkipped++
			continue
		}

		coords := concept.NewCoordinates(PrefixHomoloGene+hid, concept.SourceHomoloGene)
		hc := concept.NewAggregate(coords, concept.LabelAggregateHomoloGene, concept.LabelNoProcessingGazetteer)
		hc.PrefName = prefName
		if err := r.register(hc); err != nil {
			return err
		}
		for _, g := range members {
			hc.AddElement(g.Coordinates)
			hc.AddFacets(g.Facets...)
			g.AddParent(coords)
			r.forest.AddEdge(g.Key(), hc.Key())
			r.geneHomology[g.Coordinates.SourceID] = appendUnique(r.geneHomology[g.Coordinates.SourceID], hc.Key())
		}
		r.stats.HomologyClusters++
		r.log.Debug("homology cluster created",
			logging.String("coordinate", coords.SourceID),
			logging.Int("genes", len(members)))
	}
	return nil
}

//Personal.AI order the ending
