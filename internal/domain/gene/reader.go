package gene

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/tabular"
)

// gene_info columns.
const (
	colTaxID = iota
	colGeneID
	colSymbol
	colLocusTag
	colSynonyms
	colDBXrefs
	colChromosome
	colMapLocation
	colDescription
	colTypeOfGene
	colNomenclatureSymbol
	colNomenclatureFullName

	minGeneInfoColumns = colDescription + 1
)

const emptyField = "-"

// ReadOptions tune ReadGeneInfo.
type ReadOptions struct {
	// Organisms restricts the universe to these tax ids.  Nil means all.
	Organisms map[string]struct{}

	// Facets and Labels are attached to every gene concept.
	Facets []string
	Labels []string
}

// ReadGeneInfo reads an NCBI gene_info file into a Universe.
//
// Columns are tax_id, GeneID, Symbol, LocusTag, Synonyms, dbXrefs,
// chromosome, map_location, description and optionally type_of_gene and the
// nomenclature symbol and full name.  "-" marks an empty field and synonyms
// are "|" separated.  Lines starting with "#" are skipped.
func ReadGeneInfo(ctx context.Context, r io.Reader, opts ReadOptions) (*Universe, error) {
	u := NewUniverse()
	err := tabular.Scan(ctx, r, "gene_info", func(line int, fields []string) error {
		if len(fields) < minGeneInfoColumns {
			return errors.MalformedRecord("gene_info", line,
				fmt.Sprintf("expected at least %d fields, got %d", minGeneInfoColumns, len(fields)))
		}
		taxID := fields[colTaxID]
		if opts.Organisms != nil {
			if _, ok := opts.Organisms[taxID]; !ok {
				return nil
			}
		}
		id := fields[colGeneID]
		if id == "" || id == emptyField {
			return errors.MalformedRecord("gene_info", line, "empty GeneID")
		}
		if u.Has(id) {
			return errors.MalformedRecord("gene_info", line, "duplicate GeneID "+id)
		}
		return u.Add(geneConcept(fields, opts), taxID)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func geneConcept(fields []string, opts ReadOptions) *concept.Concept {
	g := &concept.Concept{
		Coordinates: concept.NewCoordinates(fields[colGeneID], concept.SourceNCBIGene),
		PrefName:    value(fields[colSymbol]),
	}
	if v := optional(fields, colNomenclatureFullName); v != "" {
		g.AddSynonyms(v)
	}
	if v := optional(fields, colNomenclatureSymbol); v != "" {
		g.AddSynonyms(v)
	}
	if syn := value(fields[colSynonyms]); syn != "" {
		g.AddSynonyms(strings.Split(syn, "|")...)
	}
	if d := value(fields[colDescription]); d != "" {
		g.Descriptions = append(g.Descriptions, d)
	}
	g.AddFacets(opts.Facets...)
	g.AddLabels(opts.Labels...)
	return g
}

func value(s string) string {
	s = strings.TrimSpace(s)
	if s == emptyField {
		return ""
	}
	return s
}

func optional(fields []string, col int) string {
	if col >= len(fields) {
		return ""
	}
	return value(fields[col])
}

// ReadOrganisms reads one tax id per line.  The first tab-separated field of
// each line is used so that NCBI taxonomy exports can be passed unchanged.
func ReadOrganisms(ctx context.Context, r io.Reader) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	err := tabular.Scan(ctx, r, "organisms", func(_ int, fields []string) error {
		if id := strings.TrimSpace(fields[0]); id != "" {
			out[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

//Personal.AI order the ending
