// Package concept holds the data model emitted by every importer stage: gene
// concepts read from reference files and the aggregate concepts built on top
// of them.
package concept

import "sort"

// Sources.
const (
	SourceNCBIGene   = "NCBI Gene"
	SourceGeneGroup  = "GeneGroup"
	SourceHomoloGene = "HomoloGene"
)

// General labels.
const (
	LabelAggregateGeneGroup    = "AGGREGATE_GENEGROUP"
	LabelAggregateTopOrthology = "AGGREGATE_TOP_ORTHOLOGY"
	LabelAggregateTopHomology  = "AGGREGATE_TOP_HOMOLOGY"
	LabelAggregateHomoloGene   = "AGGREGATE_HOMOLOGENE"
	LabelNoProcessingGazetteer = "NO_PROCESSING_GAZETTEER"
	LabelNoQueryDictionary     = "NO_QUERY_DICTIONARY"
	LabelNoSuggestions         = "NO_SUGGESTIONS"
)

// Properties an aggregate may copy from its elements.
const (
	PropPreferredName = "preferredName"
	PropFacets        = "facets"
)

// Concept is one node of the concept graph.
type Concept struct {
	Coordinates                 Coordinates   `json:"coordinates"`
	ParentCoordinates           []Coordinates `json:"parentCoordinates,omitempty"`
	ElementCoordinates          []Coordinates `json:"elementCoordinates,omitempty"`
	GeneralLabels               []string      `json:"generalLabels,omitempty"`
	Aggregate                   bool          `json:"aggregate"`
	AggregateIncludeInHierarchy bool          `json:"aggregateIncludeInHierarchy,omitempty"`
	AggregateCopyProperties     []string      `json:"aggregateCopyProperties,omitempty"`
	PrefName                    string        `json:"preferredName,omitempty"`
	Synonyms                    []string      `json:"synonyms,omitempty"`
	Descriptions                []string      `json:"descriptions,omitempty"`
	Facets                      []string      `json:"facets,omitempty"`
}

// NewAggregate creates an aggregate concept that is part of the hierarchy.
func NewAggregate(coords Coordinates, labels ...string) *Concept {
	c := &Concept{
		Coordinates:                 coords,
		Aggregate:                   true,
		AggregateIncludeInHierarchy: true,
	}
	c.AddLabels(labels...)
	return c
}

func (c *Concept) Key() Coordinate {
	return c.Coordinates.Key()
}

// AddParent appends p unless a parent with the same key exists.  It reports
// whether p was added.
func (c *Concept) AddParent(p Coordinates) bool {
	if c.HasParent(p.Key()) {
		return false
	}
	c.ParentCoordinates = append(c.ParentCoordinates, p)
	return true
}

func (c *Concept) HasParent(key Coordinate) bool {
	for _, p := range c.ParentCoordinates {
		if p.Key() == key {
			return true
		}
	}
	return false
}

// AddElement appends e unless an element with the same key exists.
func (c *Concept) AddElement(e Coordinates) bool {
	if c.HasElement(e.Key()) {
		return false
	}
	c.ElementCoordinates = append(c.ElementCoordinates, e)
	return true
}

func (c *Concept) HasElement(key Coordinate) bool {
	for _, e := range c.ElementCoordinates {
		if e.Key() == key {
			return true
		}
	}
	return false
}

// AddLabels inserts labels keeping GeneralLabels sorted and unique.
func (c *Concept) AddLabels(labels ...string) {
	for _, l := range labels {
		i := sort.SearchStrings(c.GeneralLabels, l)
		if i < len(c.GeneralLabels) && c.GeneralLabels[i] == l {
			continue
		}
		c.GeneralLabels = append(c.GeneralLabels, "")
		copy(c.GeneralLabels[i+1:], c.GeneralLabels[i:])
		c.GeneralLabels[i] = l
	}
}

func (c *Concept) HasLabel(label string) bool {
	i := sort.SearchStrings(c.GeneralLabels, label)
	return i < len(c.GeneralLabels) && c.GeneralLabels[i] == label
}

// AddFacets unions facets into the concept, preserving first-seen order.
func (c *Concept) AddFacets(facets ...string) {
	for _, f := range facets {
		if !containsString(c.Facets, f) {
			c.Facets = append(c.Facets, f)
		}
	}
}

// AddSynonyms appends synonyms that are neither present nor equal to the
// preferred name.
func (c *Concept) AddSynonyms(synonyms ...string) {
	for _, s := range synonyms {
		if s == "" || s == c.PrefName || containsString(c.Synonyms, s) {
			continue
		}
		c.Synonyms = append(c.Synonyms, s)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
