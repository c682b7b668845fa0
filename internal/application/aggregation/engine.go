// Package aggregation builds the orthology and homology aggregate hierarchy
// over a set of gene concepts.
//
// A run goes through fixed stages on one goroutine: orthology clusters, top
// orthology unification, optional HomoloGene clusters, top homology
// unification and a final check that every participating gene converges on
// one aggregate root.  Nothing in this package performs I/O besides reading
// the relation files it is handed.
package aggregation

import (
	"context"
	"strconv"
	"time"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/gene"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/hierarchy"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// Coordinate prefixes of the aggregate kinds.
const (
	PrefixGeneGroup    = "genegroup:"
	PrefixTopOrthology = "genegroup:toporthology:"
	PrefixTopHomology  = "genegroup:tophomology:"
	PrefixHomoloGene   = "homologene:"
)

// Stage names reported to the Observer.
const (
	StageClusters     = "clusters"
	StageTopOrthology = "top_orthology"
	StageHomology     = "homology"
	StageTopHomology  = "top_homology"
	StageVerify       = "verify"
)

// Observer receives stage timings and aggregate counts.
type Observer interface {
	StageCompleted(stage string, took time.Duration)
	AggregatesCreated(kind string, n int)
}

type nopObserver struct{}

func (nopObserver) StageCompleted(string, time.Duration) {}
func (nopObserver) AggregatesCreated(string, int)        {}

// Sequence hands out numbered coordinates for one aggregate kind.  Each run
// owns its sequences, so ids restart at zero for every run.
type Sequence struct {
	prefix string
	next   int
}

func NewSequence(prefix string) Sequence {
	return Sequence{prefix: prefix}
}

func (s *Sequence) Next() string {
	id := s.prefix + strconv.Itoa(s.next)
	s.next++
	return id
}

// Issued returns how many ids were handed out.
func (s *Sequence) Issued() int { return s.next }

// Input is the data of one engine run.
type Input struct {
	Universe *gene.Universe

	// Relations may be nil, in which case no orthology aggregation happens and
	// genes pass through unparented.
	Relations *RelationIndex

	// Homology is optional.
	Homology *HomologyIndex
}

// Stats summarises a run.
type Stats struct {
	Genes                   int `json:"genes"`
	Groups                  int `json:"groups"`
	GroupsSkipped           int `json:"groups_skipped"`
	Clusters                int `json:"clusters"`
	MultiClusterGenes       int `json:"multi_cluster_genes"`
	TopOrthology            int `json:"top_orthology"`
	HomologyClusters        int `json:"homology_clusters"`
	HomologyClustersSkipped int `json:"homology_clusters_skipped"`
	TopHomology             int `json:"top_homology"`
	TopHomologyExtended     int `json:"top_homology_extended"`
	Aggregates              int `json:"aggregates"`
}

// Result holds the output of a run.
type Result struct {
	Genes      []*concept.Concept
	Aggregates []*concept.Concept
	Forest     *hierarchy.Forest
	Stats      Stats
}

// Stream yields the gene concepts followed by the aggregates in creation
// order.
func (r *Result) Stream() concept.Stream {
	return concept.NewSliceStream(r.Genes, r.Aggregates)
}

func (r *Result) Len() int { return len(r.Genes) + len(r.Aggregates) }

// Option configures an Engine.
type Option func(*Engine)

// WithObserver reports stage timings to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// Engine runs aggregations.  It holds no per-run state and may be reused.
type Engine struct {
	log      logging.Logger
	observer Observer
}

func NewEngine(log logging.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logging.NewNopLogger()
	}
	e := &Engine{log: log.Named("aggregation"), observer: nopObserver{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run is the state of one aggregation pass.
type run struct {
	log      logging.Logger
	universe *gene.Universe
	forest   *hierarchy.Forest

	aggregates []*concept.Concept
	byKey      map[concept.Coordinate]*concept.Concept

	clusterMembers map[concept.Coordinate][]string
	geneClusters   map[string][]concept.Coordinate
	clusterTop     map[concept.Coordinate]*concept.Concept
	geneHomology   map[string][]concept.Coordinate

	rootPrefixes []string
	topOrthology Sequence
	topHomology  Sequence
	stats        Stats
}

func newRun(log logging.Logger, u *gene.Universe) *run {
	return &run{
		log:            log,
		universe:       u,
		forest:         hierarchy.NewForest(),
		byKey:          make(map[concept.Coordinate]*concept.Concept),
		clusterMembers: make(map[concept.Coordinate][]string),
		geneClusters:   make(map[string][]concept.Coordinate),
		clusterTop:     make(map[concept.Coordinate]*concept.Concept),
		geneHomology:   make(map[string][]concept.Coordinate),
		rootPrefixes:   []string{PrefixGeneGroup},
		topOrthology:   NewSequence(PrefixTopOrthology),
		topHomology:    NewSequence(PrefixTopHomology),
		stats:          Stats{Genes: u.Len()},
	}
}

// register records a newly created aggregate.  Creating a coordinate twice is
// a consistency error.
func (r *run) register(c *concept.Concept) error {
	key := c.Key()
	if _, dup := r.byKey[key]; dup {
		return errors.DataConsistency("aggregate coordinate created twice", key.String())
	}
	r.byKey[key] = c
	r.aggregates = append(r.aggregates, c)
	return nil
}

func appendUnique(list []concept.Coordinate, c concept.Coordinate) []concept.Coordinate {
	for _, existing := range list {
		if existing == c {
			return list
		}
	}
	return append(list, c)
}

// Run aggregates in.Universe.  The gene concepts are modified in place by
// appending parents and labels.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	if in.Universe == nil {
		return nil, errors.InvalidParam("aggregation input has no gene universe")
	}
	r := newRun(e.log, in.Universe)

	stage := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := fn(); err != nil {
			return err
		}
		took := time.Since(start)
		e.observer.StageCompleted(name, took)
		e.log.Info("aggregation stage finished",
			logging.String("stage", name),
			logging.Duration("took", took),
			logging.Int("aggregates", len(r.aggregates)))
		return nil
	}

	if in.Relations == nil {
		e.log.Info("no ortholog relations supplied, genes pass through without orthology aggregation",
			logging.Int("genes", in.Universe.Len()))
	} else {
		r.stats.Groups = in.Relations.Len()
		if err := stage(StageClusters, func() error { return r.buildClusters(ctx, in.Relations) }); err != nil {
			return nil, err
		}
		if err := stage(StageTopOrthology, func() error { return r.unifyTopOrthology(ctx) }); err != nil {
			return nil, err
		}
	}
	if in.Homology != nil {
		if err := stage(StageHomology, func() error { return r.attachHomology(ctx, in.Homology) }); err != nil {
			return nil, err
		}
	}
	if err := stage(StageTopHomology, func() error { return r.unifyTopHomology(ctx) }); err != nil {
		return nil, err
	}
	if err := stage(StageVerify, func() error { return r.verify(ctx) }); err != nil {
		return nil, err
	}

	r.stats.Aggregates = len(r.aggregates)
	e.observer.AggregatesCreated(concept.LabelAggregateGeneGroup, r.stats.Clusters)
	e.observer.AggregatesCreated(concept.LabelAggregateTopOrthology, r.stats.TopOrthology)
	e.observer.AggregatesCreated(concept.LabelAggregateHomoloGene, r.stats.HomologyClusters)
	e.observer.AggregatesCreated(concept.LabelAggregateTopHomology, r.stats.TopHomology)

	e.log.Info("aggregation finished",
		logging.Int("genes", r.stats.Genes),
		logging.Int("clusters", r.stats.Clusters),
		logging.Int("top_orthology", r.stats.TopOrthology),
		logging.Int("homology_clusters", r.stats.HomologyClusters),
		logging.Int("top_homology", r.stats.TopHomology))

	return &Result{
		Genes:      in.Universe.Concepts(),
		Aggregates: r.aggregates,
		Forest:     r.forest,
		Stats:      r.stats,
	}, nil
}

//Personal.AI order the ending
