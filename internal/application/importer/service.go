// Package importer runs one concept import: it reads the gene reference
// files, aggregates them and streams the resulting concepts into the
// configured sinks.
package importer

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/application/aggregation"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/gene"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// Input kinds reported through Metrics.RecordsParsed.
const (
	SourceOrganisms  = "organisms"
	SourceGeneInfo   = "gene_info"
	SourceOrthologs  = "gene_orthologs"
	SourceHomoloGene = "homologene"
)

// Report summarises a finished import.
type Report struct {
	RunID    string            `json:"run_id"`
	Sinks    []string          `json:"sinks"`
	Concepts int               `json:"concepts"`
	Written  int               `json:"written"`
	Batches  int               `json:"batches"`
	Stats    aggregation.Stats `json:"stats"`
	Took     time.Duration     `json:"took"`
}

// Option configures a Service.
type Option func(*Service)

// WithSinks sets the sinks the concept stream is written to.  Without sinks
// Run only aggregates.  The service closes every sink at the end of Run.
func WithSinks(sinks ...Sink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

func WithLock(l Locker) Option {
	return func(s *Service) { s.lock = l }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithProgress(p *Progress) Option {
	return func(s *Service) {
		if p != nil {
			s.progress = p
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// Service runs imports.  A Service is used for a single Run.
type Service struct {
	cfg      config.ImportConfig
	opener   *SourceOpener
	sinks    []Sink
	lock     Locker
	metrics  Metrics
	progress *Progress
	runID    string
	logger   logging.Logger
}

func NewService(cfg config.ImportConfig, opener *SourceOpener, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if opener == nil {
		opener = NewSourceOpener(nil)
	}
	s := &Service{
		cfg:      cfg,
		opener:   opener,
		metrics:  nopMetrics{},
		progress: NewProgress(),
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.Named("importer").With(logging.String("run_id", s.runID))
	return s
}

func (s *Service) RunID() string { return s.runID }

func (s *Service) Progress() *Progress { return s.progress }

// Run takes the import lock, aggregates the inputs and delivers the concept
// stream to every sink.  Any error aborts the whole import.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	s.progress.Start(s.runID)
	s.metrics.ImportStarted()
	s.logger.Info("import started", logging.Strings("sinks", sinkNames(s.sinks)))

	report, err := s.run(ctx)
	took := time.Since(start)
	s.metrics.ImportFinished(took, err)
	s.progress.Finish(err)
	if err != nil {
		s.logger.Error("import failed", logging.Duration("took", took), logging.Err(err))
		return nil, err
	}
	report.Took = took
	s.logger.Info("import finished",
		logging.Int("concepts", report.Concepts),
		logging.Int("written", report.Written),
		logging.Int("aggregates", report.Stats.Aggregates),
		logging.Duration("took", took))
	return report, nil
}

func (s *Service) run(ctx context.Context) (report *Report, err error) {
	locked := false
	// Sinks are flushed and closed before the lock is released.
	defer func() {
		if cerr := closeAll(context.WithoutCancel(ctx), s.sinks, s.logger); cerr != nil && err == nil {
			report, err = nil, cerr
		}
		if !locked {
			return
		}
		if rerr := s.lock.Release(context.WithoutCancel(ctx)); rerr != nil {
			s.logger.Warn("failed to release import lock", logging.Err(rerr))
		}
	}()

	if s.lock != nil {
		if err := s.lock.Acquire(ctx); err != nil {
			return nil, err
		}
		locked = true
	}

	res, err := s.Aggregate(ctx)
	if err != nil {
		return nil, err
	}
	report = &Report{
		RunID:    s.runID,
		Sinks:    sinkNames(s.sinks),
		Concepts: res.Len(),
		Stats:    res.Stats,
	}
	if len(s.sinks) == 0 {
		return report, nil
	}

	s.progress.SetPhase(PhaseWriting)
	err = concept.Batch(ctx, res.Stream(), s.cfg.BatchSize, func(batch []*concept.Concept) error {
		if err := writeBatch(ctx, s.sinks, batch, s.metrics); err != nil {
			return err
		}
		report.Written += len(batch)
		report.Batches++
		s.progress.Advance(len(batch))
		s.logger.Debug("batch written", logging.Int("batch", report.Batches), logging.Int("size", len(batch)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Aggregate reads the configured inputs and runs the aggregation engine.
// It neither locks nor writes.
func (s *Service) Aggregate(ctx context.Context) (*aggregation.Result, error) {
	s.progress.SetPhase(PhaseReading)

	var organisms map[string]struct{}
	if path := s.cfg.OrganismsPath; path != "" {
		err := s.read(ctx, path, func(r io.Reader) (err error) {
			organisms, err = gene.ReadOrganisms(ctx, r)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.metrics.RecordsParsed(SourceOrganisms, len(organisms))
	}

	if s.cfg.GeneInfoPath == "" {
		return nil, errors.NewValidationError("import.gene_info_path", "gene_info path is required")
	}
	var universe *gene.Universe
	err := s.read(ctx, s.cfg.GeneInfoPath, func(r io.Reader) (err error) {
		universe, err = gene.ReadGeneInfo(ctx, r, gene.ReadOptions{
			Organisms: organisms,
			Facets:    s.cfg.GeneFacets,
			Labels:    s.cfg.GeneLabels,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordsParsed(SourceGeneInfo, universe.Len())

	var relations *aggregation.RelationIndex
	if path := s.cfg.OrthologPath; path != "" {
		err := s.read(ctx, path, func(r io.Reader) (err error) {
			relations, err = aggregation.ParseOrthologyRelations(ctx, r)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.metrics.RecordsParsed(SourceOrthologs, relations.Rows())
		for rel, n := range relations.Ignored() {
			s.logger.Debug("ignored relation rows", logging.String("relationship", rel), logging.Int("rows", n))
		}
	}

	var homology *aggregation.HomologyIndex
	if path := s.cfg.HomologenePath; path != "" {
		err := s.read(ctx, path, func(r io.Reader) (err error) {
			homology, err = aggregation.ParseHomoloGene(ctx, r)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.metrics.RecordsParsed(SourceHomoloGene, homology.Len())
	}

	s.progress.SetPhase(PhaseAggregating)
	engine := aggregation.NewEngine(s.logger, aggregation.WithObserver(s.metrics))
	res, err := engine.Run(ctx, aggregation.Input{
		Universe:  universe,
		Relations: relations,
		Homology:  homology,
	})
	if err != nil {
		return nil, err
	}
	s.progress.Aggregated(res.Stats, res.Len())
	return res, nil
}

func (s *Service) read(ctx context.Context, path string, fn func(io.Reader) error) error {
	rc, err := s.opener.Open(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()
	s.logger.Debug("reading input", logging.String("path", path))
	return fn(rc)
}

//Personal.AI order the ending
