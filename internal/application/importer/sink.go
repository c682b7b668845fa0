package importer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/application/aggregation"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// Sink receives the concept stream in batches.  Batches arrive in stream
// order; Close is called exactly once after the last batch or on failure.
type Sink interface {
	Name() string
	Write(ctx context.Context, concepts []*concept.Concept) error
	Close(ctx context.Context) error
}

// Locker serialises imports into the same target.
type Locker interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// Metrics receives import measurements.  *prometheus.ImportMetrics
// satisfies it.
type Metrics interface {
	aggregation.Observer
	RecordsParsed(source string, n int)
	BatchWritten(sink string, n int, took time.Duration, err error)
	ImportStarted()
	ImportFinished(took time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) StageCompleted(string, time.Duration)           {}
func (nopMetrics) AggregatesCreated(string, int)                  {}
func (nopMetrics) RecordsParsed(string, int)                      {}
func (nopMetrics) BatchWritten(string, int, time.Duration, error) {}
func (nopMetrics) ImportStarted()                                 {}
func (nopMetrics) ImportFinished(time.Duration, error)            {}

// writeBatch hands batch to every sink concurrently.  The first failure
// cancels the remaining writes.
func writeBatch(ctx context.Context, sinks []Sink, batch []*concept.Concept, m Metrics) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		s := s
		g.Go(func() error {
			start := time.Now()
			err := s.Write(gctx, batch)
			m.BatchWritten(s.Name(), len(batch), time.Since(start), err)
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("sink %s failed", s.Name()))
			}
			return nil
		})
	}
	return g.Wait()
}

func sinkNames(sinks []Sink) []string {
	out := make([]string, len(sinks))
	for i, s := range sinks {
		out[i] = s.Name()
	}
	return out
}

//Personal.AI order the ending
