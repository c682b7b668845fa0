package kafka

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// SinkName identifies the Kafka exporter in import.sinks.
const SinkName = "kafka"

var ErrProducerClosed = errors.New(errors.ErrCodeSinkWriteFailed, "kafka exporter closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// ConceptExporter publishes every concept of an import as one JSON envelope.
type ConceptExporter struct {
	writer WriterInterface
	runID  string
	logger logging.Logger
	closed atomic.Bool

	sent   atomic.Int64
	failed atomic.Int64
}

// NewConceptExporter builds a hash-balanced writer for cfg.Topic.
func NewConceptExporter(cfg config.KafkaConfig, runID string, logger logging.Logger) (*ConceptExporter, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.NewValidationError("kafka.brokers", "brokers required")
	}
	if cfg.Topic == "" {
		return nil, errors.NewValidationError("kafka.topic", "topic required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  compressionCodec(cfg.Compression),
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return newConceptExporter(writer, runID, logger), nil
}

func newConceptExporter(w WriterInterface, runID string, logger logging.Logger) *ConceptExporter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ConceptExporter{writer: w, runID: runID, logger: logger.Named("kafka")}
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0)
	}
}

func (p *ConceptExporter) Name() string { return SinkName }

// Write publishes one batch.  Partial failures are reported as a single
// ErrCodeSinkWriteFailed error naming the failed count.
func (p *ConceptExporter) Write(ctx context.Context, concepts []*concept.Concept) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(concepts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(concepts))
	for _, c := range concepts {
		env, err := NewConceptEnvelope(p.runID, c)
		if err != nil {
			return err
		}
		msg, err := env.ToMessage(c.Key().String())
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	err := p.writer.WriteMessages(ctx, msgs...)
	if err == nil {
		p.sent.Add(int64(len(msgs)))
		p.logger.Debug("Batch published", logging.Int("messages", len(msgs)))
		return nil
	}

	failed := len(msgs)
	if writeErrs, ok := err.(kafka.WriteErrors); ok {
		failed = writeErrs.Count()
	}
	p.sent.Add(int64(len(msgs) - failed))
	p.failed.Add(int64(failed))
	return errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "kafka publish failed").
		WithDetail(fmt.Sprintf("%d of %d messages failed", failed, len(msgs)))
}

// Sent returns the number of messages acknowledged so far.
func (p *ConceptExporter) Sent() int64 { return p.sent.Load() }

// Failed returns the number of messages the brokers rejected.
func (p *ConceptExporter) Failed() int64 { return p.failed.Load() }

func (p *ConceptExporter) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka exporter closed",
		logging.Int64("sent", p.sent.Load()),
		logging.Int64("failed", p.failed.Load()))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to close kafka writer")
	}
	return nil
}

//Personal.AI order the ending
