package importer

import (
	"context"
	"strings"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	infraNeo4j "github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/database/neo4j"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/database/neo4j/repositories"
	infraRedis "github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/database/redis"
	infraKafka "github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/messaging/kafka"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/search/opensearch"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/storage/minio"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// SinkOpener builds the sink registered under a config sink name.
type SinkOpener func(ctx context.Context, cfg *config.Config, opener *SourceOpener, runID string, log logging.Logger) (Sink, error)

var sinkOpeners = map[string]SinkOpener{
	config.SinkNeo4j:      openNeo4jSink,
	config.SinkKafka:      openKafkaSink,
	config.SinkOpenSearch: openOpenSearchSink,
	config.SinkJSON:       openJSONSink,
}

// OpenSinks connects every sink listed in cfg.Import.Sinks and prepares its
// schema (constraints, index, topic).  On failure the sinks opened so far
// are closed.
func OpenSinks(ctx context.Context, cfg *config.Config, opener *SourceOpener, runID string, log logging.Logger) ([]Sink, error) {
	sinks := make([]Sink, 0, len(cfg.Import.Sinks))
	for _, name := range cfg.Import.Sinks {
		open, ok := sinkOpeners[strings.ToLower(name)]
		if !ok {
			closeAll(ctx, sinks, log)
			return nil, errors.New(errors.ErrCodeSinkUnknown, "unknown concept sink").WithDetail(name)
		}
		s, err := open(ctx, cfg, opener, runID, log)
		if err != nil {
			closeAll(ctx, sinks, log)
			return nil, err
		}
		log.Info("sink ready", logging.String("sink", s.Name()))
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func openNeo4jSink(ctx context.Context, cfg *config.Config, _ *SourceOpener, _ string, log logging.Logger) (Sink, error) {
	d, err := infraNeo4j.NewDriver(ctx, cfg.Neo4j, log)
	if err != nil {
		return nil, err
	}
	repo := repositories.NewConceptRepository(d, log)
	if err := repo.EnsureConstraints(ctx); err != nil {
		_ = repo.Close(ctx)
		return nil, err
	}
	return repo, nil
}

func openKafkaSink(ctx context.Context, cfg *config.Config, _ *SourceOpener, runID string, log logging.Logger) (Sink, error) {
	if cfg.Kafka.CreateTopic {
		tm, err := infraKafka.NewTopicManager(cfg.Kafka.Brokers, log)
		if err != nil {
			return nil, err
		}
		err = tm.EnsureTopic(ctx, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor)
		_ = tm.Close()
		if err != nil {
			return nil, err
		}
	}
	exp, err := infraKafka.NewConceptExporter(cfg.Kafka, runID, log)
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func openOpenSearchSink(ctx context.Context, cfg *config.Config, _ *SourceOpener, _ string, log logging.Logger) (Sink, error) {
	client, err := opensearch.NewClient(ctx, cfg.OpenSearch, log)
	if err != nil {
		return nil, err
	}
	idx := opensearch.NewSuggestionIndexer(client, cfg.OpenSearch.Index, log)
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func openJSONSink(ctx context.Context, cfg *config.Config, opener *SourceOpener, _ string, log logging.Logger) (Sink, error) {
	w, err := opener.Create(ctx, cfg.Import.JSONOutputPath)
	if err != nil {
		return nil, err
	}
	return NewJSONSink(w, log), nil
}

// OpenObjectStore returns the MinIO client when any configured location is
// an object URL, and nil otherwise.
func OpenObjectStore(cfg *config.Config, log logging.Logger) (ObjectStore, error) {
	if !cfg.UsesObjectStore() {
		return nil, nil
	}
	client, err := minio.NewMinIOClient(cfg.MinIO, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// OpenLock connects to Redis and returns the import lock owned by runID.
// The returned close function disconnects the client.
func OpenLock(ctx context.Context, cfg *config.Config, runID string, log logging.Logger) (Locker, func() error, error) {
	client, err := infraRedis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	lock := infraRedis.NewImportLock(client, cfg.Import.LockKey, log,
		infraRedis.WithLockTTL(cfg.Import.LockTTL),
		infraRedis.WithOwner(runID))
	return lock, client.Close, nil
}

func closeAll(ctx context.Context, sinks []Sink, log logging.Logger) error {
	var first error
	for _, s := range sinks {
		if err := s.Close(ctx); err != nil {
			log.Error("failed to close sink", logging.String("sink", s.Name()), logging.Err(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

//Personal.AI order the ending
