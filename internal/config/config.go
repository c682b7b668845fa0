// Package config defines the configuration structures of conceptdb.  No I/O or
// parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// Sink names accepted in import.sinks.
const (
	SinkNeo4j      = "neo4j"
	SinkKafka      = "kafka"
	SinkOpenSearch = "opensearch"
	SinkJSON       = "json"
)

// KnownSinks lists every sink name the importer can dispatch to.
var KnownSinks = []string{SinkNeo4j, SinkKafka, SinkOpenSearch, SinkJSON}

// ImportConfig describes the input files of one import run and where the
// resulting concepts go.  Every path may be a local file (".gz" is
// decompressed) or an s3:// or minio:// object URL.
type ImportConfig struct {
	GeneInfoPath   string   `mapstructure:"gene_info_path"`
	OrthologPath   string   `mapstructure:"ortholog_path"`
	HomologenePath string   `mapstructure:"homologene_path"`
	OrganismsPath  string   `mapstructure:"organisms_path"`
	Sinks          []string `mapstructure:"sinks"`
	BatchSize      int      `mapstructure:"batch_size"`
	JSONOutputPath string   `mapstructure:"json_output_path"`

	// GeneFacets and GeneLabels are attached to every gene concept read from
	// gene_info.
	GeneFacets []string `mapstructure:"gene_facets"`
	GeneLabels []string `mapstructure:"gene_labels"`

	// Lock enables the Redis import lock keyed by LockKey.
	Lock    bool          `mapstructure:"lock"`
	LockKey string        `mapstructure:"lock_key"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// Neo4jConfig holds Neo4j connection parameters.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// KafkaConfig holds the parameters of the concept exporter producer.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
	Compression  string        `mapstructure:"compression"` // "none" | "gzip" | "snappy" | "lz4" | "zstd"

	// CreateTopic creates Topic before the first write if it does not exist.
	CreateTopic       bool `mapstructure:"create_topic"`
	Partitions        int  `mapstructure:"partitions"`
	ReplicationFactor int  `mapstructure:"replication_factor"`
}

// OpenSearchConfig holds the suggestion index connection parameters.
type OpenSearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
}

// MinIOConfig holds object-store parameters for s3:// and minio:// inputs.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// RedisConfig holds Redis connection parameters for the import lock.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // "stderr" | "stdout" | file path
}

// MetricsConfig controls the status server that exposes /metrics while an
// import runs.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

// Config is the root configuration structure.
type Config struct {
	Import     ImportConfig     `mapstructure:"import"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// HasSink reports whether name is listed in import.sinks.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Import.Sinks {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// UsesObjectStore reports whether any configured input or the NDJSON output
// is an object URL.
func (c *Config) UsesObjectStore() bool {
	for _, p := range []string{c.Import.GeneInfoPath, c.Import.OrthologPath, c.Import.HomologenePath, c.Import.OrganismsPath, c.Import.JSONOutputPath} {
		if strings.HasPrefix(p, "s3://") || strings.HasPrefix(p, "minio://") {
			return true
		}
	}
	return false
}

func invalid(field, format string, args ...interface{}) error {
	return errors.NewValidationError(field, fmt.Sprintf("config: "+format, args...))
}

// Validate checks the fully-populated Config.  Connection settings are only
// required for the sinks and services the import actually uses.
func (c *Config) Validate() error {
	if c.Import.GeneInfoPath == "" {
		return invalid("import.gene_info_path", "import.gene_info_path is required")
	}
	if c.Import.BatchSize < 1 {
		return invalid("import.batch_size", "import.batch_size must be >= 1, got %d", c.Import.BatchSize)
	}
	for _, s := range c.Import.Sinks {
		if !isKnownSink(s) {
			return invalid("import.sinks", "import.sinks contains unknown sink %q; expected one of %s",
				s, strings.Join(KnownSinks, "|"))
		}
	}

	if c.HasSink(SinkNeo4j) && c.Neo4j.URI == "" {
		return invalid("neo4j.uri", "neo4j.uri is required when the neo4j sink is enabled")
	}
	if c.HasSink(SinkKafka) {
		if len(c.Kafka.Brokers) == 0 {
			return invalid("kafka.brokers", "kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return invalid("kafka.topic", "kafka.topic is required when the kafka sink is enabled")
		}
	}
	if c.HasSink(SinkOpenSearch) {
		if len(c.OpenSearch.Addresses) == 0 {
			return invalid("opensearch.addresses", "opensearch.addresses must contain at least one address")
		}
		if c.OpenSearch.Index == "" {
			return invalid("opensearch.index", "opensearch.index is required when the opensearch sink is enabled")
		}
	}
	if c.HasSink(SinkJSON) && c.Import.JSONOutputPath == "" {
		return invalid("import.json_output_path", "import.json_output_path is required when the json sink is enabled")
	}
	if c.UsesObjectStore() && c.MinIO.Endpoint == "" {
		return invalid("minio.endpoint", "minio.endpoint is required for s3:// or minio:// locations")
	}
	if c.Import.Lock {
		if c.Redis.Addr == "" {
			return invalid("redis.addr", "redis.addr is required when import.lock is enabled")
		}
		if c.Import.LockTTL <= 0 {
			return invalid("import.lock_ttl", "import.lock_ttl must be positive")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", "log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format", "log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}

func isKnownSink(name string) bool {
	for _, k := range KnownSinks {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
