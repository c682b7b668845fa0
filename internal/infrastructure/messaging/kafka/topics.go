package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

const (
	EventConceptUpserted = "concept.upserted"
	EventSource          = "conceptdb"
	SchemaVersion        = "v1"
)

// Header keys set on every exported message.
const (
	HeaderRunID         = "run_id"
	HeaderEventType     = "event_type"
	HeaderSchemaVersion = "schema_version"
)

// ConceptEnvelope wraps one exported concept.
type ConceptEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	RunID         string          `json:"run_id"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewConceptEnvelope marshals c into a concept.upserted envelope.
func NewConceptEnvelope(runID string, c *concept.Concept) (*ConceptEnvelope, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal concept").
			WithDetail(c.Key().String())
	}
	return &ConceptEnvelope{
		EventID:       uuid.New().String(),
		EventType:     EventConceptUpserted,
		Source:        EventSource,
		RunID:         runID,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

// DecodeConcept unmarshals the payload.
func (e *ConceptEnvelope) DecodeConcept() (*concept.Concept, error) {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil, errors.New(errors.ErrCodeSerialization, "envelope has no payload")
	}
	var c concept.Concept
	if err := json.Unmarshal(e.Payload, &c); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal concept")
	}
	return &c, nil
}

// ToMessage keys the message by the concept coordinate so that re-exports of
// one concept land on the same partition.
func (e *ConceptEnvelope) ToMessage(key string) (kafka.Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: val,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: HeaderRunID, Value: []byte(e.RunID)},
			{Key: HeaderEventType, Value: []byte(e.EventType)},
			{Key: HeaderSchemaVersion, Value: []byte(e.SchemaVersion)},
		},
	}, nil
}

// MessageToEnvelope decodes a consumed message.
func MessageToEnvelope(msg kafka.Message) (*ConceptEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env ConceptEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates the export topic when asked to.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to dial kafka").WithDetail(brokers[0])
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

// EnsureTopic creates name unless it already has partitions.
func (m *TopicManager) EnsureTopic(ctx context.Context, name string, partitions, replication int) error {
	if name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if partitions <= 0 || replication <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "invalid topic layout %d/%d", partitions, replication)
	}
	if exists, _ := m.TopicExists(ctx, name); exists {
		return nil
	}
	err := m.conn.CreateTopics(kafka.TopicConfig{
		Topic:             name,
		NumPartitions:     partitions,
		ReplicationFactor: replication,
	})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create topic").WithDetail(name)
	}
	m.logger.Info("Topic created", logging.String("topic", name), logging.Int("partitions", partitions))
	return nil
}

func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

//Personal.AI order the ending
