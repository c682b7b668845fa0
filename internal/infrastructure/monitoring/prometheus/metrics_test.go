package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImportMetrics_StagesAndAggregates(t *testing.T) {
	c := newTestCollector(t)
	m := NewImportMetrics(c)

	m.StageCompleted("clusters", 1500*time.Millisecond)
	m.AggregatesCreated("AGGREGATE_GENEGROUP", 5)
	m.AggregatesCreated("AGGREGATE_TOP_HOMOLOGY", 0)
	m.RecordsParsed("gene_orthologs", 9)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_aggregation_stage_duration_seconds_count{stage="clusters"} 1`)
	assert.Contains(t, out, `test_unit_aggregates_created_total{kind="AGGREGATE_GENEGROUP"} 5`)
	assert.NotContains(t, out, "AGGREGATE_TOP_HOMOLOGY")
	assert.Contains(t, out, `test_unit_records_read_total{source="gene_orthologs"} 9`)
}

func TestImportMetrics_SinkWrites(t *testing.T) {
	c := newTestCollector(t)
	m := NewImportMetrics(c)

	m.BatchWritten("neo4j", 100, 20*time.Millisecond, nil)
	m.BatchWritten("neo4j", 50, 10*time.Millisecond, nil)
	m.BatchWritten("kafka", 100, time.Second, errors.New("broker down"))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_concepts_written_total{sink="neo4j"} 150`)
	assert.Contains(t, out, `test_unit_sink_errors_total{sink="kafka"} 1`)
	assert.Contains(t, out, `test_unit_sink_write_duration_seconds_count{sink="kafka"} 1`)
}

func TestImportMetrics_Lifecycle(t *testing.T) {
	c := newTestCollector(t)
	m := NewImportMetrics(c)

	m.ImportStarted()
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_import_in_progress 1")

	m.ImportFinished(2*time.Second, nil)
	m.ImportFinished(time.Second, errors.New("boom"))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "test_unit_import_in_progress 0")
	assert.Contains(t, out, "test_unit_last_import_duration_seconds 1")
	assert.Contains(t, out, `test_unit_imports_total{outcome="success"} 1`)
	assert.Contains(t, out, `test_unit_imports_total{outcome="failure"} 1`)
}

//Personal.AI order the ending
