package prometheus

import (
	"time"
)

// Stage durations range from milliseconds for tiny fixtures to tens of
// minutes for the full NCBI files.
var DefaultStageDurationBuckets = []float64{.01, .1, .5, 1, 5, 15, 30, 60, 300, 900, 1800}

// DefaultSinkWriteBuckets covers a single batch written to one sink.
var DefaultSinkWriteBuckets = []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// ImportMetrics are the metrics of one conceptdb process.  They satisfy the
// aggregation engine's Observer and the importer's progress reporting.
type ImportMetrics struct {
	RecordsRead       CounterVec
	AggregatesTotal   CounterVec
	StageDuration     HistogramVec
	ConceptsWritten   CounterVec
	SinkWriteDuration HistogramVec
	SinkErrors        CounterVec
	ImportsTotal      CounterVec
	ImportInProgress  GaugeVec
	LastImportSeconds GaugeVec
}

// NewImportMetrics registers the import metrics on c.
func NewImportMetrics(c MetricsCollector) *ImportMetrics {
	return &ImportMetrics{
		RecordsRead: c.RegisterCounter("records_read_total",
			"Input records read, by source file kind.", "source"),
		AggregatesTotal: c.RegisterCounter("aggregates_created_total",
			"Aggregate concepts created, by aggregate kind.", "kind"),
		StageDuration: c.RegisterHistogram("aggregation_stage_duration_seconds",
			"Duration of each aggregation stage.", DefaultStageDurationBuckets, "stage"),
		ConceptsWritten: c.RegisterCounter("concepts_written_total",
			"Concepts delivered to a sink.", "sink"),
		SinkWriteDuration: c.RegisterHistogram("sink_write_duration_seconds",
			"Duration of one batch write, by sink.", DefaultSinkWriteBuckets, "sink"),
		SinkErrors: c.RegisterCounter("sink_errors_total",
			"Failed batch writes, by sink.", "sink"),
		ImportsTotal: c.RegisterCounter("imports_total",
			"Finished imports, by outcome.", "outcome"),
		ImportInProgress: c.RegisterGauge("import_in_progress",
			"1 while an import is running."),
		LastImportSeconds: c.RegisterGauge("last_import_duration_seconds",
			"Wall time of the most recent import."),
	}
}

// StageCompleted records an aggregation stage duration.
func (m *ImportMetrics) StageCompleted(stage string, took time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(took.Seconds())
}

// AggregatesCreated adds n aggregates of kind.
func (m *ImportMetrics) AggregatesCreated(kind string, n int) {
	if n > 0 {
		m.AggregatesTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordsParsed adds n records read from source.
func (m *ImportMetrics) RecordsParsed(source string, n int) {
	if n > 0 {
		m.RecordsRead.WithLabelValues(source).Add(float64(n))
	}
}

// BatchWritten records one batch delivered to sink, or a failure when err
// is non-nil.
func (m *ImportMetrics) BatchWritten(sink string, n int, took time.Duration, err error) {
	m.SinkWriteDuration.WithLabelValues(sink).Observe(took.Seconds())
	if err != nil {
		m.SinkErrors.WithLabelValues(sink).Inc()
		return
	}
	m.ConceptsWritten.WithLabelValues(sink).Add(float64(n))
}

// ImportStarted flags a running import.
func (m *ImportMetrics) ImportStarted() {
	m.ImportInProgress.WithLabelValues().Set(1)
}

// ImportFinished clears the running flag and records the outcome.
func (m *ImportMetrics) ImportFinished(took time.Duration, err error) {
	m.ImportInProgress.WithLabelValues().Set(0)
	m.LastImportSeconds.WithLabelValues().Set(took.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ImportsTotal.WithLabelValues(outcome).Inc()
}

//Personal.AI order the ending
