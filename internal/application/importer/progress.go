package importer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/application/aggregation"
)

// Phase is the coarse state of an import.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseReading     Phase = "reading"
	PhaseAggregating Phase = "aggregating"
	PhaseWriting     Phase = "writing"
	PhaseSucceeded   Phase = "succeeded"
	PhaseFailed      Phase = "failed"
)

// Status is a point-in-time view of an import, served by the status server.
type Status struct {
	RunID      string             `json:"run_id,omitempty"`
	Phase      Phase              `json:"phase"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Total      int64              `json:"total"`
	Written    int64              `json:"written"`
	Batches    int64              `json:"batches"`
	Error      string             `json:"error,omitempty"`
	Stats      *aggregation.Stats `json:"stats,omitempty"`
}

// Progress tracks the running import.  Counters are atomic so readers on
// other goroutines never block the writer loop.
type Progress struct {
	total   atomic.Int64
	written atomic.Int64
	batches atomic.Int64

	mu         sync.RWMutex
	runID      string
	phase      Phase
	startedAt  time.Time
	finishedAt time.Time
	lastErr    error
	stats      *aggregation.Stats
}

func NewProgress() *Progress {
	return &Progress{phase: PhaseIdle}
}

// Start resets the tracker for a new run.
func (p *Progress) Start(runID string) {
	p.total.Store(0)
	p.written.Store(0)
	p.batches.Store(0)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.runID = runID
	p.phase = PhaseReading
	p.startedAt = time.Now()
	p.finishedAt = time.Time{}
	p.lastErr = nil
	p.stats = nil
}

func (p *Progress) SetPhase(phase Phase) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
}

// Aggregated records the engine outcome and the number of concepts to write.
func (p *Progress) Aggregated(stats aggregation.Stats, total int) {
	p.total.Store(int64(total))
	p.mu.Lock()
	p.stats = &stats
	p.mu.Unlock()
}

// Advance counts one delivered batch of n concepts.
func (p *Progress) Advance(n int) {
	p.written.Add(int64(n))
	p.batches.Add(1)
}

// Finish marks the run as succeeded, or failed when err is non-nil.
func (p *Progress) Finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishedAt = time.Now()
	p.lastErr = err
	if err != nil {
		p.phase = PhaseFailed
	} else {
		p.phase = PhaseSucceeded
	}
}

func (p *Progress) Snapshot() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Status{
		RunID:   p.runID,
		Phase:   p.phase,
		Total:   p.total.Load(),
		Written: p.written.Load(),
		Batches: p.batches.Load(),
	}
	if !p.startedAt.IsZero() {
		t := p.startedAt
		s.StartedAt = &t
	}
	if !p.finishedAt.IsZero() {
		t := p.finishedAt
		s.FinishedAt = &t
	}
	if p.lastErr != nil {
		s.Error = p.lastErr.Error()
	}
	if p.stats != nil {
		stats := *p.stats
		s.Stats = &stats
	}
	return s
}

//Personal.AI order the ending
