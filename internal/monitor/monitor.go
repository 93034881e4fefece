package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexus-automations/taskgraph/internal/events"
	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// Monitor records execution events, maintains rolling aggregates, and
// feeds observed durations and outcomes back to a Scorer. store is
// optional: a nil store means history is kept only in the rolling
// aggregates, not persisted. bus is optional: a nil bus means no events
// are published.
type Monitor struct {
	cfg   Config
	store ExecutionStore
	bus   *events.Bus
	feed  *scorer.Scorer

	mu  sync.Mutex
	agg Aggregates
}

// New creates a Monitor with cfg, filling zero fields from DefaultConfig.
// store and bus may be nil; feed (the Scorer to receive learning
// feedback) may also be nil if the caller does not want durations/
// outcomes fed back automatically.
func New(cfg Config, store ExecutionStore, bus *events.Bus, feed *scorer.Scorer) *Monitor {
	return &Monitor{
		cfg:   cfg.withDefaults(),
		store: store,
		bus:   bus,
		feed:  feed,
		agg: Aggregates{
			CategoryHistogram:   make(map[string]int),
			PriorityHistogram:   make(map[string]int),
			ComplexityHistogram: make(map[string]int),
		},
	}
}

// Record folds one execution event into the rolling aggregates,
// optionally persists it to store, feeds completed/failed outcomes back
// to the Scorer, and publishes task_event_recorded.
func (m *Monitor) Record(ctx context.Context, ev Event) error {
	m.mu.Lock()
	m.foldLocked(ev)
	m.mu.Unlock()

	if m.store != nil && (ev.Kind == EventCompleted || ev.Kind == EventFailed) {
		attempt := taskgraph.ExecutionAttempt{
			EndedAt:       ev.Timestamp,
			StartedAt:     ev.Timestamp.Add(-ev.Duration),
			Duration:      ev.Duration,
			Success:       ev.Kind == EventCompleted,
			ResourceUsage: ev.ResourceUsage,
		}
		if err := m.store.Record(ctx, ev.TaskID, attempt); err != nil {
			return fmt.Errorf("monitor: persist event for %q: %w", ev.TaskID, err)
		}
	}

	if m.feed != nil && (ev.Kind == EventCompleted || ev.Kind == EventFailed) {
		m.feed.RecordExecution(ev.TaskID, ev.Kind == EventCompleted, ev.Duration)
	}

	if m.bus != nil {
		m.bus.Publish(events.Event{
			Kind: events.KindTaskEventRecorded,
			Payload: events.TaskEventRecordedEvent{
				TaskID: ev.TaskID,
				Status: string(ev.Kind),
			},
		})
	}
	return nil
}

func (m *Monitor) foldLocked(ev Event) {
	m.agg.Total++
	switch ev.Kind {
	case EventStarted:
		m.agg.Running++
	case EventCompleted:
		m.agg.Running--
		m.agg.Completed++
		m.rollAverage(ev.Duration)
	case EventFailed:
		m.agg.Running--
		m.agg.Failed++
		m.rollAverage(ev.Duration)
	case EventCancelled:
		m.agg.Running--
		m.agg.Cancelled++
	case EventRetried:
		m.agg.Retried++
		m.agg.TotalRetries++
	}

	if m.agg.Completed+m.agg.Failed > 0 {
		m.agg.SuccessRate = float64(m.agg.Completed) / float64(m.agg.Completed+m.agg.Failed)
	}

	if ev.Category != "" {
		m.agg.CategoryHistogram[ev.Category]++
	}
	if ev.Priority != "" {
		m.agg.PriorityHistogram[ev.Priority]++
	}
	m.agg.ComplexityHistogram[complexityBucket(len(ev.Capabilities))]++

	if mem, ok := ev.ResourceUsage["memory"]; ok && mem > m.agg.MemoryHighWaterMB {
		m.agg.MemoryHighWaterMB = mem
	}
}

func (m *Monitor) rollAverage(d time.Duration) {
	n := m.agg.Completed + m.agg.Failed
	if n <= 0 {
		return
	}
	total := m.agg.AverageExecutionTime*time.Duration(n-1) + d
	m.agg.AverageExecutionTime = total / time.Duration(n)
}

func complexityBucket(capabilityCount int) string {
	switch {
	case capabilityCount == 0:
		return "0"
	case capabilityCount == 1:
		return "1"
	case capabilityCount == 2:
		return "2"
	default:
		return "3+"
	}
}

// Aggregates returns a snapshot of the current rolling counters.
func (m *Monitor) Aggregates() Aggregates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAggregates(m.agg)
}

func cloneAggregates(a Aggregates) Aggregates {
	out := a
	out.CategoryHistogram = cloneCounts(a.CategoryHistogram)
	out.PriorityHistogram = cloneCounts(a.PriorityHistogram)
	out.ComplexityHistogram = cloneCounts(a.ComplexityHistogram)
	return out
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Bottlenecks scans the current aggregates against configured
// thresholds.
func (m *Monitor) Bottlenecks() []Bottleneck {
	a := m.Aggregates()
	var out []Bottleneck

	if a.AverageExecutionTime > m.cfg.SlowExecutionThreshold {
		out = append(out, Bottleneck{
			Kind:                  BottleneckSlowExecution,
			Severity:              severityForRatio(a.AverageExecutionTime.Seconds() / m.cfg.SlowExecutionThreshold.Seconds()),
			Detail:                fmt.Sprintf("average execution time %s exceeds threshold %s", a.AverageExecutionTime, m.cfg.SlowExecutionThreshold),
			RecommendationPointer: "concurrency_adjustment",
		})
	}

	if a.MemoryHighWaterMB > m.cfg.MemoryThresholdMB {
		out = append(out, Bottleneck{
			Kind:                  BottleneckMemoryPressure,
			Severity:              severityForRatio(a.MemoryHighWaterMB / m.cfg.MemoryThresholdMB),
			Detail:                fmt.Sprintf("memory high-water %.0fMB exceeds threshold %.0fMB", a.MemoryHighWaterMB, m.cfg.MemoryThresholdMB),
			RecommendationPointer: "resource_balancing",
		})
	}

	if a.Total > 0 {
		retryRate := float64(a.TotalRetries) / float64(a.Total)
		if retryRate > m.cfg.ReliabilityThreshold {
			out = append(out, Bottleneck{
				Kind:                  BottleneckReliability,
				Severity:              severityForRatio(retryRate / m.cfg.ReliabilityThreshold),
				Detail:                fmt.Sprintf("retry rate %.1f%% exceeds threshold %.1f%%", retryRate*100, m.cfg.ReliabilityThreshold*100),
				RecommendationPointer: "task_preemption",
			})
		}
	}

	return out
}

func severityForRatio(ratio float64) Severity {
	switch {
	case ratio >= 3:
		return SeverityCritical
	case ratio >= 2:
		return SeverityHigh
	case ratio >= 1.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Health classifies four dimensions of system health from the current
// aggregates and bottlenecks.
func (m *Monitor) Health() SystemHealth {
	a := m.Aggregates()
	bottlenecks := m.Bottlenecks()

	memory := StatusHealthy
	performance := StatusHealthy
	reliability := StatusHealthy
	for _, b := range bottlenecks {
		switch b.Kind {
		case BottleneckMemoryPressure:
			memory = statusForSeverity(b.Severity)
		case BottleneckSlowExecution:
			performance = statusForSeverity(b.Severity)
		case BottleneckReliability:
			reliability = statusForSeverity(b.Severity)
		}
	}
	if a.SuccessRate > 0 && a.SuccessRate < 0.5 {
		reliability = worstStatus(reliability, StatusCritical)
	}

	overall := worstStatus(worstStatus(memory, performance), reliability)

	return SystemHealth{
		DimensionOverall:     overall,
		DimensionMemory:      memory,
		DimensionPerformance: performance,
		DimensionReliability: reliability,
	}
}

func statusForSeverity(s Severity) Status {
	switch s {
	case SeverityCritical, SeverityHigh:
		return StatusCritical
	case SeverityMedium:
		return StatusDegraded
	default:
		return StatusDegraded
	}
}

func worstStatus(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
