package optimizer

import (
	"sort"
	"sync"
	"time"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/events"
	"github.com/nexus-automations/taskgraph/internal/planner"
	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// Optimizer applies a configured strategy to a built plan and emits
// recommendations, recording each pass into a bounded learning-history
// ring. bus is optional: a nil bus means no events are published.
type Optimizer struct {
	cfg Config
	bus *events.Bus

	mu      sync.Mutex
	history []passRecord
}

// New creates an Optimizer with cfg, filling zero fields from
// DefaultConfig. bus may be nil.
func New(cfg Config, bus *events.Bus) *Optimizer {
	return &Optimizer{cfg: cfg.withDefaults(), bus: bus}
}

// Optimize runs the configured strategy against tasks/analysis/plan and
// returns the recommendations it produced. now anchors the deadline
// strategy's earliest-finish simulation.
func (o *Optimizer) Optimize(
	tasks []*taskgraph.Task,
	analysis *analyzer.DependencyAnalysis,
	plan *planner.Plan,
	scores map[string]scorer.ScoreComponents,
	metrics RuntimeMetrics,
	budget planner.ResourceBudget,
	now time.Time,
) *OptimizationResult {
	byID := make(map[string]*taskgraph.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	pc := passContext{
		byID:     byID,
		analysis: analysis,
		plan:     plan,
		scores:   scores,
		metrics:  metrics,
		cfg:      o.cfg,
		budget:   budget,
		now:      now,
	}

	var recs []Recommendation
	switch o.cfg.Strategy {
	case "latency":
		recs = latencyRecommendations(pc)
	case "resource_efficiency":
		recs = resourceEfficiencyRecommendations(pc)
	case "deadline":
		recs = deadlineRecommendations(pc)
	default:
		recs = throughputRecommendations(pc)
	}

	o.publishConstraintWarnings(tasks, budget)

	impact := averageImpact(recs)
	o.recordPass(o.cfg.Strategy, impact, len(recs))

	if o.bus != nil {
		o.bus.Publish(events.Event{
			Kind: events.KindOptimizationComplete,
			Payload: events.OptimizationCompleteEvent{
				RecommendationCount: len(recs),
			},
		})
	}

	return &OptimizationResult{Strategy: o.cfg.Strategy, Recommendations: recs}
}

func (o *Optimizer) publishConstraintWarnings(tasks []*taskgraph.Task, _ planner.ResourceBudget) {
	if o.bus == nil || len(o.cfg.ResourceMax) == 0 {
		return
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	byID := make(map[string]*taskgraph.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	for _, id := range ids {
		t := byID[id]
		for r, demand := range t.ResourceDemand {
			max, ok := o.cfg.ResourceMax[r]
			if !ok || demand <= max {
				continue
			}
			o.bus.Publish(events.Event{
				Kind: events.KindResourceConstraintWarning,
				Payload: events.ResourceConstraintWarningEvent{
					Resource: r,
					Demand:   demand,
					Budget:   max,
					Severity: "high",
				},
			})
		}
	}
}

func (o *Optimizer) recordPass(strategy string, impact float64, recommended int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, passRecord{strategy: strategy, impact: impact, recommended: recommended})
	if len(o.history) > o.cfg.LearningHistorySize {
		o.history = o.history[len(o.history)-o.cfg.LearningHistorySize:]
	}
}

// RecordOutcome folds an observed result for the most recent pass of
// strategy into the win-rate tally: win reports whether the
// recommendation produced the projected improvement once applied.
func (o *Optimizer) RecordOutcome(strategy string, win bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.history) - 1; i >= 0; i-- {
		if o.history[i].strategy == strategy {
			o.history[i].observedWin = win
			return
		}
	}
}

// LearningMetrics summarizes the retained history ring.
func (o *Optimizer) LearningMetrics() LearningMetrics {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.history) == 0 {
		return LearningMetrics{StrategyWinRates: map[string]float64{}}
	}

	var totalImpact float64
	wins := make(map[string]int)
	attempts := make(map[string]int)
	for _, r := range o.history {
		totalImpact += r.impact
		attempts[r.strategy]++
		if r.observedWin {
			wins[r.strategy]++
		}
	}

	rates := make(map[string]float64, len(attempts))
	for strategy, n := range attempts {
		rates[strategy] = float64(wins[strategy]) / float64(n)
	}

	return LearningMetrics{
		TotalOptimizations: len(o.history),
		AverageImpact:      round2(totalImpact / float64(len(o.history))),
		StrategyWinRates:   rates,
	}
}

func averageImpact(recs []Recommendation) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range recs {
		sum += r.Impact
	}
	return round2(sum / float64(len(recs)))
}
