// Package optimizer implements the Queue Optimizer: given a plan, a
// dependency analysis, and runtime metrics, it emits structured
// recommendations that could rewrite the plan for throughput, latency,
// resource efficiency, or deadline adherence, and tracks a bounded
// learning history of past passes.
package optimizer

import "time"

// Kind classifies a Recommendation.
type Kind string

const (
	KindConcurrencyAdjustment      Kind = "concurrency_adjustment"
	KindParallelExecution          Kind = "parallel_execution"
	KindResourceBalancing          Kind = "resource_balancing"
	KindPriorityAdjustment         Kind = "priority_adjustment"
	KindCriticalPathOptimization   Kind = "critical_path_optimization"
	KindTaskPreemption             Kind = "task_preemption"
	KindDeadlineScheduling         Kind = "deadline_scheduling"
	KindDeadlineViolationWarning   Kind = "deadline_violation_warning"
	KindResourceConflictResolution Kind = "resource_conflict_resolution"
	KindTaskBatching               Kind = "task_batching"
)

// MetricsSnapshot is a lightweight before/after view of a plan's shape,
// attached to a Recommendation when it alters the plan.
type MetricsSnapshot struct {
	EstimatedDuration time.Duration
	MaxConcurrency    int
	GroupCount        int
}

// RuntimeMetrics is the subset of Execution Monitor aggregates the
// Optimizer consults; all fields are optional (zero value means "no
// signal yet").
type RuntimeMetrics struct {
	AverageExecutionTime time.Duration
	MemoryHighWaterMB    float64
	RetryRate            float64
}

// Recommendation is one structured suggestion the Optimizer emits.
type Recommendation struct {
	Kind               Kind
	Impact             float64 // projected % improvement on the strategy's objective
	Details            map[string]any
	TaskIDs            []string
	BeforeOptimization *MetricsSnapshot
	AfterOptimization  *MetricsSnapshot
}

// OptimizationResult is the output of one Optimize pass.
type OptimizationResult struct {
	Strategy        string
	Recommendations []Recommendation
}

// LearningMetrics summarizes the bounded history of past optimization
// passes.
type LearningMetrics struct {
	TotalOptimizations int
	AverageImpact      float64
	StrategyWinRates   map[string]float64
}

type passRecord struct {
	strategy    string
	impact      float64
	recommended int
	observedWin bool
}
