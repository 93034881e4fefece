package depmanager

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/events"
	"github.com/nexus-automations/taskgraph/internal/monitor"
	"github.com/nexus-automations/taskgraph/internal/optimizer"
	"github.com/nexus-automations/taskgraph/internal/planner"
	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskerrors"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// Manager is the Dependency Manager façade. It owns every component the
// core ships — Analyzer, Scorer, Planner strategy/budget, Optimizer,
// Monitor — plus the task graph itself, a fingerprinted analysis cache,
// and an event bus private to this instance (never a package-level
// singleton, per spec §9's event-subscription design note).
//
// Mutations (AddTask, RemoveTask, UpdateDependencies) are serialized
// under a single writer lock. Reads (Analyze, Plan, Optimize, Validate)
// take a read lock only long enough to snapshot the task set, then run
// against that immutable copy — concurrent reads never block each
// other, and never block behind a slow analysis.
type Manager struct {
	cfg      ManagerConfig
	strategy planner.Strategy

	an  *analyzer.Analyzer
	sc  *scorer.Scorer
	opt *optimizer.Optimizer
	mon *monitor.Monitor
	bus *events.Bus

	cache *analysisCache

	mu       sync.RWMutex
	graph    *taskgraph.Graph
	degraded bool
}

// New creates a Manager from cfg. store is the optional execution
// history persistence the Monitor writes to; it may be nil.
func New(cfg ManagerConfig, store monitor.ExecutionStore) *Manager {
	bus := events.New()
	sc := scorer.New(cfg.ScorerConfig)
	return &Manager{
		cfg:      cfg,
		strategy: planner.ByName(cfg.PlanStrategy),
		an:       analyzer.New(cfg.AnalyzerConfig),
		sc:       sc,
		opt:      optimizer.New(cfg.OptimizerConfig, bus),
		mon:      monitor.New(cfg.MonitorConfig, store, bus, sc),
		bus:      bus,
		cache:    newAnalysisCache(cfg.CacheSize),
		graph:    taskgraph.NewGraph(),
	}
}

// NewFromPreset creates a Manager using one of the four predefined
// configuration bundles.
func NewFromPreset(p Preset, store monitor.ExecutionStore) *Manager {
	return New(FromPreset(p), store)
}

// Subscribe registers handler for events of kind on this Manager's
// private bus. The returned Subscription is revoked automatically by
// Dispose, or may be unsubscribed earlier by the caller.
func (m *Manager) Subscribe(kind events.Kind, handler events.Handler) *events.Subscription {
	return m.bus.Subscribe(kind, handler)
}

// AddTask registers a new task under the writer lock. Returns a
// *taskerrors.InvariantViolation only if the graph is already in
// degraded mode; ordinary duplicate-ID problems are reported as
// taskgraph.ErrDuplicateTask (a data-level problem, not raised).
func (m *Manager) AddTask(t *taskgraph.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.degraded {
		return &taskerrors.InvariantViolation{Component: "depmanager", Detail: "manager is in degraded read-only mode"}
	}
	if err := m.graph.AddTask(t); err != nil {
		return err
	}
	m.cache.purge()
	return nil
}

// RemoveTask deletes a task and every edge touching it.
func (m *Manager) RemoveTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.degraded {
		return &taskerrors.InvariantViolation{Component: "depmanager", Detail: "manager is in degraded read-only mode"}
	}
	if err := m.graph.RemoveTask(id); err != nil {
		return err
	}
	m.cache.purge()
	return nil
}

// UpdateDependencies replaces taskID's dependency list with newDeps.
// Per spec §4.6, this always bumps the analysis cache (any dependency
// mutation evicts entries touching the fingerprint; since the task's
// dependency list is itself a fingerprint input, purging the whole
// cache is simplest and exactly as correct). Publishes
// dependency_updated with the set of added/removed target ids.
func (m *Manager) UpdateDependencies(taskID string, newDeps []taskgraph.DependencyRef) error {
	m.mu.Lock()
	if m.degraded {
		m.mu.Unlock()
		return &taskerrors.InvariantViolation{Component: "depmanager", Detail: "manager is in degraded read-only mode"}
	}
	t := m.graph.Task(taskID)
	if t == nil {
		m.mu.Unlock()
		return taskgraph.ErrTaskNotFound(taskID)
	}

	added, removed := diffDependencies(t.Dependencies, newDeps)
	t.Dependencies = newDeps
	m.graph.UpsertTask(t)
	m.cache.purge()
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(events.Event{
			Kind: events.KindDependencyUpdated,
			Payload: events.DependencyUpdatedEvent{
				TaskID:  taskID,
				Added:   added,
				Removed: removed,
			},
		})
	}
	return nil
}

func diffDependencies(before, after []taskgraph.DependencyRef) (added, removed []string) {
	beforeSet := make(map[string]bool, len(before))
	for _, d := range before {
		beforeSet[d.TargetID] = true
	}
	afterSet := make(map[string]bool, len(after))
	for _, d := range after {
		afterSet[d.TargetID] = true
		if !beforeSet[d.TargetID] {
			added = append(added, d.TargetID)
		}
	}
	for _, d := range before {
		if !afterSet[d.TargetID] {
			removed = append(removed, d.TargetID)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// snapshot takes a read lock and returns an independent copy of the
// task slice, so Analyze/Plan/Optimize never race a concurrent mutation
// and never hold the lock for the duration of the (potentially slow)
// analysis itself.
func (m *Manager) snapshot() []*taskgraph.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.graph.TaskIDs()
	out := make([]*taskgraph.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.graph.Task(id))
	}
	return out
}

// Analyze runs the Analyzer against the current task set, serving a
// cached result when the fingerprint (sorted task ids + dependency
// lists + config version) matches a prior run. A cache hit is
// structurally equal to what a fresh run would have produced: the
// fingerprint covers ids, priorities, dependency lists, and config
// version, and every other task field can only change through a façade
// mutation, each of which purges the cache.
func (m *Manager) Analyze(ctx context.Context) (*analyzer.DependencyAnalysis, taskerrors.Outcome, error) {
	tasks := m.snapshot()
	fp := fingerprint(tasks, m.cfg.ConfigVersion)

	if cached, ok := m.cache.get(fp); ok {
		return cached, taskerrors.OutcomeCompleted, nil
	}

	analysis, outcome, err := m.an.Analyze(ctx, tasks)
	if err != nil || outcome != taskerrors.OutcomeCompleted {
		return analysis, outcome, err
	}

	m.cache.put(fp, analysis)
	if m.bus != nil {
		m.bus.Publish(events.Event{
			Kind: events.KindAnalysisComplete,
			Payload: events.AnalysisCompleteEvent{
				AnalysisID: uuid.NewString(),
				TaskCount:  len(tasks),
				CycleCount: len(analysis.CircularChains),
			},
		})
	}
	return analysis, outcome, nil
}

// Plan runs Analyze, scores every task, and builds a plan with the
// configured strategy and resource budget. Refuses (via
// *planner.RefusedError) when the analysis found a cycle.
func (m *Manager) Plan(ctx context.Context, now time.Time) (*planner.Plan, taskerrors.Outcome, error) {
	tasks := m.snapshot()
	analysis, outcome, err := m.Analyze(ctx)
	if err != nil || outcome != taskerrors.OutcomeCompleted {
		return nil, outcome, err
	}

	scores := m.scoreAll(tasks, analysis, now)
	plan, outcome, err := planner.BuildPlan(ctx, tasks, analysis, scores, m.strategy, m.cfg.ResourceBudget, now)
	if err != nil || outcome != taskerrors.OutcomeCompleted {
		return plan, outcome, err
	}

	if m.bus != nil {
		m.bus.Publish(events.Event{
			Kind: events.KindPlanComplete,
			Payload: events.PlanCompleteEvent{
				PlanID:    uuid.NewString(),
				Strategy:  plan.Strategy,
				WaveCount: len(plan.Groups),
			},
		})
	}
	return plan, outcome, nil
}

func (m *Manager) scoreAll(tasks []*taskgraph.Task, analysis *analyzer.DependencyAnalysis, now time.Time) map[string]scorer.ScoreComponents {
	dependents := transitiveDependentCounts(analysis.Edges)
	onCriticalPath := make(map[string]bool, len(analysis.CriticalPath))
	for _, id := range analysis.CriticalPath {
		onCriticalPath[id] = true
	}
	scores := make(map[string]scorer.ScoreComponents, len(tasks))
	for _, t := range tasks {
		scores[t.ID] = m.sc.Score(t, dependents[t.ID], onCriticalPath[t.ID], now)
	}
	return scores
}

// transitiveDependentCounts counts, for every task id, how many other
// tasks transitively depend on it (i.e. the size of its reachable
// successor set in the "depends on" graph formed by edges).
func transitiveDependentCounts(edges []taskgraph.Edge) map[string]int {
	dependents := make(map[string][]string)
	for _, e := range edges {
		// e.From depends on e.To, so e.To gains a direct dependent e.From.
		dependents[e.To] = append(dependents[e.To], e.From)
	}
	counts := make(map[string]int, len(dependents))
	for id := range dependents {
		seen := make(map[string]bool)
		var walk func(string)
		walk = func(cur string) {
			for _, dep := range dependents[cur] {
				if seen[dep] {
					continue
				}
				seen[dep] = true
				walk(dep)
			}
		}
		walk(id)
		counts[id] = len(seen)
	}
	return counts
}

// Optimize runs Plan and feeds the result, current runtime metrics, and
// now into the Optimizer.
func (m *Manager) Optimize(ctx context.Context, rt optimizer.RuntimeMetrics, now time.Time) (*optimizer.OptimizationResult, taskerrors.Outcome, error) {
	tasks := m.snapshot()
	analysis, outcome, err := m.Analyze(ctx)
	if err != nil || outcome != taskerrors.OutcomeCompleted {
		return nil, outcome, err
	}
	plan, outcome, err := m.Plan(ctx, now)
	if err != nil || outcome != taskerrors.OutcomeCompleted {
		return nil, outcome, err
	}
	scores := m.scoreAll(tasks, analysis, now)
	// The Optimizer holds the same bus and publishes
	// KindOptimizationComplete/KindResourceConstraintWarning itself.
	result := m.opt.Optimize(tasks, analysis, plan, scores, rt, m.cfg.ResourceBudget, now)
	return result, taskerrors.OutcomeCompleted, nil
}

// Validate runs the Planner's structural validation against the
// current task set and analysis, never short-circuiting on the first
// problem found.
func (m *Manager) Validate(ctx context.Context) (planner.ValidationResult, error) {
	tasks := m.snapshot()
	analysis, outcome, err := m.Analyze(ctx)
	if err != nil {
		return planner.ValidationResult{}, err
	}
	if outcome != taskerrors.OutcomeCompleted {
		return planner.ValidationResult{}, fmt.Errorf("depmanager: validate: analysis did not complete (%s)", outcome)
	}
	return planner.Validate(tasks, analysis), nil
}

// DetectConflicts builds a plan (if possible) and scans it for
// conflicts. A cyclic task set yields only the circular_dependency and
// missing_dependency conflicts Validate would already report, since no
// plan can be built.
func (m *Manager) DetectConflicts(ctx context.Context, now time.Time) ([]planner.Conflict, error) {
	tasks := m.snapshot()
	analysis, outcome, err := m.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	if outcome != taskerrors.OutcomeCompleted {
		return nil, fmt.Errorf("depmanager: detect conflicts: analysis did not complete (%s)", outcome)
	}
	if analysis.HasCycles() {
		return planner.DetectConflicts(tasks, analysis, nil), nil
	}
	plan, outcome, err := m.Plan(ctx, now)
	if err != nil || outcome != taskerrors.OutcomeCompleted {
		return nil, err
	}
	return planner.DetectConflicts(tasks, analysis, plan), nil
}

// RecordExecution forwards ev to the Monitor, which folds it into
// aggregates, persists it (if a store is configured), and feeds the
// outcome back to the Scorer.
func (m *Manager) RecordExecution(ctx context.Context, ev monitor.Event) error {
	return m.mon.Record(ctx, ev)
}

// GetMetrics bundles the Monitor's aggregates/bottlenecks/health and the
// Optimizer's learning summary into one snapshot.
func (m *Manager) GetMetrics() Metrics {
	return Metrics{
		Aggregates:  m.mon.Aggregates(),
		Bottlenecks: m.mon.Bottlenecks(),
		Health:      m.mon.Health(),
		Learning:    m.opt.LearningMetrics(),
	}
}

// GetLearningInsights summarizes the Optimizer's learning history and
// recommends whether SelfTune is likely to help: a low average impact
// or a win rate below 50% on the active strategy suggests retuning.
func (m *Manager) GetLearningInsights() LearningInsights {
	lm := m.opt.LearningMetrics()
	recommend := lm.TotalOptimizations >= 5 && (lm.AverageImpact < 5 || lm.StrategyWinRates[m.cfg.OptimizerConfig.Strategy] < 0.5)

	tasks := m.snapshot()
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)

	return LearningInsights{
		Learning:        lm,
		SampledTaskIDs:  ids,
		AverageImpact:   lm.AverageImpact,
		RecommendedTune: recommend,
	}
}

// SelfTune nudges the Scorer's weights from observed learning history:
// whenever GetLearningInsights recommends retuning, the impact weight is
// raised by 0.1, favoring critical-path urgency over raw throughput on
// the next scoring pass. The adjustment is monotone — the façade never
// resets weights, only raises this one — and each call that finds a
// retune recommended raises it again.
func (m *Manager) SelfTune() {
	insights := m.GetLearningInsights()
	if !insights.RecommendedTune {
		return
	}
	w := m.cfg.ScorerConfig.Weights
	w.Impact += 0.1
	m.cfg.ScorerConfig.Weights = w
	m.sc = scorer.New(m.cfg.ScorerConfig)
}

// Dispose releases the event bus's subscribers and clears the analysis
// cache. The Manager is not usable afterward.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bus.Close()
	m.cache.purge()
	m.degraded = true
}
