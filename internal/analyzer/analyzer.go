// Package analyzer implements the Dependency Analyzer: it discovers
// dependency edges among a task set by four independent, composable
// heuristics plus a temporal pass, detects cycles via Tarjan's strongly
// connected components, and derives levels, critical path, parallel
// frontiers, and critical-task membership from the resulting graph.
package analyzer

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc"

	"github.com/nexus-automations/taskgraph/internal/taskerrors"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// Analyzer runs edge discovery and derived-graph computation against a
// snapshot of tasks. It holds no mutable state between calls; each
// Analyze call is independent and deterministic for a fixed input.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer with cfg, filling zero fields from
// DefaultConfig.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg.withDefaults()}
}

// Analyze runs the explicit, implicit-by-content, resource-shared, and
// temporal edge-discovery passes concurrently, then the structural pass
// (which needs the explicit pass's pairs), merges their output,
// detects cycles, and — if the graph is acyclic — computes levels,
// critical path, parallel frontiers, independent tasks, and critical
// tasks. ctx is checked after edge discovery and after cycle detection;
// a cancelled context returns taskerrors.OutcomeCancelled with a nil
// analysis rather than a partial one.
func (a *Analyzer) Analyze(ctx context.Context, tasks []*taskgraph.Task) (*DependencyAnalysis, taskerrors.Outcome, error) {
	byID := make(map[string]*taskgraph.Task, len(tasks))
	taskIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || t.ID == "" {
			continue
		}
		byID[t.ID] = t
		taskIDs = append(taskIDs, t.ID)
	}
	sort.Strings(taskIDs)

	var explicitEdges, implicitEdges, structuralEdges, resourceEdges, temporalEdges []taskgraph.Edge
	var missing []MissingDependency

	var wg conc.WaitGroup
	wg.Go(func() { explicitEdges, missing = discoverExplicit(tasks, byID) })
	wg.Go(func() { implicitEdges = discoverImplicitByContent(tasks, a.cfg) })
	wg.Go(func() { resourceEdges = discoverResourceShared(tasks) })
	wg.Go(func() { temporalEdges = discoverTemporal(tasks, a.cfg.TemporalWindow) })
	wg.Wait()

	// The structural pass needs to know which explicit pairs already
	// exist, so it runs after the explicit pass completes rather than
	// concurrently with it.
	explicitPairs := make(map[[2]string]bool, len(explicitEdges))
	for _, e := range explicitEdges {
		explicitPairs[[2]string{e.From, e.To}] = true
	}
	structuralEdges = discoverStructuralByCategory(tasks, explicitPairs)

	if err := ctx.Err(); err != nil {
		return nil, outcomeFor(err), nil
	}

	edges := make([]taskgraph.Edge, 0, len(explicitEdges)+len(implicitEdges)+len(structuralEdges)+len(resourceEdges)+len(temporalEdges))
	edges = append(edges, explicitEdges...)
	edges = append(edges, implicitEdges...)
	edges = append(edges, structuralEdges...)
	edges = append(edges, resourceEdges...)
	edges = append(edges, temporalEdges...)
	sortEdges(edges)

	counts := make(EdgeCounts, 4)
	for _, e := range edges {
		counts[e.Kind]++
	}

	g := buildWorkGraph(taskIDs, edges)
	chains := findCircularChains(g)

	analysis := &DependencyAnalysis{
		Edges:               edges,
		EdgeCountsByKind:    counts,
		CircularChains:      chains,
		MissingDependencies: missing,
		IndependentTasks:    independentTasks(g),
	}

	if err := ctx.Err(); err != nil {
		return nil, outcomeFor(err), nil
	}

	if len(chains) > 0 {
		// Cycles present: the Analyzer reports them as data and stops
		// short of computing levels/critical path, per spec §4.1.
		return analysis, taskerrors.OutcomeCompleted, nil
	}

	levels := computeLevels(g)
	analysis.Levels = levels
	analysis.CriticalPath = computeCriticalPath(g, byID, levels)
	analysis.CriticalTasks = markCriticalTasks(g, levels, analysis.CriticalPath, a.cfg.MaxRemovalFraction)

	return analysis, taskerrors.OutcomeCompleted, nil
}

func outcomeFor(err error) taskerrors.Outcome {
	if err == context.DeadlineExceeded {
		return taskerrors.OutcomeTimedOut
	}
	return taskerrors.OutcomeCancelled
}

// ParallelFrontiers groups task ids by level; each group is a set of
// mutually independent tasks that may run concurrently once their
// dependencies have completed.
func ParallelFrontiers(a *DependencyAnalysis) map[int][]string {
	return parallelFrontiers(a.Levels)
}
