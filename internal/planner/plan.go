package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskerrors"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// RefusedError is returned by BuildPlan when the dependency analysis
// contains a cycle: the Planner never emits a plan over a cyclic graph.
type RefusedError struct {
	CircularChains []analyzer.CircularChain
}

func (e *RefusedError) Error() string {
	return fmt.Sprintf("planning refused: %d circular chain(s) present", len(e.CircularChains))
}

// BuildPlan applies strategy to tasks, level by level, per analysis.
// It refuses (returns a *RefusedError) while analysis reports any cycle.
// ctx is checked after each level; a cancelled context stops construction
// and returns the outcome rather than a partial plan.
func BuildPlan(
	ctx context.Context,
	tasks []*taskgraph.Task,
	analysis *analyzer.DependencyAnalysis,
	scores map[string]scorer.ScoreComponents,
	strategy Strategy,
	budget ResourceBudget,
	now time.Time,
) (*Plan, taskerrors.Outcome, error) {
	if analysis.HasCycles() {
		return nil, taskerrors.OutcomeCompleted, &RefusedError{CircularChains: analysis.CircularChains}
	}

	byID := make(map[string]*taskgraph.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	levelsByTask := analysis.Levels
	byLevel := make(map[int][]*taskgraph.Task)
	for id, lvl := range levelsByTask {
		if t, ok := byID[id]; ok {
			byLevel[lvl] = append(byLevel[lvl], t)
		}
	}
	levelNumbers := make([]int, 0, len(byLevel))
	for lvl := range byLevel {
		levelNumbers = append(levelNumbers, lvl)
	}
	sort.Ints(levelNumbers)

	criticalPathSet := make(map[string]bool, len(analysis.CriticalPath))
	for _, id := range analysis.CriticalPath {
		criticalPathSet[id] = true
	}

	var groups []Group
	var totalDuration time.Duration
	maxConcurrency := 0

	for _, lvl := range levelNumbers {
		if err := ctx.Err(); err != nil {
			return nil, outcomeFor(err), nil
		}

		ordered := strategy.Order(byLevel[lvl], scores, criticalPathSet)
		packed := strategy.Pack(ordered, budget)

		for _, grp := range packed {
			ids := make([]string, len(grp))
			var longest time.Duration
			var bestScore float64
			for i, t := range grp {
				ids[i] = t.ID
				if d := t.EstimatedDuration; d > longest {
					longest = d
				}
				if s := scores[t.ID].Final; s > bestScore {
					bestScore = s
				}
			}
			groups = append(groups, Group{
				TaskIDs:           ids,
				EstimatedDuration: longest,
				MaxConcurrency:    len(grp),
				Priority:          bestScore,
			})
			totalDuration += longest
			if len(grp) > maxConcurrency {
				maxConcurrency = len(grp)
			}
		}
	}

	var constraints []string
	if len(analysis.MissingDependencies) > 0 {
		constraints = append(constraints, "missing_dependencies_detected")
	}

	plan := &Plan{
		Strategy:          strategy.Name(),
		Groups:            groups,
		CriticalPath:      analysis.CriticalPath,
		EstimatedDuration: totalDuration,
		MaxConcurrency:    maxConcurrency,
		Metadata: Metadata{
			Algorithm:   strategy.Name(),
			Factors:     []string{"priority_score", "level", "resource_budget"},
			Constraints: constraints,
			GeneratedAt: now,
		},
	}
	return plan, taskerrors.OutcomeCompleted, nil
}

func outcomeFor(err error) taskerrors.Outcome {
	if err == context.DeadlineExceeded {
		return taskerrors.OutcomeTimedOut
	}
	return taskerrors.OutcomeCancelled
}
