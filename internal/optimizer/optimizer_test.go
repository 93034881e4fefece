package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/planner"
	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func mkTask(id string) *taskgraph.Task {
	return &taskgraph.Task{
		ID:                id,
		Title:             "task " + id,
		Category:          taskgraph.CategoryFeatureBuild,
		Priority:          taskgraph.PriorityMedium,
		Status:            taskgraph.StatusPending,
		CreatedAt:         epoch,
		EstimatedDuration: time.Minute,
	}
}

func buildPlan(t *testing.T, tasks []*taskgraph.Task, budget planner.ResourceBudget) (*analyzer.DependencyAnalysis, *planner.Plan) {
	t.Helper()
	a := analyzer.New(analyzer.DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	s := scorer.New(scorer.DefaultConfig())
	scores := make(map[string]scorer.ScoreComponents, len(tasks))
	for _, task := range tasks {
		scores[task.ID] = s.Score(task, 0, false, epoch)
	}
	plan, _, err := planner.BuildPlan(context.Background(), tasks, analysis, scores, planner.DependencyAwareStrategy{}, budget, epoch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return analysis, plan
}

func TestThroughputRecommendsRaisingUnderutilizedConcurrency(t *testing.T) {
	a := mkTask("A")
	a.ResourceDemand = map[string]float64{"cpu": 1}
	tasks := []*taskgraph.Task{a}
	budget := planner.ResourceBudget{"cpu": 10}
	analysis, plan := buildPlan(t, tasks, budget)

	opt := New(Config{Strategy: "throughput"}, nil)
	result := opt.Optimize(tasks, analysis, plan, nil, RuntimeMetrics{}, budget, epoch)

	var found bool
	for _, r := range result.Recommendations {
		if r.Kind == KindConcurrencyAdjustment {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a concurrency_adjustment recommendation, got %+v", result.Recommendations)
	}
}

func TestResourceEfficiencyFlagsInfeasibleDemand(t *testing.T) {
	a := mkTask("A")
	a.ResourceDemand = map[string]float64{"cpu": 20}
	tasks := []*taskgraph.Task{a}
	budget := planner.ResourceBudget{"cpu": 10}
	analysis, plan := buildPlan(t, tasks, budget)

	opt := New(Config{Strategy: "resource_efficiency"}, nil)
	result := opt.Optimize(tasks, analysis, plan, nil, RuntimeMetrics{}, budget, epoch)

	var found bool
	for _, r := range result.Recommendations {
		if r.Kind == KindResourceConflictResolution && len(r.TaskIDs) == 1 && r.TaskIDs[0] == "A" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a resource_conflict_resolution recommendation naming A, got %+v", result.Recommendations)
	}
}

func TestDeadlineViolationWarningWhenFinishExceedsDeadline(t *testing.T) {
	a := mkTask("A")
	a.EstimatedDuration = 2 * time.Hour
	deadline := epoch.Add(time.Hour)
	a.Deadline = &deadline
	tasks := []*taskgraph.Task{a}
	analysis, plan := buildPlan(t, tasks, nil)

	opt := New(Config{Strategy: "deadline"}, nil)
	result := opt.Optimize(tasks, analysis, plan, nil, RuntimeMetrics{}, nil, epoch)

	var found bool
	for _, r := range result.Recommendations {
		if r.Kind == KindDeadlineViolationWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a deadline_violation_warning, got %+v", result.Recommendations)
	}
}

func TestBatchSimilarTasksGroupsBySharedCapability(t *testing.T) {
	a, b, c := mkTask("A"), mkTask("B"), mkTask("C")
	a.Capabilities = []string{"database"}
	b.Capabilities = []string{"database"}
	c.Capabilities = []string{"web_server"}

	batches := batchSimilarTasks([]*taskgraph.Task{a, b, c}, DefaultConfig())
	var foundPair bool
	for _, batch := range batches {
		if len(batch) == 2 {
			foundPair = true
		}
	}
	if !foundPair {
		t.Fatalf("expected A and B to batch together: %+v", batches)
	}
}

func TestLearningMetricsAccumulateAcrossPasses(t *testing.T) {
	a := mkTask("A")
	tasks := []*taskgraph.Task{a}
	analysis, plan := buildPlan(t, tasks, nil)

	opt := New(Config{Strategy: "throughput"}, nil)
	opt.Optimize(tasks, analysis, plan, nil, RuntimeMetrics{}, nil, epoch)
	opt.Optimize(tasks, analysis, plan, nil, RuntimeMetrics{}, nil, epoch)

	metrics := opt.LearningMetrics()
	if metrics.TotalOptimizations != 2 {
		t.Fatalf("expected 2 recorded passes, got %d", metrics.TotalOptimizations)
	}
}
