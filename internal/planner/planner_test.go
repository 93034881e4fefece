package planner

import (
	"context"
	"testing"
	"time"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func mkTask(id string, priority taskgraph.Priority, deps ...string) *taskgraph.Task {
	var refs []taskgraph.DependencyRef
	for _, d := range deps {
		refs = append(refs, taskgraph.DependencyRef{TargetID: d, Kind: taskgraph.DependencyPrerequisite})
	}
	return &taskgraph.Task{
		ID:                id,
		Title:             "task " + id,
		Category:          taskgraph.CategoryFeatureBuild,
		Priority:          priority,
		Status:            taskgraph.StatusPending,
		CreatedAt:         epoch,
		EstimatedDuration: time.Minute,
		Dependencies:      refs,
	}
}

func scoreAll(tasks []*taskgraph.Task, analysis *analyzer.DependencyAnalysis) map[string]scorer.ScoreComponents {
	s := scorer.New(scorer.DefaultConfig())
	onPath := make(map[string]bool, len(analysis.CriticalPath))
	for _, id := range analysis.CriticalPath {
		onPath[id] = true
	}
	out := make(map[string]scorer.ScoreComponents, len(tasks))
	for _, t := range tasks {
		out[t.ID] = s.Score(t, 0, onPath[t.ID], epoch)
	}
	return out
}

func analyze(t *testing.T, tasks []*taskgraph.Task) *analyzer.DependencyAnalysis {
	t.Helper()
	a := analyzer.New(analyzer.DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return analysis
}

func TestLinearChainProducesSequentialGroups(t *testing.T) {
	tasks := []*taskgraph.Task{
		mkTask("A", taskgraph.PriorityMedium),
		mkTask("B", taskgraph.PriorityMedium, "A"),
		mkTask("C", taskgraph.PriorityMedium, "B"),
	}
	analysis := analyze(t, tasks)
	scores := scoreAll(tasks, analysis)

	plan, _, err := BuildPlan(context.Background(), tasks, analysis, scores, DependencyAwareStrategy{}, nil, epoch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Groups) != 3 {
		t.Fatalf("expected 3 sequential groups, got %d: %+v", len(plan.Groups), plan.Groups)
	}
	for i, want := range []string{"A", "B", "C"} {
		if got := plan.Groups[i].TaskIDs; len(got) != 1 || got[0] != want {
			t.Errorf("group %d: want [%s], got %v", i, want, got)
		}
	}
}

func TestDiamondMaxConcurrencyTwo(t *testing.T) {
	tasks := []*taskgraph.Task{
		mkTask("A", taskgraph.PriorityMedium),
		mkTask("B", taskgraph.PriorityMedium, "A"),
		mkTask("C", taskgraph.PriorityMedium, "A"),
		mkTask("D", taskgraph.PriorityMedium, "B", "C"),
	}
	analysis := analyze(t, tasks)
	scores := scoreAll(tasks, analysis)

	plan, _, err := BuildPlan(context.Background(), tasks, analysis, scores, PriorityFirstStrategy{}, nil, epoch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.MaxConcurrency != 2 {
		t.Fatalf("expected max concurrency 2, got %d", plan.MaxConcurrency)
	}
	var sawPair bool
	for _, g := range plan.Groups {
		if len(g.TaskIDs) == 2 {
			sawPair = true
		}
	}
	if !sawPair {
		t.Fatalf("expected a group containing both B and C: %+v", plan.Groups)
	}
}

func TestCyclePlanningRefused(t *testing.T) {
	tasks := []*taskgraph.Task{
		mkTask("X", taskgraph.PriorityMedium, "Z"),
		mkTask("Y", taskgraph.PriorityMedium, "X"),
		mkTask("Z", taskgraph.PriorityMedium, "Y"),
	}
	analysis := analyze(t, tasks)
	scores := scoreAll(tasks, analysis)

	_, _, err := BuildPlan(context.Background(), tasks, analysis, scores, DependencyAwareStrategy{}, nil, epoch)
	if err == nil {
		t.Fatal("expected planning to be refused over a cyclic graph")
	}
	if _, ok := err.(*RefusedError); !ok {
		t.Fatalf("expected *RefusedError, got %T: %v", err, err)
	}
}

func TestResourceContentionSeparatesGroups(t *testing.T) {
	a := mkTask("A", taskgraph.PriorityMedium)
	b := mkTask("B", taskgraph.PriorityMedium)
	a.Capabilities = []string{"database"}
	b.Capabilities = []string{"database"}
	tasks := []*taskgraph.Task{a, b}

	analysis := analyze(t, tasks)
	scores := scoreAll(tasks, analysis)

	plan, _, err := BuildPlan(context.Background(), tasks, analysis, scores, DependencyAwareStrategy{}, nil, epoch)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	for _, g := range plan.Groups {
		if len(g.TaskIDs) > 1 {
			t.Fatalf("tasks sharing a capability must not share a group: %+v", g)
		}
	}
	conflicts := DetectConflicts(tasks, analysis, plan)
	for _, c := range conflicts {
		if c.Kind == ConflictResourceContention {
			t.Fatalf("plan built by this package should never itself contain resource contention: %+v", c)
		}
	}
}

func TestPriorityInversionConflictNamesBothTasks(t *testing.T) {
	low := mkTask("low", taskgraph.PriorityLow)
	high := mkTask("high", taskgraph.PriorityCritical)
	tasks := []*taskgraph.Task{low, high}
	analysis := analyze(t, tasks)

	plan := &Plan{
		Groups: []Group{
			{TaskIDs: []string{"low"}},
			{TaskIDs: []string{"high"}},
		},
	}

	conflicts := DetectConflicts(tasks, analysis, plan)
	var found bool
	for _, c := range conflicts {
		if c.Kind == ConflictPriorityInversion {
			found = true
			if len(c.TaskIDs) != 2 || c.TaskIDs[0] != "low" || c.TaskIDs[1] != "high" {
				t.Errorf("expected conflict to name [low high], got %v", c.TaskIDs)
			}
		}
	}
	if !found {
		t.Fatal("expected a priority_inversion conflict")
	}
}

func TestValidateReportsMissingDependencyWithoutShortCircuiting(t *testing.T) {
	a := mkTask("A", taskgraph.PriorityMedium, "ghost")
	b := &taskgraph.Task{ID: "", Title: "bad"}
	tasks := []*taskgraph.Task{a, b}
	analysis := analyze(t, tasks)

	result := Validate(tasks, analysis)
	if result.IsValid {
		t.Fatal("expected validation to fail")
	}
	if len(result.Errors) < 2 {
		t.Fatalf("expected multiple accumulated errors, got %d: %+v", len(result.Errors), result.Errors)
	}
}
