package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

func task(id string, deps ...string) *taskgraph.Task {
	t := &taskgraph.Task{
		ID:                id,
		Title:             id,
		Priority:          taskgraph.PriorityMedium,
		Status:            taskgraph.StatusPending,
		CreatedAt:         time.Unix(0, 0),
		EstimatedDuration: time.Minute,
	}
	for _, d := range deps {
		t.Dependencies = append(t.Dependencies, taskgraph.DependencyRef{TargetID: d, Kind: taskgraph.DependencyPrerequisite})
	}
	return t
}

func TestLinearChain(t *testing.T) {
	tasks := []*taskgraph.Task{task("A"), task("B", "A"), task("C", "B")}
	a := New(DefaultConfig())
	analysis, outcome, err := a.Analyze(context.Background(), tasks)
	if err != nil || outcome != "completed" {
		t.Fatalf("unexpected outcome=%v err=%v", outcome, err)
	}
	if analysis.HasCycles() {
		t.Fatal("expected no cycles")
	}
	want := map[string]int{"A": 0, "B": 1, "C": 2}
	for id, lvl := range want {
		if analysis.Levels[id] != lvl {
			t.Fatalf("level(%s) = %d, want %d", id, analysis.Levels[id], lvl)
		}
	}
	if got := analysis.CriticalPath; len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Fatalf("unexpected critical path: %v", got)
	}
	if len(analysis.IndependentTasks) != 0 {
		t.Fatalf("expected no independent tasks, got %v", analysis.IndependentTasks)
	}
}

func TestDiamond(t *testing.T) {
	tasks := []*taskgraph.Task{
		task("A"), task("B", "A"), task("C", "A"), task("D", "B", "C"),
	}
	a := New(DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	frontiers := parallelFrontiers(analysis.Levels)
	if len(frontiers[1]) != 2 {
		t.Fatalf("expected 2 tasks at level 1, got %v", frontiers[1])
	}
	if analysis.Levels["D"] != 2 {
		t.Fatalf("expected D at level 2, got %d", analysis.Levels["D"])
	}
	if analysis.CriticalPath[0] != "A" || analysis.CriticalPath[len(analysis.CriticalPath)-1] != "D" {
		t.Fatalf("expected critical path to span A..D, got %v", analysis.CriticalPath)
	}
}

func TestCycleDetection(t *testing.T) {
	tasks := []*taskgraph.Task{
		task("X", "Z"), task("Y", "X"), task("Z", "Y"),
	}
	a := New(DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !analysis.HasCycles() {
		t.Fatal("expected a cycle to be detected")
	}
	if analysis.IsValid() {
		t.Fatal("expected analysis to be invalid in the presence of a cycle")
	}
	if len(analysis.CircularChains) != 1 {
		t.Fatalf("expected exactly one circular chain, got %v", analysis.CircularChains)
	}
	chain := analysis.CircularChains[0]
	if chain[0] != chain[len(chain)-1] {
		t.Fatalf("expected chain to close on its first element: %v", chain)
	}
}

func TestResourceContention(t *testing.T) {
	a1 := task("a")
	a1.Capabilities = []string{"database"}
	b1 := task("b")
	b1.Capabilities = []string{"database"}

	a := New(DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), []*taskgraph.Task{a1, b1})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.EdgeCountsByKind[taskgraph.EdgeResource] != 1 {
		t.Fatalf("expected exactly one resource edge, got %d", analysis.EdgeCountsByKind[taskgraph.EdgeResource])
	}
}

func TestMissingDependencyReported(t *testing.T) {
	tasks := []*taskgraph.Task{task("A", "ghost")}
	a := New(DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.MissingDependencies) != 1 || analysis.MissingDependencies[0].TargetID != "ghost" {
		t.Fatalf("expected a missing dependency on 'ghost', got %v", analysis.MissingDependencies)
	}
	if analysis.IsValid() {
		t.Fatal("expected analysis to be invalid with a missing dependency")
	}
}

func TestOptionalMissingDependencyNotReported(t *testing.T) {
	aTask := task("A")
	aTask.Dependencies = []taskgraph.DependencyRef{{TargetID: "ghost", Kind: taskgraph.DependencyPrerequisite, Optional: true}}
	a := New(DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), []*taskgraph.Task{aTask})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.MissingDependencies) != 0 {
		t.Fatalf("expected optional missing dependency to be silently skipped, got %v", analysis.MissingDependencies)
	}
}

func TestSelfDependentTaskIsOneElementChain(t *testing.T) {
	tasks := []*taskgraph.Task{task("t", "t")}
	a := New(DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.CircularChains) != 1 || len(analysis.CircularChains[0]) != 2 {
		t.Fatalf("expected a single-element chain [t,t], got %v", analysis.CircularChains)
	}
}

func TestEmptyTaskSet(t *testing.T) {
	a := New(DefaultConfig())
	analysis, _, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Edges) != 0 || !analysis.IsValid() {
		t.Fatalf("expected empty, valid analysis for empty task set, got %+v", analysis)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	tasks := []*taskgraph.Task{task("A"), task("B", "A"), task("C", "A")}
	a := New(DefaultConfig())
	first, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, _, err := a.Analyze(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(first.Edges) != len(second.Edges) {
		t.Fatalf("expected two successive analyses to agree on edge count: %d vs %d", len(first.Edges), len(second.Edges))
	}
	for i := range first.Edges {
		if first.Edges[i] != second.Edges[i] {
			t.Fatalf("edge order diverged at index %d: %+v vs %+v", i, first.Edges[i], second.Edges[i])
		}
	}
}
