package taskgraph

import "testing"

func mustTask(id string) *Task {
	return &Task{ID: id, Title: id, Priority: PriorityMedium, Status: StatusPending}
}

func TestAddTaskDuplicate(t *testing.T) {
	g := NewGraph()
	if err := g.AddTask(mustTask("a")); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := g.AddTask(mustTask("a")); err == nil {
		t.Fatal("expected ErrDuplicateTask")
	}
}

func TestAddEdgeAllowsCycle(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"x", "y", "z"} {
		if err := g.AddTask(mustTask(id)); err != nil {
			t.Fatalf("AddTask(%s): %v", id, err)
		}
	}
	// x depends on z, y depends on x, z depends on y: a 3-cycle.
	// The store must accept this; only the Analyzer reports it.
	if err := g.AddEdge(Edge{From: "x", To: "z", Kind: EdgeExplicit, Confidence: 1}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(Edge{From: "y", To: "x", Kind: EdgeExplicit, Confidence: 1}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(Edge{From: "z", To: "y", Kind: EdgeExplicit, Confidence: 1}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if !g.HasPath("x", "x") && !g.HasPath("x", "y") {
		t.Fatal("expected a path to exist within the cycle")
	}
}

func TestSelfLoopPermitted(t *testing.T) {
	g := NewGraph()
	if err := g.AddTask(mustTask("t")); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := g.AddEdge(Edge{From: "t", To: "t", Kind: EdgeExplicit, Confidence: 1}); err != nil {
		t.Fatalf("self-loop edge should be permitted: %v", err)
	}
	if g.InDegree("t") != 1 || g.OutDegree("t") != 1 {
		t.Fatalf("expected in/out degree 1, got in=%d out=%d", g.InDegree("t"), g.OutDegree("t"))
	}
}

func TestRemoveTaskClearsEdges(t *testing.T) {
	g := NewGraph()
	g.AddTask(mustTask("a"))
	g.AddTask(mustTask("b"))
	g.AddEdge(Edge{From: "b", To: "a", Kind: EdgeExplicit, Confidence: 1})

	if err := g.RemoveTask("a"); err != nil {
		t.Fatalf("RemoveTask: %v", err)
	}
	if len(g.Predecessors("b")) != 0 {
		t.Fatalf("expected b's predecessors cleared, got %v", g.Predecessors("b"))
	}
}

func TestIndependentTaskDegrees(t *testing.T) {
	g := NewGraph()
	g.AddTask(mustTask("solo"))
	g.AddTask(mustTask("a"))
	g.AddTask(mustTask("b"))
	g.AddEdge(Edge{From: "b", To: "a", Kind: EdgeExplicit, Confidence: 1})

	if g.InDegree("solo") != 0 || g.OutDegree("solo") != 0 {
		t.Fatalf("expected solo to be independent, got in=%d out=%d", g.InDegree("solo"), g.OutDegree("solo"))
	}
	if g.InDegree("a") != 0 || g.OutDegree("a") != 1 {
		t.Fatalf("unexpected degrees for a: in=%d out=%d", g.InDegree("a"), g.OutDegree("a"))
	}
}
