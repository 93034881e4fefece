package analyzer

import "github.com/nexus-automations/taskgraph/internal/taskgraph"

// CircularChain is an ordered list of task ids describing a simple cycle,
// closing back on its first element.
type CircularChain []string

// EdgeCounts tallies discovered edges by kind.
type EdgeCounts map[taskgraph.EdgeKind]int

// DependencyAnalysis is the Analyzer's output: everything the Scorer,
// Planner, and Optimizer derive from the task set's dependency structure.
type DependencyAnalysis struct {
	Edges              []taskgraph.Edge
	Levels             map[string]int
	CriticalPath       []string
	IndependentTasks   []string
	CriticalTasks      []string
	CircularChains     []CircularChain
	EdgeCountsByKind   EdgeCounts
	MissingDependencies []MissingDependency
	Warnings           []string
}

// MissingDependency reports a DependencyRef whose target is absent from
// the task set, when that reference was not marked Optional.
type MissingDependency struct {
	TaskID   string
	TargetID string
}

// HasCycles reports whether the analysis found any circular chain. The
// Planner refuses to produce a plan while this is true.
func (a *DependencyAnalysis) HasCycles() bool {
	return len(a.CircularChains) > 0
}

// IsValid reports whether the analysis found no missing dependencies and
// no cycles — the Planner's precondition for emitting a plan.
func (a *DependencyAnalysis) IsValid() bool {
	return len(a.MissingDependencies) == 0 && !a.HasCycles()
}
