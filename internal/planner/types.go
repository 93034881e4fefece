// Package planner implements the Execution Planner / Sequencer: given a
// task set, a dependency analysis, and priority scores, it applies a
// selected Strategy to produce an ordered execution plan of parallel
// groups. Conflict scanning is a separate call (DetectConflicts);
// BuildPlan emits a plan without running it.
package planner

import (
	"time"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// ResourceBudget caps the total units of each named resource a single
// parallel group may collectively claim.
type ResourceBudget map[string]float64

// Group is a set of tasks the plan schedules to run concurrently; every
// predecessor of a task in Group has already appeared in an earlier
// group.
type Group struct {
	TaskIDs           []string
	EstimatedDuration time.Duration
	MaxConcurrency    int
	Priority          float64
}

// Metadata carries plan provenance.
type Metadata struct {
	Algorithm   string
	Factors     []string
	Constraints []string
	GeneratedAt time.Time
}

// Plan is the Planner's output: an ordered sequence of parallel groups.
type Plan struct {
	Strategy          string
	Groups            []Group
	CriticalPath      []string
	EstimatedDuration time.Duration
	MaxConcurrency    int
	Metadata          Metadata
}

// ConflictKind classifies a named, scored obstruction to plan validity.
type ConflictKind string

const (
	ConflictResourceContention ConflictKind = "resource_contention"
	ConflictPriorityInversion  ConflictKind = "priority_inversion"
	ConflictMissingDependency  ConflictKind = "missing_dependency"
	ConflictCircularDependency ConflictKind = "circular_dependency"
)

// Severity classifies how serious a Conflict is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Conflict is one obstruction found while scanning a candidate plan.
type Conflict struct {
	Kind       ConflictKind
	TaskIDs    []string
	Severity   Severity
	Suggestion string
}

// ValidationResult never short-circuits: Errors always lists every
// problem found, not just the first.
type ValidationResult struct {
	IsValid              bool
	Errors               []ValidationIssue
	MissingDependencies  []analyzer.MissingDependency
	CircularDependencies []analyzer.CircularChain
}

// ValidationIssue is one entry in a ValidationResult's full error list.
type ValidationIssue struct {
	Kind    string
	TaskIDs []string
	Message string
}
