// Package taskgraph holds the canonical in-memory task and dependency-edge
// types shared by every component of the planning/scheduling core, along
// with the Graph store that all of them read.
package taskgraph

import "time"

// Priority is a closed set of task priority levels, ordered
// critical > high > medium > low.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// BaseScore returns the fixed basePriority mapping used by the Scorer.
func (p Priority) BaseScore() float64 {
	switch p {
	case PriorityCritical:
		return 100
	case PriorityHigh:
		return 75
	case PriorityMedium:
		return 50
	case PriorityLow:
		return 25
	default:
		return 0
	}
}

// Category is a closed set of task category tags.
type Category string

const (
	CategoryAnalysis      Category = "analysis"
	CategoryFeatureBuild   Category = "feature_build"
	CategoryTesting        Category = "testing"
	CategoryDocumentation  Category = "documentation"
	CategoryDeployment     Category = "deployment"
	CategoryBuild          Category = "build"
	CategoryOther          Category = "other"
)

// categoryOrder imposes the canonical structural ordering used by the
// Analyzer's structural-by-category edge discovery pass.
var categoryOrder = map[Category]int{
	CategoryAnalysis:     0,
	CategoryFeatureBuild:  1,
	CategoryTesting:       2,
	CategoryDeployment:    3,
}

// PrecedesByCategory reports whether category a canonically precedes
// category b. Categories absent from the canonical order (documentation,
// build, other) never participate in structural ordering.
func PrecedesByCategory(a, b Category) bool {
	ra, aok := categoryOrder[a]
	rb, bok := categoryOrder[b]
	return aok && bok && ra < rb
}

// Status is a task's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusQueued    Status = "queued"
	StatusScheduled Status = "scheduled"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether status ends the core's attention to a task.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// DependencyKind classifies a declared dependency reference.
type DependencyKind string

const (
	DependencyPrerequisite     DependencyKind = "prerequisite"
	DependencySoftPrerequisite DependencyKind = "soft-prerequisite"
	DependencyResourceShared   DependencyKind = "resource-shared"
	DependencyTemporal         DependencyKind = "temporal"
)

// DependencyRef is a declared dependency on another task.
type DependencyRef struct {
	TargetID string
	Kind     DependencyKind
	// Optional marks a soft dependency: may be ignored if the target is
	// absent rather than reported as a missing-dependency error.
	Optional bool
}

// EdgeKind classifies a derived dependency edge.
type EdgeKind string

const (
	EdgeExplicit EdgeKind = "explicit"
	EdgeImplicit EdgeKind = "implicit"
	EdgeResource EdgeKind = "resource"
	EdgeTemporal EdgeKind = "temporal"
)

// Edge is a derived, directed dependency edge: From depends on To.
type Edge struct {
	From       string
	To         string
	Kind       EdgeKind
	Confidence float64
}

// ExecutionAttempt records a single historical execution of a task.
type ExecutionAttempt struct {
	StartedAt     time.Time
	EndedAt       time.Time
	Duration      time.Duration
	Success       bool
	ResourceUsage map[string]float64
}

// Task is the core unit of work. The core never mutates a task's semantic
// fields (Title, Description, Priority, ...), and nothing in it appends
// to ExecutionHistory: observed executions go to the Monitor's aggregates
// and its optional ExecutionStore.
type Task struct {
	ID           string
	Title        string
	Description  string
	Category     Category
	Priority     Priority
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Deadline     *time.Time

	EstimatedDuration time.Duration
	Capabilities      []string
	ResourceDemand    map[string]float64
	Dependencies      []DependencyRef

	RetryCount int
	LastError  string

	ExecutionHistory []ExecutionAttempt
}

// SuccessRate returns completed/(completed+failed) over ExecutionHistory,
// defaulting to 1.0 when there is no history.
func (t *Task) SuccessRate() float64 {
	if len(t.ExecutionHistory) == 0 {
		return 1.0
	}
	var succeeded, total int
	for _, a := range t.ExecutionHistory {
		total++
		if a.Success {
			succeeded++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(succeeded) / float64(total)
}

// AverageDuration returns the mean observed duration across
// ExecutionHistory, or EstimatedDuration when there is no history.
func (t *Task) AverageDuration() time.Duration {
	if len(t.ExecutionHistory) == 0 {
		return t.EstimatedDuration
	}
	var sum time.Duration
	for _, a := range t.ExecutionHistory {
		sum += a.Duration
	}
	return sum / time.Duration(len(t.ExecutionHistory))
}
