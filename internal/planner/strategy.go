package planner

import (
	"sort"

	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// Strategy is the capability set spec §9 calls "polymorphism over
// strategies": a way to rank tasks within a level and a way to pack a
// ranked level into parallel groups under a resource budget.
type Strategy interface {
	Name() string
	// Order returns level sorted into the sequence this strategy wants
	// tasks considered for packing in.
	Order(level []*taskgraph.Task, scores map[string]scorer.ScoreComponents, criticalPath map[string]bool) []*taskgraph.Task
	// Pack partitions an already-ordered level into parallel groups that
	// respect budget and the shared exclusive-resource conflict rule.
	Pack(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task
}

// byScoreDesc sorts by Final score descending, age ascending as tiebreak.
func byScoreDesc(tasks []*taskgraph.Task, scores map[string]scorer.ScoreComponents) []*taskgraph.Task {
	out := make([]*taskgraph.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scores[out[i].ID].Final, scores[out[j].ID].Final
		if si != sj {
			return si > sj
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FIFOStrategy sorts strictly by creation time ascending.
type FIFOStrategy struct{}

func (FIFOStrategy) Name() string { return "fifo" }

func (FIFOStrategy) Order(level []*taskgraph.Task, _ map[string]scorer.ScoreComponents, _ map[string]bool) []*taskgraph.Task {
	out := make([]*taskgraph.Task, len(level))
	copy(out, level)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (FIFOStrategy) Pack(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task {
	return packGreedy(ordered, budget)
}

// PriorityFirstStrategy sorts by final priority score descending, ties
// broken by age.
type PriorityFirstStrategy struct{}

func (PriorityFirstStrategy) Name() string { return "priority" }

func (PriorityFirstStrategy) Order(level []*taskgraph.Task, scores map[string]scorer.ScoreComponents, _ map[string]bool) []*taskgraph.Task {
	return byScoreDesc(level, scores)
}

func (PriorityFirstStrategy) Pack(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task {
	return packGreedy(ordered, budget)
}

// CriticalPathStrategy places critical-path tasks first within a level,
// interleaving off-path tasks by score in the remaining slots.
type CriticalPathStrategy struct{}

func (CriticalPathStrategy) Name() string { return "critical_path" }

func (CriticalPathStrategy) Order(level []*taskgraph.Task, scores map[string]scorer.ScoreComponents, criticalPath map[string]bool) []*taskgraph.Task {
	var onPath, off []*taskgraph.Task
	for _, t := range level {
		if criticalPath[t.ID] {
			onPath = append(onPath, t)
		} else {
			off = append(off, t)
		}
	}
	onPath = byScoreDesc(onPath, scores)
	off = byScoreDesc(off, scores)
	return append(onPath, off...)
}

func (CriticalPathStrategy) Pack(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task {
	return packGreedy(ordered, budget)
}

// ResourceOptimalStrategy bin-packs by largest resource demand first
// (first-fit-decreasing) within each level.
type ResourceOptimalStrategy struct{}

func (ResourceOptimalStrategy) Name() string { return "resource_optimal" }

func (ResourceOptimalStrategy) Order(level []*taskgraph.Task, _ map[string]scorer.ScoreComponents, _ map[string]bool) []*taskgraph.Task {
	out := make([]*taskgraph.Task, len(level))
	copy(out, level)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := totalDemand(out[i]), totalDemand(out[j])
		if di != dj {
			return di > dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (ResourceOptimalStrategy) Pack(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task {
	return packFirstFitDecreasing(ordered, budget)
}

// DependencyAwareStrategy (the default) orders each level by score.
type DependencyAwareStrategy struct{}

func (DependencyAwareStrategy) Name() string { return "dependency_aware" }

func (DependencyAwareStrategy) Order(level []*taskgraph.Task, scores map[string]scorer.ScoreComponents, _ map[string]bool) []*taskgraph.Task {
	return byScoreDesc(level, scores)
}

func (DependencyAwareStrategy) Pack(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task {
	return packGreedy(ordered, budget)
}

func totalDemand(t *taskgraph.Task) float64 {
	var sum float64
	for _, v := range t.ResourceDemand {
		sum += v
	}
	return sum
}

// ByName resolves a strategy by its configuration name, defaulting to
// DependencyAwareStrategy when name is unrecognized or empty.
func ByName(name string) Strategy {
	switch name {
	case "fifo":
		return FIFOStrategy{}
	case "priority":
		return PriorityFirstStrategy{}
	case "critical_path":
		return CriticalPathStrategy{}
	case "resource_optimal":
		return ResourceOptimalStrategy{}
	default:
		return DependencyAwareStrategy{}
	}
}
