package planner

import "github.com/nexus-automations/taskgraph/internal/taskgraph"

// packGreedy places ordered tasks first-fit into groups that keep each
// group within budget and free of exclusive-resource conflicts, trying
// each existing group in order before opening a new one. Used by every
// strategy except ResourceOptimal, which instead sorts its input by
// descending demand before calling the same placement routine
// (first-fit-decreasing).
func packGreedy(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task {
	var groups [][]*taskgraph.Task
	for _, t := range ordered {
		placed := false
		for gi, group := range groups {
			if fits(t, group, budget) {
				groups[gi] = append(groups[gi], t)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []*taskgraph.Task{t})
		}
	}
	return groups
}

// packFirstFitDecreasing is an alias for packGreedy: the "decreasing"
// part of first-fit-decreasing comes from the caller pre-sorting ordered
// by descending demand (ResourceOptimalStrategy.Order does this).
func packFirstFitDecreasing(ordered []*taskgraph.Task, budget ResourceBudget) [][]*taskgraph.Task {
	return packGreedy(ordered, budget)
}

// fits reports whether t can join group without exceeding budget on any
// resource or sharing a capability tag with an existing member (shared
// capability tags are treated as exclusive resource claims, consistent
// with the Analyzer's resource-shared edge discovery).
func fits(t *taskgraph.Task, group []*taskgraph.Task, budget ResourceBudget) bool {
	for _, existing := range group {
		if shareCapability(t, existing) {
			return false
		}
	}
	if budget == nil {
		return true
	}
	totals := make(map[string]float64, len(t.ResourceDemand))
	for r, v := range t.ResourceDemand {
		totals[r] += v
	}
	for _, existing := range group {
		for r, v := range existing.ResourceDemand {
			totals[r] += v
		}
	}
	for r, total := range totals {
		if max, ok := budget[r]; ok && total > max {
			return false
		}
	}
	return true
}

func shareCapability(a, b *taskgraph.Task) bool {
	if len(a.Capabilities) == 0 || len(b.Capabilities) == 0 {
		return false
	}
	bcaps := make(map[string]bool, len(b.Capabilities))
	for _, c := range b.Capabilities {
		bcaps[c] = true
	}
	for _, c := range a.Capabilities {
		if bcaps[c] {
			return true
		}
	}
	return false
}
