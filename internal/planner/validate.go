package planner

import (
	"fmt"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// Validate never short-circuits: it always returns the complete list of
// problems found across tasks and analysis, not just the first.
func Validate(tasks []*taskgraph.Task, analysis *analyzer.DependencyAnalysis) ValidationResult {
	var issues []ValidationIssue

	for _, t := range tasks {
		if t.ID == "" {
			issues = append(issues, ValidationIssue{Kind: "malformed_task", Message: "task has empty id"})
			continue
		}
		if t.Title == "" {
			issues = append(issues, ValidationIssue{Kind: "malformed_task", TaskIDs: []string{t.ID}, Message: "task has empty title"})
		}
		if t.EstimatedDuration < 0 {
			issues = append(issues, ValidationIssue{Kind: "malformed_task", TaskIDs: []string{t.ID}, Message: "negative estimated duration"})
		}
		for r, v := range t.ResourceDemand {
			if v < 0 {
				issues = append(issues, ValidationIssue{Kind: "malformed_task", TaskIDs: []string{t.ID}, Message: fmt.Sprintf("negative resource demand for %s", r)})
			}
		}
	}

	for _, md := range analysis.MissingDependencies {
		issues = append(issues, ValidationIssue{
			Kind:    "missing_dependency",
			TaskIDs: []string{md.TaskID, md.TargetID},
			Message: fmt.Sprintf("%s depends on %s, which does not exist", md.TaskID, md.TargetID),
		})
	}

	for _, chain := range analysis.CircularChains {
		issues = append(issues, ValidationIssue{
			Kind:    "circular_dependency",
			TaskIDs: []string(chain),
			Message: fmt.Sprintf("circular dependency: %v", []string(chain)),
		})
	}

	return ValidationResult{
		IsValid:              len(issues) == 0,
		Errors:               issues,
		MissingDependencies:  analysis.MissingDependencies,
		CircularDependencies: analysis.CircularChains,
	}
}

// DetectConflicts scans a built plan for the four named conflict kinds.
// It is a secondary defense: the Analyzer already forces same-capability
// tasks onto different levels via resource edges, and Strategy.Pack
// already refuses to co-group tasks sharing a capability, so most
// resource_contention cases never reach here in a plan this package
// built itself. It still applies to plans assembled or edited externally.
func DetectConflicts(tasks []*taskgraph.Task, analysis *analyzer.DependencyAnalysis, plan *Plan) []Conflict {
	var conflicts []Conflict
	byID := make(map[string]*taskgraph.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	for _, chain := range analysis.CircularChains {
		conflicts = append(conflicts, Conflict{
			Kind:       ConflictCircularDependency,
			TaskIDs:    []string(chain),
			Severity:   SeverityCritical,
			Suggestion: "break the cycle by removing or making optional one of the listed dependencies",
		})
	}

	for _, md := range analysis.MissingDependencies {
		conflicts = append(conflicts, Conflict{
			Kind:       ConflictMissingDependency,
			TaskIDs:    []string{md.TaskID, md.TargetID},
			Severity:   SeverityHigh,
			Suggestion: fmt.Sprintf("create task %s or mark the dependency on it as optional", md.TargetID),
		})
	}

	if plan != nil {
		for _, grp := range plan.Groups {
			for i := 0; i < len(grp.TaskIDs); i++ {
				for j := i + 1; j < len(grp.TaskIDs); j++ {
					a, b := byID[grp.TaskIDs[i]], byID[grp.TaskIDs[j]]
					if a == nil || b == nil {
						continue
					}
					if shareCapability(a, b) {
						conflicts = append(conflicts, Conflict{
							Kind:       ConflictResourceContention,
							TaskIDs:    []string{a.ID, b.ID},
							Severity:   SeverityMedium,
							Suggestion: "move one of these tasks to a different parallel group",
						})
					}
				}
			}
		}

		conflicts = append(conflicts, detectPriorityInversions(byID, analysis, plan)...)
	}

	return conflicts
}

// detectPriorityInversions flags a lower-priority task scheduled in an
// earlier group than a higher-priority task it does not block, i.e. no
// dependency chain requires the earlier task to precede the later one.
func detectPriorityInversions(byID map[string]*taskgraph.Task, analysis *analyzer.DependencyAnalysis, plan *Plan) []Conflict {
	mustPrecede := ancestorsOf(analysis.Edges)

	groupOf := make(map[string]int, len(byID))
	for gi, grp := range plan.Groups {
		for _, id := range grp.TaskIDs {
			groupOf[id] = gi
		}
	}

	var conflicts []Conflict
	seen := make(map[[2]string]bool)
	for _, earlyGrp := range plan.Groups {
		for _, earlyID := range earlyGrp.TaskIDs {
			early := byID[earlyID]
			if early == nil {
				continue
			}
			for _, lateGrp := range plan.Groups {
				if groupOf[lateGrp.TaskIDs[0]] <= groupOf[earlyID] {
					continue
				}
				for _, lateID := range lateGrp.TaskIDs {
					late := byID[lateID]
					if late == nil || late.Priority.BaseScore() <= early.Priority.BaseScore() {
						continue
					}
					if mustPrecede[lateID][earlyID] {
						continue
					}
					key := [2]string{earlyID, lateID}
					if seen[key] {
						continue
					}
					seen[key] = true
					conflicts = append(conflicts, Conflict{
						Kind:       ConflictPriorityInversion,
						TaskIDs:    []string{earlyID, lateID},
						Severity:   SeverityLow,
						Suggestion: fmt.Sprintf("schedule %s ahead of %s: it has higher priority and does not depend on it", lateID, earlyID),
					})
				}
			}
		}
	}
	return conflicts
}

// ancestorsOf returns, for each task, the set of tasks that must complete
// before it per the derived edges (From depends on To).
func ancestorsOf(edges []taskgraph.Edge) map[string]map[string]bool {
	direct := make(map[string][]string)
	for _, e := range edges {
		direct[e.From] = append(direct[e.From], e.To)
	}
	memo := make(map[string]map[string]bool)
	var resolve func(id string, visiting map[string]bool) map[string]bool
	resolve = func(id string, visiting map[string]bool) map[string]bool {
		if r, ok := memo[id]; ok {
			return r
		}
		if visiting[id] {
			return map[string]bool{}
		}
		visiting[id] = true
		result := make(map[string]bool)
		for _, dep := range direct[id] {
			result[dep] = true
			for anc := range resolve(dep, visiting) {
				result[anc] = true
			}
		}
		memo[id] = result
		return result
	}
	out := make(map[string]map[string]bool, len(direct))
	for id := range direct {
		out[id] = resolve(id, make(map[string]bool))
	}
	return out
}
