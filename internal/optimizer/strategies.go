package optimizer

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/planner"
	"github.com/nexus-automations/taskgraph/internal/scorer"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

type passContext struct {
	byID     map[string]*taskgraph.Task
	analysis *analyzer.DependencyAnalysis
	plan     *planner.Plan
	scores   map[string]scorer.ScoreComponents
	metrics  RuntimeMetrics
	cfg      Config
	budget   planner.ResourceBudget
	now      time.Time
}

// throughputRecommendations: raise concurrency up to the budget fraction,
// pair resource-complementary tasks, and surface under-parallelized groups.
func throughputRecommendations(pc passContext) []Recommendation {
	var recs []Recommendation

	for gi, grp := range pc.plan.Groups {
		if pc.budget == nil {
			break
		}
		util := groupUtilization(grp, pc.byID, pc.budget)
		if util < pc.cfg.ConcurrencyBudgetFraction && len(grp.TaskIDs) > 0 {
			recs = append(recs, Recommendation{
				Kind:   KindConcurrencyAdjustment,
				Impact: round2((pc.cfg.ConcurrencyBudgetFraction - util) * 100),
				Details: map[string]any{
					"group_index":       gi,
					"current_utilization": round2(util * 100),
					"target_utilization":  round2(pc.cfg.ConcurrencyBudgetFraction * 100),
				},
				TaskIDs: grp.TaskIDs,
			})
		}
	}

	for i := 0; i+1 < len(pc.plan.Groups); i++ {
		a, b := pc.plan.Groups[i], pc.plan.Groups[i+1]
		if len(a.TaskIDs) != 1 || len(b.TaskIDs) != 1 {
			continue
		}
		ta, tb := pc.byID[a.TaskIDs[0]], pc.byID[b.TaskIDs[0]]
		if ta == nil || tb == nil {
			continue
		}
		if dominantResource(ta) == "" || dominantResource(tb) == "" || dominantResource(ta) == dominantResource(tb) {
			continue
		}
		if dependsOn(pc.analysis, tb.ID, ta.ID) || dependsOn(pc.analysis, ta.ID, tb.ID) {
			continue
		}
		recs = append(recs, Recommendation{
			Kind:    KindParallelExecution,
			Impact:  10,
			Details: map[string]any{"reason": "resource-complementary pair not yet co-scheduled"},
			TaskIDs: []string{ta.ID, tb.ID},
		})
	}

	return recs
}

// latencyRecommendations: prioritize the critical path, preempt blockers,
// and propose splitting oversized batches.
func latencyRecommendations(pc passContext) []Recommendation {
	var recs []Recommendation

	criticalGroup := make(map[string]int, len(pc.analysis.CriticalPath))
	onPath := make(map[string]bool, len(pc.analysis.CriticalPath))
	for _, id := range pc.analysis.CriticalPath {
		onPath[id] = true
	}
	for gi, grp := range pc.plan.Groups {
		for _, id := range grp.TaskIDs {
			if onPath[id] {
				criticalGroup[id] = gi
			}
		}
	}
	for gi, grp := range pc.plan.Groups {
		for _, id := range grp.TaskIDs {
			if onPath[id] {
				continue
			}
			for cpID, cpGi := range criticalGroup {
				if cpGi > gi && !dependsOn(pc.analysis, cpID, id) {
					recs = append(recs, Recommendation{
						Kind:    KindCriticalPathOptimization,
						Impact:  5,
						Details: map[string]any{"reason": "critical-path task scheduled later than a non-blocking off-path task"},
						TaskIDs: []string{id, cpID},
					})
				}
			}
		}
	}

	for gi, grp := range pc.plan.Groups {
		for _, lowID := range grp.TaskIDs {
			low := pc.byID[lowID]
			if low == nil {
				continue
			}
			for hi := gi + 1; hi < len(pc.plan.Groups); hi++ {
				for _, highID := range pc.plan.Groups[hi].TaskIDs {
					high := pc.byID[highID]
					if high == nil {
						continue
					}
					blocked := high.Deadline != nil || high.Priority.BaseScore() > low.Priority.BaseScore()
					if !blocked || dependsOn(pc.analysis, highID, lowID) {
						continue
					}
					recs = append(recs, Recommendation{
						Kind:   KindTaskPreemption,
						Impact: round2(low.EstimatedDuration.Seconds() / max1(pc.plan.EstimatedDuration.Seconds()) * 100),
						Details: map[string]any{
							"reason": "low-priority task occupies a slot ahead of higher-priority or deadline-bearing work",
						},
						TaskIDs: []string{lowID, highID},
					})
				}
			}
		}
	}

	for gi, grp := range pc.plan.Groups {
		if len(grp.TaskIDs) > pc.cfg.MaxBatchSize {
			recs = append(recs, Recommendation{
				Kind:    KindTaskBatching,
				Impact:  3,
				Details: map[string]any{"group_index": gi, "reason": "split oversized group to reduce tail latency"},
				TaskIDs: grp.TaskIDs,
			})
		}
	}

	return recs
}

// resourceEfficiencyRecommendations: bin-pack tighter, flag infeasible
// demand, and cluster similar tasks via the configured batching strategy.
func resourceEfficiencyRecommendations(pc passContext) []Recommendation {
	var recs []Recommendation

	if pc.budget != nil {
		theoretical := theoreticalMinGroups(pc.byID, pc.budget)
		if theoretical > 0 && theoretical < len(pc.plan.Groups) {
			impact := round2(float64(len(pc.plan.Groups)-theoretical) / max1(float64(len(pc.plan.Groups))) * 100)
			recs = append(recs, Recommendation{
				Kind:   KindResourceBalancing,
				Impact: impact,
				Details: map[string]any{
					"current_groups":     humanizeCount(len(pc.plan.Groups)),
					"theoretical_groups":  humanizeCount(theoretical),
					"impact_human":        humanizeImpact(impact),
				},
			})
		}

		for id, t := range pc.byID {
			for r, demand := range t.ResourceDemand {
				if max, ok := pc.budget[r]; ok && demand > max {
					recs = append(recs, Recommendation{
						Kind:    KindResourceConflictResolution,
						Impact:  0,
						Details: map[string]any{"resource": r, "demand": demand, "budget": max},
						TaskIDs: []string{id},
					})
				}
			}
		}
	}

	tasks := make([]*taskgraph.Task, 0, len(pc.byID))
	for _, t := range pc.byID {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	for _, batch := range batchesFor(tasks, pc.cfg) {
		recs = append(recs, Recommendation{
			Kind:    KindTaskBatching,
			Impact:  round2(float64(len(batch)) * 2),
			Details: map[string]any{"strategy": pc.cfg.BatchingStrategy},
			TaskIDs: batch,
		})
	}

	return recs
}

// deadlineRecommendations: simulate earliest finish per task against the
// current plan and warn on violations; recommend earliest-deadline-first
// reordering within each level.
func deadlineRecommendations(pc passContext) []Recommendation {
	var recs []Recommendation

	var elapsed time.Duration
	for _, grp := range pc.plan.Groups {
		finish := pc.now.Add(elapsed + grp.EstimatedDuration)
		for _, id := range grp.TaskIDs {
			t := pc.byID[id]
			if t == nil || t.Deadline == nil {
				continue
			}
			if finish.After(*t.Deadline) {
				recs = append(recs, Recommendation{
					Kind:   KindDeadlineViolationWarning,
					Impact: 0,
					Details: map[string]any{
						"slack":                 t.Deadline.Sub(finish).String(),
						"slack_human":           humanize.RelTime(finish, *t.Deadline, "late", "early"),
						"blocking_predecessors": predecessorsOf(pc.analysis, id),
					},
					TaskIDs: []string{id},
				})
			}
		}
		elapsed += grp.EstimatedDuration
	}

	hasDeadlineOutOfOrder := false
	for i := 0; i+1 < len(pc.plan.Groups); i++ {
		a := earliestDeadline(pc.plan.Groups[i].TaskIDs, pc.byID)
		b := earliestDeadline(pc.plan.Groups[i+1].TaskIDs, pc.byID)
		if a != nil && b != nil && b.Before(*a) {
			hasDeadlineOutOfOrder = true
		}
	}
	if hasDeadlineOutOfOrder {
		recs = append(recs, Recommendation{
			Kind:    KindDeadlineScheduling,
			Impact:  8,
			Details: map[string]any{"reason": "reorder within levels by earliest deadline first"},
		})
	}

	return recs
}

func groupUtilization(grp planner.Group, byID map[string]*taskgraph.Task, budget planner.ResourceBudget) float64 {
	totals := make(map[string]float64)
	for _, id := range grp.TaskIDs {
		t := byID[id]
		if t == nil {
			continue
		}
		for r, v := range t.ResourceDemand {
			totals[r] += v
		}
	}
	var worst float64
	for r, total := range totals {
		if max, ok := budget[r]; ok && max > 0 {
			if u := total / max; u > worst {
				worst = u
			}
		}
	}
	return worst
}

func dominantResource(t *taskgraph.Task) string {
	best := ""
	var bestV float64
	keys := make([]string, 0, len(t.ResourceDemand))
	for r := range t.ResourceDemand {
		keys = append(keys, r)
	}
	sort.Strings(keys)
	for _, r := range keys {
		if v := t.ResourceDemand[r]; v > bestV {
			bestV, best = v, r
		}
	}
	return best
}

func dependsOn(analysis *analyzer.DependencyAnalysis, from, to string) bool {
	for _, e := range analysis.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

func predecessorsOf(analysis *analyzer.DependencyAnalysis, taskID string) []string {
	var out []string
	for _, e := range analysis.Edges {
		if e.From == taskID {
			out = append(out, e.To)
		}
	}
	sort.Strings(out)
	return out
}

func earliestDeadline(ids []string, byID map[string]*taskgraph.Task) *time.Time {
	var best *time.Time
	for _, id := range ids {
		t := byID[id]
		if t == nil || t.Deadline == nil {
			continue
		}
		if best == nil || t.Deadline.Before(*best) {
			best = t.Deadline
		}
	}
	return best
}

func theoreticalMinGroups(byID map[string]*taskgraph.Task, budget planner.ResourceBudget) int {
	if len(budget) == 0 {
		return 0
	}
	totals := make(map[string]float64)
	for _, t := range byID {
		for r, v := range t.ResourceDemand {
			totals[r] += v
		}
	}
	best := 0
	for r, total := range totals {
		max, ok := budget[r]
		if !ok || max <= 0 {
			continue
		}
		n := int(total/max) + 1
		if n > best {
			best = n
		}
	}
	return best
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}

func max1(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
