package analyzer

import (
	"sort"
	"time"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// computeLevels assigns level(t) = 1 + max(level(p) for p in deps(t)), or
// 0 if t has no dependencies, using Kahn's algorithm over the (assumed
// acyclic) union graph. Callers must not invoke this on a graph reported
// to contain cycles.
func computeLevels(g *workGraph) map[string]int {
	reverse := reverseOf(g)
	remaining := make(map[string]int, len(g.nodes))
	for _, id := range g.nodes {
		remaining[id] = len(g.out[id])
	}

	levels := make(map[string]int, len(g.nodes))
	var queue []string
	for _, id := range g.nodes {
		if remaining[id] == 0 {
			levels[id] = 0
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		var next []string
		for dependent := range reverse[cur] {
			remaining[dependent]--
			if levels[dependent] < levels[cur]+1 {
				levels[dependent] = levels[cur] + 1
			}
			if remaining[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	return levels
}

func reverseOf(g *workGraph) map[string]map[string]bool {
	rev := make(map[string]map[string]bool, len(g.nodes))
	for _, id := range g.nodes {
		rev[id] = make(map[string]bool)
	}
	for from, tos := range g.out {
		for to := range tos {
			if rev[to] == nil {
				rev[to] = make(map[string]bool)
			}
			rev[to][from] = true
		}
	}
	return rev
}

// parallelFrontiers groups task ids by level, sorted within each group.
func parallelFrontiers(levels map[string]int) map[int][]string {
	frontiers := make(map[int][]string)
	for id, lvl := range levels {
		frontiers[lvl] = append(frontiers[lvl], id)
	}
	for lvl := range frontiers {
		sort.Strings(frontiers[lvl])
	}
	return frontiers
}

// independentTasks returns ids with both in-degree and out-degree zero in
// the union graph.
func independentTasks(g *workGraph) []string {
	reverse := reverseOf(g)
	var ids []string
	for _, id := range g.nodes {
		if len(g.out[id]) == 0 && len(reverse[id]) == 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// computeCriticalPath finds the longest path by summed EstimatedDuration
// using dynamic programming over a deps-before-dependents order. Ties are
// broken by higher priority, then lexicographic id, both when choosing a
// node's best predecessor and when choosing the terminal node of the
// overall path.
func computeCriticalPath(g *workGraph, byID map[string]*taskgraph.Task, levels map[string]int) []string {
	order := make([]string, len(g.nodes))
	copy(order, g.nodes)
	sort.Slice(order, func(i, j int) bool {
		if levels[order[i]] != levels[order[j]] {
			return levels[order[i]] < levels[order[j]]
		}
		return order[i] < order[j]
	})

	dist := make(map[string]time.Duration, len(order))
	prev := make(map[string]string, len(order))

	for _, id := range order {
		t := byID[id]
		var best time.Duration
		bestDep := ""
		for _, dep := range sortedOut(g, id) {
			candidate := dist[dep]
			switch {
			case bestDep == "":
				best, bestDep = candidate, dep
			case candidate > best, candidate == best && betterTieBreak(byID[dep], byID[bestDep]):
				best, bestDep = candidate, dep
			}
		}
		dist[id] = best + t.EstimatedDuration
		prev[id] = bestDep
	}

	if len(order) == 0 {
		return nil
	}

	end := order[0]
	for _, id := range order[1:] {
		if dist[id] > dist[end] || (dist[id] == dist[end] && betterTieBreak(byID[id], byID[end])) {
			end = id
		}
	}

	var path []string
	for cur := end; cur != ""; cur = prev[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// betterTieBreak reports whether a should be preferred over b under equal
// distance: higher priority first, then lexicographically smaller id.
func betterTieBreak(a, b *taskgraph.Task) bool {
	pa, pb := a.Priority.BaseScore(), b.Priority.BaseScore()
	if pa != pb {
		return pa > pb
	}
	return a.ID < b.ID
}

// markCriticalTasks returns the set of task ids that are either on the
// critical path or whose removal disconnects more than maxRemovalFraction
// of the remaining tasks from the roots (level-0 tasks) of the graph.
func markCriticalTasks(g *workGraph, levels map[string]int, criticalPath []string, maxRemovalFraction float64) []string {
	critical := make(map[string]bool, len(criticalPath))
	for _, id := range criticalPath {
		critical[id] = true
	}

	var roots []string
	for id, lvl := range levels {
		if lvl == 0 {
			roots = append(roots, id)
		}
	}

	total := len(g.nodes)
	if total > 1 {
		baseline := reachableFrom(g, roots, "")
		for _, id := range g.nodes {
			if critical[id] {
				continue
			}
			after := reachableFrom(g, roots, id)
			disconnected := (len(baseline) - 1) - len(after) // -1 excludes the removed node itself
			if disconnected < 0 {
				disconnected = 0
			}
			if float64(disconnected)/float64(total-1) > maxRemovalFraction {
				critical[id] = true
			}
		}
	}

	ids := make([]string, 0, len(critical))
	for id := range critical {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// reachableFrom returns the set of nodes reachable from roots by walking
// dependent edges (reverse of "depends on"), excluding the node named by
// exclude (used to simulate its removal).
func reachableFrom(g *workGraph, roots []string, exclude string) map[string]bool {
	reverse := reverseOf(g)
	visited := make(map[string]bool)
	var queue []string
	for _, r := range roots {
		if r == exclude {
			continue
		}
		visited[r] = true
		queue = append(queue, r)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dependent := range reverse[cur] {
			if dependent == exclude || visited[dependent] {
				continue
			}
			visited[dependent] = true
			queue = append(queue, dependent)
		}
	}
	return visited
}
