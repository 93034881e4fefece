package analyzer

import (
	"sort"
	"time"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// discoverExplicit emits one edge per declared DependencyRef, in
// taskId → dep.TargetID direction. A reference to a missing, non-optional
// target is reported as a MissingDependency and the edge is skipped;
// an optional reference to a missing target is silently skipped (per the
// Open Question resolution: optional deps never produce a missing-
// dependency error).
func discoverExplicit(tasks []*taskgraph.Task, byID map[string]*taskgraph.Task) ([]taskgraph.Edge, []MissingDependency) {
	var edges []taskgraph.Edge
	var missing []MissingDependency

	for _, t := range tasks {
		seen := make(map[string]bool) // de-dup identical (target,kind) refs
		for _, dep := range t.Dependencies {
			key := dep.TargetID + "|" + string(dep.Kind)
			if seen[key] {
				continue
			}
			seen[key] = true

			if _, ok := byID[dep.TargetID]; !ok {
				if !dep.Optional {
					missing = append(missing, MissingDependency{TaskID: t.ID, TargetID: dep.TargetID})
				}
				continue
			}
			confidence := 1.0
			if dep.Optional {
				confidence = 0.5
			}
			edges = append(edges, taskgraph.Edge{
				From: t.ID, To: dep.TargetID, Kind: taskgraph.EdgeExplicit, Confidence: confidence,
			})
		}
	}
	sortEdges(edges)
	return edges, missing
}

// discoverImplicitByContent tokenizes titles/descriptions into a
// stop-word-filtered keyword bag, and for every ordered pair (a, b) with
// a.CreatedAt <= b.CreatedAt, emits an edge b -> a (b depends on a) when
// their Jaccard keyword overlap exceeds cfg.JaccardThreshold and a's
// title contains a precedence-vocabulary keyword.
func discoverImplicitByContent(tasks []*taskgraph.Task, cfg Config) []taskgraph.Edge {
	ordered := make([]*taskgraph.Task, len(tasks))
	copy(ordered, tasks)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	keywords := make(map[string]map[string]bool, len(ordered))
	titleWords := make(map[string]map[string]bool, len(ordered))
	for _, t := range ordered {
		keywords[t.ID] = tokenize(t.Title+" "+t.Description, cfg.StopWords)
		titleWords[t.ID] = tokenize(t.Title, cfg.StopWords)
	}

	var edges []taskgraph.Edge
	for i, a := range ordered {
		if !hasPrecedenceWord(titleWords[a.ID], cfg.PrecedenceVocabulary) {
			continue
		}
		for j := i + 1; j < len(ordered); j++ {
			b := ordered[j]
			if a.CreatedAt.After(b.CreatedAt) {
				continue
			}
			overlap := jaccard(keywords[a.ID], keywords[b.ID])
			if overlap > cfg.JaccardThreshold {
				edges = append(edges, taskgraph.Edge{
					From: b.ID, To: a.ID, Kind: taskgraph.EdgeImplicit, Confidence: overlap,
				})
			}
		}
	}
	sortEdges(edges)
	return edges
}

// discoverStructuralByCategory imposes the canonical category ordering
// analysis -> feature_build -> testing -> deployment. For every pair
// respecting this order, emits an implicit edge at confidence 0.5 when no
// explicit edge between the same pair already exists.
func discoverStructuralByCategory(tasks []*taskgraph.Task, explicitPairs map[[2]string]bool) []taskgraph.Edge {
	var edges []taskgraph.Edge
	for _, a := range tasks {
		for _, b := range tasks {
			if a.ID == b.ID {
				continue
			}
			if !taskgraph.PrecedesByCategory(a.Category, b.Category) {
				continue
			}
			if explicitPairs[[2]string{b.ID, a.ID}] {
				continue
			}
			edges = append(edges, taskgraph.Edge{
				From: b.ID, To: a.ID, Kind: taskgraph.EdgeImplicit, Confidence: 0.5,
			})
		}
	}
	sortEdges(edges)
	return edges
}

// discoverResourceShared groups tasks by declared capability tag. Within
// each group of size >= 2, emits pairwise edges in lexicographic id order
// so ordering is total and deterministic.
func discoverResourceShared(tasks []*taskgraph.Task) []taskgraph.Edge {
	groups := make(map[string][]string)
	for _, t := range tasks {
		for _, capTag := range t.Capabilities {
			groups[capTag] = append(groups[capTag], t.ID)
		}
	}

	seen := make(map[[2]string]bool)
	var edges []taskgraph.Edge
	for _, capTag := range sortedKeys(groups) {
		ids := groups[capTag]
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pair := [2]string{ids[i], ids[j]}
				if seen[pair] {
					continue
				}
				seen[pair] = true
				edges = append(edges, taskgraph.Edge{
					From: ids[j], To: ids[i], Kind: taskgraph.EdgeResource, Confidence: 0.7,
				})
			}
		}
	}
	sortEdges(edges)
	return edges
}

// discoverTemporal groups tasks whose deadlines fall within window of one
// another and chains each cluster in deadline-ascending order, later ->
// earlier (later depends on earlier having run first).
func discoverTemporal(tasks []*taskgraph.Task, window time.Duration) []taskgraph.Edge {
	var withDeadline []*taskgraph.Task
	for _, t := range tasks {
		if t.Deadline != nil {
			withDeadline = append(withDeadline, t)
		}
	}
	if len(withDeadline) < 2 {
		return nil
	}
	sort.Slice(withDeadline, func(i, j int) bool {
		return withDeadline[i].Deadline.Before(*withDeadline[j].Deadline)
	})

	var edges []taskgraph.Edge
	clusterStart := 0
	for i := 1; i <= len(withDeadline); i++ {
		if i < len(withDeadline) && withDeadline[i].Deadline.Sub(*withDeadline[clusterStart].Deadline) <= window {
			continue
		}
		cluster := withDeadline[clusterStart:i]
		for k := 1; k < len(cluster); k++ {
			edges = append(edges, taskgraph.Edge{
				From: cluster[k].ID, To: cluster[k-1].ID, Kind: taskgraph.EdgeTemporal, Confidence: 0.6,
			})
		}
		clusterStart = i
	}
	sortEdges(edges)
	return edges
}

func sortEdges(edges []taskgraph.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Kind < edges[j].Kind
	})
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
