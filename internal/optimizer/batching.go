package optimizer

import (
	"sort"
	"strings"
	"time"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// batchSimilarTasks clusters tasks whose sorted capability-tag sets are
// identical, plus one cluster of all tasks without tags, and cuts each
// cluster into batches of at most cfg.MaxBatchSize; a batch of one task
// is dropped. Titles are not compared, and tasks that share only some of
// their tags land in different clusters.
func batchSimilarTasks(tasks []*taskgraph.Task, cfg Config) [][]string {
	byCapability := make(map[string][]*taskgraph.Task)
	var uncapped []*taskgraph.Task
	for _, t := range tasks {
		if len(t.Capabilities) == 0 {
			uncapped = append(uncapped, t)
			continue
		}
		caps := append([]string(nil), t.Capabilities...)
		sort.Strings(caps)
		key := strings.Join(caps, ",")
		byCapability[key] = append(byCapability[key], t)
	}

	var batches [][]string
	keys := make([]string, 0, len(byCapability))
	for k := range byCapability {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		batches = append(batches, chunkIDs(byCapability[k], cfg.MaxBatchSize)...)
	}
	if len(uncapped) > 0 {
		sort.Slice(uncapped, func(i, j int) bool { return uncapped[i].ID < uncapped[j].ID })
		batches = append(batches, chunkIDs(uncapped, cfg.MaxBatchSize)...)
	}
	return batches
}

// batchByResourceDemand groups tasks whose demand vectors are
// near-identical within cfg.BatchEpsilon (relative tolerance).
func batchByResourceDemand(tasks []*taskgraph.Task, cfg Config) [][]string {
	sorted := make([]*taskgraph.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	used := make(map[string]bool)
	var batches [][]string
	for _, t := range sorted {
		if used[t.ID] {
			continue
		}
		group := []*taskgraph.Task{t}
		used[t.ID] = true
		for _, other := range sorted {
			if used[other.ID] || len(group) >= cfg.MaxBatchSize {
				continue
			}
			if similarDemand(t, other, cfg.BatchEpsilon) {
				group = append(group, other)
				used[other.ID] = true
			}
		}
		batches = append(batches, chunkIDs(group, cfg.MaxBatchSize)...)
	}
	return batches
}

func similarDemand(a, b *taskgraph.Task, epsilon float64) bool {
	if len(a.ResourceDemand) != len(b.ResourceDemand) {
		return false
	}
	for r, av := range a.ResourceDemand {
		bv, ok := b.ResourceDemand[r]
		if !ok {
			return false
		}
		if av == 0 && bv == 0 {
			continue
		}
		denom := av
		if denom == 0 {
			denom = bv
		}
		if abs(av-bv)/abs(denom) > epsilon {
			return false
		}
	}
	return true
}

// batchTemporal clusters tasks whose deadlines fall within cfg.TemporalWindow
// of one another, ordered by deadline ascending.
func batchTemporal(tasks []*taskgraph.Task, cfg Config) [][]string {
	var withDeadline []*taskgraph.Task
	for _, t := range tasks {
		if t.Deadline != nil {
			withDeadline = append(withDeadline, t)
		}
	}
	sort.Slice(withDeadline, func(i, j int) bool { return withDeadline[i].Deadline.Before(*withDeadline[j].Deadline) })

	var batches [][]string
	var current []*taskgraph.Task
	var anchor time.Time
	for _, t := range withDeadline {
		if len(current) == 0 {
			current = []*taskgraph.Task{t}
			anchor = *t.Deadline
			continue
		}
		if t.Deadline.Sub(anchor) <= cfg.TemporalWindow {
			current = append(current, t)
		} else {
			batches = append(batches, chunkIDs(current, cfg.MaxBatchSize)...)
			current = []*taskgraph.Task{t}
			anchor = *t.Deadline
		}
	}
	if len(current) > 0 {
		batches = append(batches, chunkIDs(current, cfg.MaxBatchSize)...)
	}
	return batches
}

func chunkIDs(tasks []*taskgraph.Task, max int) [][]string {
	if max <= 0 || len(tasks) <= max {
		ids := make([]string, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID
		}
		if len(ids) < 2 {
			return nil
		}
		return [][]string{ids}
	}
	var out [][]string
	for i := 0; i < len(tasks); i += max {
		end := i + max
		if end > len(tasks) {
			end = len(tasks)
		}
		chunk := tasks[i:end]
		if len(chunk) < 2 {
			continue
		}
		ids := make([]string, len(chunk))
		for j, t := range chunk {
			ids[j] = t.ID
		}
		out = append(out, ids)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// batchesFor resolves the configured batching strategy.
func batchesFor(tasks []*taskgraph.Task, cfg Config) [][]string {
	switch cfg.BatchingStrategy {
	case "resource_optimization":
		return batchByResourceDemand(tasks, cfg)
	case "temporal":
		return batchTemporal(tasks, cfg)
	default:
		return batchSimilarTasks(tasks, cfg)
	}
}
