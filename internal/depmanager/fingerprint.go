package depmanager

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// fingerprint computes a stable hash over sorted (id, priority, sorted
// deps) tuples plus configVersion, per spec §9's caching design note.
// Two calls over the same task set and config version always produce
// the same fingerprint, regardless of slice iteration order.
func fingerprint(tasks []*taskgraph.Task, configVersion string) string {
	type tuple struct {
		id       string
		priority string
		deps     []string
	}
	tuples := make([]tuple, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		deps := make([]string, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			deps = append(deps, d.TargetID+":"+string(d.Kind))
		}
		sort.Strings(deps)
		tuples = append(tuples, tuple{id: t.ID, priority: string(t.Priority), deps: deps})
	}
	sort.Slice(tuples, func(i, j int) bool { return tuples[i].id < tuples[j].id })

	var b strings.Builder
	for _, tp := range tuples {
		b.WriteString(tp.id)
		b.WriteByte('|')
		b.WriteString(tp.priority)
		b.WriteByte('|')
		b.WriteString(strings.Join(tp.deps, ","))
		b.WriteByte(';')
	}
	b.WriteString("cfg=")
	b.WriteString(configVersion)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
