// Package ingest reads task descriptor files (JSON or TOML) from disk
// and turns them into the in-memory taskgraph.Task records the core
// operates on. This is I/O the core itself never performs: spec-level
// task persistence is out of scope for the analyzer/scorer/planner, but
// a CLI front-end needs some concrete way to load a task set, the way
// the teacher's nebula package loads a nebula.toml manifest.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/google/uuid"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// descriptor mirrors spec §6's task descriptor record. No field is
// enforced as required: toTask generates an id when it is missing and
// defaults priority to medium, status to pending, createdAt to now,
// and a dependency kind to prerequisite. Fields present in a file but absent from
// this struct are dropped silently by both encoding/json and go-toml/v2,
// satisfying "unknown fields are preserved but ignored" for the purpose
// of constructing a Task (the core has no use for round-tripping them).
type descriptor struct {
	ID          string `json:"id" toml:"id"`
	Title       string `json:"title" toml:"title"`
	Description string `json:"description" toml:"description"`
	Category    string `json:"category" toml:"category"`
	Priority    string `json:"priority" toml:"priority"`
	Status      string `json:"status" toml:"status"`

	CreatedAt time.Time  `json:"createdAt" toml:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" toml:"updatedAt"`
	Deadline  *time.Time `json:"deadline" toml:"deadline"`

	EstimatedDurationMS int                 `json:"estimatedDurationMs" toml:"estimatedDurationMs"`
	Capabilities        []string            `json:"capabilities" toml:"capabilities"`
	ResourceRequirements map[string]float64 `json:"resourceRequirements" toml:"resourceRequirements"`
	Dependencies        []dependencyRef     `json:"dependencies" toml:"dependencies"`
	Tags                []string            `json:"tags" toml:"tags"`

	RetryCount int    `json:"retryCount" toml:"retryCount"`
	LastError  string `json:"lastError" toml:"lastError"`
}

type dependencyRef struct {
	TargetID string `json:"targetId" toml:"targetId"`
	Kind     string `json:"kind" toml:"kind"`
	Optional bool   `json:"optional" toml:"optional"`
}

// descriptorFile is the top-level shape of a descriptor file: a bare
// array of tasks, or an object with a "tasks" key (so a file can also
// carry a schema version or other front-matter alongside the array).
type descriptorFile struct {
	Tasks []descriptor `json:"tasks" toml:"tasks"`
}

// Load reads a JSON or TOML descriptor file (selected by extension:
// .json, .toml, or .yaml/.yml is rejected as unsupported) and returns
// the decoded tasks in file order.
func Load(path string) ([]*taskgraph.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading %s: %w", path, err)
	}

	var df descriptorFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := decodeJSON(data, &df); err != nil {
			return nil, fmt.Errorf("ingest: parsing %s as JSON: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &df); err != nil {
			return nil, fmt.Errorf("ingest: parsing %s as TOML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("ingest: unsupported descriptor extension %q (want .json or .toml)", ext)
	}

	tasks := make([]*taskgraph.Task, 0, len(df.Tasks))
	for _, d := range df.Tasks {
		tasks = append(tasks, toTask(d))
	}
	return tasks, nil
}

// decodeJSON tries the "tasks" wrapper first, then falls back to a bare
// top-level array.
func decodeJSON(data []byte, df *descriptorFile) error {
	if err := json.Unmarshal(data, df); err == nil && len(df.Tasks) > 0 {
		return nil
	}
	var bare []descriptor
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	df.Tasks = bare
	return nil
}

func toTask(d descriptor) *taskgraph.Task {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}

	deps := make([]taskgraph.DependencyRef, 0, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		kind := taskgraph.DependencyKind(dep.Kind)
		if kind == "" {
			kind = taskgraph.DependencyPrerequisite
		}
		deps = append(deps, taskgraph.DependencyRef{
			TargetID: dep.TargetID,
			Kind:     kind,
			Optional: dep.Optional,
		})
	}

	priority := taskgraph.Priority(d.Priority)
	if priority == "" {
		priority = taskgraph.PriorityMedium
	}
	status := taskgraph.Status(d.Status)
	if status == "" {
		status = taskgraph.StatusPending
	}
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &taskgraph.Task{
		ID:                id,
		Title:             d.Title,
		Description:       d.Description,
		Category:          taskgraph.Category(d.Category),
		Priority:          priority,
		Status:            status,
		CreatedAt:         createdAt,
		UpdatedAt:         d.UpdatedAt,
		Deadline:          d.Deadline,
		EstimatedDuration: time.Duration(d.EstimatedDurationMS) * time.Millisecond,
		Capabilities:      d.Capabilities,
		ResourceDemand:    d.ResourceRequirements,
		Dependencies:      deps,
		RetryCount:        d.RetryCount,
		LastError:         d.LastError,
	}
}
