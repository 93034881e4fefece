package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadJSONWithTasksWrapper(t *testing.T) {
	path := writeTemp(t, "tasks.json", `{
		"tasks": [
			{
				"id": "A",
				"title": "Set up project",
				"priority": "high",
				"status": "pending",
				"createdAt": "2026-01-01T00:00:00Z"
			},
			{
				"id": "B",
				"title": "Build feature",
				"priority": "medium",
				"status": "pending",
				"createdAt": "2026-01-01T00:00:00Z",
				"dependencies": [{"targetId": "A", "kind": "prerequisite"}]
			}
		]
	}`)

	tasks, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Priority != taskgraph.PriorityHigh {
		t.Errorf("task A priority = %v, want high", tasks[0].Priority)
	}
	if len(tasks[1].Dependencies) != 1 || tasks[1].Dependencies[0].TargetID != "A" {
		t.Errorf("task B dependencies = %+v", tasks[1].Dependencies)
	}
}

func TestLoadJSONBareArray(t *testing.T) {
	path := writeTemp(t, "tasks.json", `[
		{"id": "A", "title": "Only task", "priority": "low", "status": "pending", "createdAt": "2026-01-01T00:00:00Z"}
	]`)

	tasks, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "A" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeTemp(t, "tasks.toml", `
[[tasks]]
id = "A"
title = "Set up project"
priority = "critical"
status = "pending"
createdAt = 2026-01-01T00:00:00Z
`)

	tasks, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Priority != taskgraph.PriorityCritical {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestLoadMissingIDGetsGenerated(t *testing.T) {
	path := writeTemp(t, "tasks.json", `[{"title": "Unnamed", "priority": "medium", "status": "pending", "createdAt": "2026-01-01T00:00:00Z"}]`)

	tasks, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID == "" {
		t.Fatalf("expected a generated id, got %+v", tasks)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "tasks.yaml", `tasks: []`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}
