package monitor

import (
	"context"

	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// ExecutionStore is an optional external collaborator that persists
// per-task execution history across process restarts. The core itself
// only requires something implementing this interface; persistence of
// task records is out of scope for the core proper.
type ExecutionStore interface {
	Record(ctx context.Context, taskID string, attempt taskgraph.ExecutionAttempt) error
	History(ctx context.Context, taskID string) ([]taskgraph.ExecutionAttempt, error)
	Close() error
}
