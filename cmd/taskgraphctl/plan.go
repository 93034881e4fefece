package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nexus-automations/taskgraph/internal/ingest"
	"github.com/nexus-automations/taskgraph/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan <descriptor-file>",
	Short: "Build an execution plan for a task descriptor file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Bool("json", false, "print the full plan as JSON")
}

func runPlan(cmd *cobra.Command, args []string) error {
	tasks, err := ingest.Load(args[0])
	if err != nil {
		return err
	}

	m, err := newManager(cmd, tasks)
	if err != nil {
		return err
	}
	defer m.Dispose()

	plan, outcome, err := m.Plan(context.Background(), time.Now())
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	if outcome != "completed" {
		return fmt.Errorf("plan: outcome %s", outcome)
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	printPlan(plan)
	return nil
}

func printPlan(p *planner.Plan) {
	fmt.Printf("strategy: %s\n", p.Strategy)
	fmt.Printf("estimated duration: %s\n", p.EstimatedDuration)
	fmt.Printf("max concurrency: %s\n", humanize.Comma(int64(p.MaxConcurrency)))
	for i, grp := range p.Groups {
		fmt.Printf("wave %d: %v (concurrency %d)\n", i+1, grp.TaskIDs, grp.MaxConcurrency)
	}
	if len(p.CriticalPath) > 0 {
		fmt.Printf("critical path: %v\n", p.CriticalPath)
	}
}
