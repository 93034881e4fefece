package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexus-automations/taskgraph/internal/ingest"
	"github.com/nexus-automations/taskgraph/internal/optimizer"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <descriptor-file>",
	Short: "Run the queue optimizer over a task descriptor file's plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().Bool("json", false, "print the full optimization result as JSON")
	optimizeCmd.Flags().Duration("avg-exec-time", 0, "observed average execution time, fed to the optimizer as a runtime signal")
	optimizeCmd.Flags().Float64("retry-rate", 0, "observed retry rate (0-1), fed to the optimizer as a runtime signal")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	tasks, err := ingest.Load(args[0])
	if err != nil {
		return err
	}

	m, err := newManager(cmd, tasks)
	if err != nil {
		return err
	}
	defer m.Dispose()

	avgExec, _ := cmd.Flags().GetDuration("avg-exec-time")
	retryRate, _ := cmd.Flags().GetFloat64("retry-rate")
	rt := optimizer.RuntimeMetrics{AverageExecutionTime: avgExec, RetryRate: retryRate}

	result, outcome, err := m.Optimize(context.Background(), rt, time.Now())
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	if outcome != "completed" {
		return fmt.Errorf("optimize: outcome %s", outcome)
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printOptimization(result)
	return nil
}

func printOptimization(r *optimizer.OptimizationResult) {
	fmt.Printf("strategy: %s\n", r.Strategy)
	fmt.Printf("recommendations: %d\n", len(r.Recommendations))
	for _, rec := range r.Recommendations {
		fmt.Printf("  - [%s] impact %.1f%%: %v\n", rec.Kind, rec.Impact, rec.TaskIDs)
	}
}
