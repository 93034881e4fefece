package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexus-automations/taskgraph/internal/ingest"
	"github.com/nexus-automations/taskgraph/internal/planner"
)

var validateCmd = &cobra.Command{
	Use:   "validate <descriptor-file>",
	Short: "Validate a task descriptor file and report every conflict found",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().Bool("json", false, "print the full validation result as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	tasks, err := ingest.Load(args[0])
	if err != nil {
		return err
	}

	m, err := newManager(cmd, tasks)
	if err != nil {
		return err
	}
	defer m.Dispose()

	ctx := context.Background()
	result, err := m.Validate(ctx)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	conflicts, err := m.DetectConflicts(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("detect conflicts: %w", err)
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		out := struct {
			planner.ValidationResult
			Conflicts []planner.Conflict `json:"conflicts"`
		}{result, conflicts}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printValidation(result, conflicts)
	if !result.IsValid {
		return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
	}
	return nil
}

func printValidation(result planner.ValidationResult, conflicts []planner.Conflict) {
	if result.IsValid {
		fmt.Println("valid: no structural problems found")
	} else {
		fmt.Printf("invalid: %d problem(s)\n", len(result.Errors))
		for _, issue := range result.Errors {
			fmt.Printf("  - [%s] %s\n", issue.Kind, issue.Message)
		}
	}
	if len(conflicts) > 0 {
		fmt.Printf("conflicts: %d\n", len(conflicts))
		for _, c := range conflicts {
			fmt.Printf("  - [%s/%s] %v: %s\n", c.Kind, c.Severity, c.TaskIDs, c.Suggestion)
		}
	}
}
