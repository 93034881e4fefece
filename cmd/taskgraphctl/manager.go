package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nexus-automations/taskgraph/internal/config"
	"github.com/nexus-automations/taskgraph/internal/depmanager"
	"github.com/nexus-automations/taskgraph/internal/taskgraph"
)

// newManager loads ambient configuration (and an optional --preset
// override), constructs a Manager, and adds every task from tasks to
// its graph.
func newManager(cmd *cobra.Command, tasks []*taskgraph.Task) (*depmanager.Manager, error) {
	log := logger.WithComponent("cli")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		if _, ok := err.(config.ValidationErrors); !ok {
			return nil, err
		}
		// Invalid values still carry usable defaults for the rest; the
		// CLI surfaces the validation problems but does not abort the
		// run over them, unlike a library embedder who should treat
		// ValidationErrors as fatal.
		log.Warn(ctx, "ambient config has validation errors, continuing with defaults", "error", err)
	}

	mgrCfg := depmanager.DefaultManagerConfig()
	if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
		log.Debug(ctx, "using configuration preset", "preset", preset)
		mgrCfg = depmanager.FromPreset(depmanager.Preset(preset))
	} else {
		mgrCfg.PlanStrategy = cfg.Strategy
		mgrCfg.OptimizerConfig.BatchingStrategy = cfg.BatchingStrategy
		mgrCfg.ConfigVersion = cfg.ConfigVersion
		if len(cfg.ResourceConstraints) > 0 {
			budget := make(map[string]float64, len(cfg.ResourceConstraints))
			for k, v := range cfg.ResourceConstraints {
				budget[k] = v
			}
			mgrCfg.ResourceBudget = budget
			mgrCfg.OptimizerConfig.ResourceMax = budget
		}
	}

	m := depmanager.New(mgrCfg, nil)
	for _, t := range tasks {
		if err := m.AddTask(t); err != nil {
			return nil, err
		}
	}
	log.Info(ctx, "manager ready", "task_count", len(tasks), "strategy", mgrCfg.PlanStrategy)
	return m, nil
}
