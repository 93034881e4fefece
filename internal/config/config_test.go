package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Strategy", cfg.Strategy, "dependency_aware"},
		{"BatchingStrategy", cfg.BatchingStrategy, "similar_tasks"},
		{"EnableBatching", cfg.EnableBatching, true},
		{"EnableParallelOptimization", cfg.EnableParallelOptimization, true},
		{"MaxConcurrentTasks", cfg.MaxConcurrentTasks, 8},
		{"DefaultMaxRetries", cfg.DefaultMaxRetries, 3},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "strategy",
			envKey: "TASKGRAPH_STRATEGY",
			envVal: "critical_path",
			field:  func(c Config) any { return c.Strategy },
			want:   "critical_path",
		},
		{
			name:   "max_concurrent_tasks",
			envKey: "TASKGRAPH_MAX_CONCURRENT_TASKS",
			envVal: "16",
			field:  func(c Config) any { return c.MaxConcurrentTasks },
			want:   16,
		},
		{
			name:   "verbose",
			envKey: "TASKGRAPH_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Verbose },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			viper.SetEnvPrefix("TASKGRAPH")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestValidateRejectsNegativeResourceMax(t *testing.T) {
	cfg := Config{MaxConcurrentTasks: 4, ResourceConstraints: map[string]float64{"database": -1}}
	errs := cfg.Validate()
	if len(errs) != 1 || errs[0].Field != "resource_constraints.database" {
		t.Fatalf("expected exactly one resource_constraints error, got %+v", errs)
	}
}

func TestValidateRejectsMaxConcurrentTasksBelowOne(t *testing.T) {
	cfg := Config{MaxConcurrentTasks: 0}
	errs := cfg.Validate()
	var found bool
	for _, e := range errs {
		if e.Field == "max_concurrent_tasks" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a max_concurrent_tasks error, got %+v", errs)
	}
}

func TestValidateNeverShortCircuits(t *testing.T) {
	cfg := Config{
		MaxConcurrentTasks:  0,
		Strategy:            "not_a_strategy",
		ResourceConstraints: map[string]float64{"cpu": -5},
	}
	errs := cfg.Validate()
	if len(errs) < 3 {
		t.Fatalf("expected every problem reported, got only %d: %+v", len(errs), errs)
	}
}

func TestLoad_DefaultsAreNotZero(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Strategy == "" {
		t.Error("Strategy should not be empty")
	}
	if cfg.MaxConcurrentTasks == 0 {
		t.Error("MaxConcurrentTasks should not be zero")
	}
	if cfg.DefaultTimeoutMS == 0 {
		t.Error("DefaultTimeoutMS should not be zero")
	}
}
