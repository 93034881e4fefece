// Package config loads and validates the core's runtime configuration:
// strategy/batching selection, resource constraints, priority
// thresholds, concurrency and timeout defaults, and the feature toggles
// spec §6 names. Values are populated from .taskgraph.yaml,
// TASKGRAPH_* env vars, and CLI flags, with built-in defaults for
// anything unset.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// PriorityThresholds gives the numeric lower bound of each named
// priority band, used to map an externally-supplied numeric priority
// onto the core's closed Priority enum.
type PriorityThresholds struct {
	Critical float64 `mapstructure:"critical"`
	High     float64 `mapstructure:"high"`
	Medium   float64 `mapstructure:"medium"`
	Low      float64 `mapstructure:"low"`
}

// DefaultPriorityThresholds mirrors taskgraph.Priority.BaseScore's fixed
// mapping, so a caller supplying raw numeric priorities round-trips
// onto the same named bands the core scores against.
func DefaultPriorityThresholds() PriorityThresholds {
	return PriorityThresholds{Critical: 100, High: 75, Medium: 50, Low: 25}
}

// Config holds every recognized option from spec §6.
type Config struct {
	// Strategy selects the Planner's ordering/packing behavior: fifo,
	// priority, critical_path, resource_optimal, dependency_aware.
	Strategy string `mapstructure:"strategy"`

	// BatchingStrategy selects the Optimizer's task_batching grouping:
	// similar_tasks, resource_optimization, temporal.
	BatchingStrategy string `mapstructure:"batching_strategy"`

	// ResourceConstraints maps a resource name to its maximum units.
	// Negative values are rejected by Validate.
	ResourceConstraints map[string]float64 `mapstructure:"resource_constraints"`

	// OptimizationIntervalMS is the interval, in milliseconds, between
	// scheduled Optimize passes. Nothing in this module runs Optimize on
	// a timer; the CLI's watch command re-runs only on file change.
	OptimizationIntervalMS int `mapstructure:"optimization_interval_ms"`

	EnableBatching             bool `mapstructure:"enable_batching"`
	EnableParallelOptimization bool `mapstructure:"enable_parallel_optimization"`

	PriorityThresholds PriorityThresholds `mapstructure:"priority_thresholds"`

	AutoDependencyLearning bool `mapstructure:"auto_dependency_learning"`
	PerformanceMonitoring  bool `mapstructure:"performance_monitoring"`

	MaxConcurrentTasks int `mapstructure:"max_concurrent_tasks"`
	DefaultTimeoutMS   int `mapstructure:"default_timeout_ms"`
	DefaultMaxRetries  int `mapstructure:"default_max_retries"`

	ConfigVersion string `mapstructure:"config_version"`
	Verbose       bool   `mapstructure:"verbose"`
}

// OptimizationInterval returns OptimizationIntervalMS as a time.Duration.
func (c Config) OptimizationInterval() time.Duration {
	return time.Duration(c.OptimizationIntervalMS) * time.Millisecond
}

// DefaultTimeout returns DefaultTimeoutMS as a time.Duration.
func (c Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMS) * time.Millisecond
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, then validates
// the result. A non-nil error is a ValidationErrors, except when viper
// cannot decode the values at all, in which case its decode error is
// returned as is.
func Load() (Config, error) {
	viper.SetDefault("strategy", "dependency_aware")
	viper.SetDefault("batching_strategy", "similar_tasks")
	viper.SetDefault("resource_constraints", map[string]float64{})
	viper.SetDefault("optimization_interval_ms", 30000)
	viper.SetDefault("enable_batching", true)
	viper.SetDefault("enable_parallel_optimization", true)
	viper.SetDefault("priority_thresholds.critical", 100.0)
	viper.SetDefault("priority_thresholds.high", 75.0)
	viper.SetDefault("priority_thresholds.medium", 50.0)
	viper.SetDefault("priority_thresholds.low", 25.0)
	viper.SetDefault("auto_dependency_learning", false)
	viper.SetDefault("performance_monitoring", true)
	viper.SetDefault("max_concurrent_tasks", 8)
	viper.SetDefault("default_timeout_ms", 30000)
	viper.SetDefault("default_max_retries", 3)
	viper.SetDefault("config_version", "v1")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, ValidationErrors(errs)
	}
	return cfg, nil
}
