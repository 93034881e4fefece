package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is a single rejected configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every problem Validate found; it never
// reports only the first.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func validStrategies() []string {
	return []string{"fifo", "priority", "critical_path", "resource_optimal", "dependency_aware"}
}

func validBatchingStrategies() []string {
	return []string{"similar_tasks", "resource_optimization", "temporal"}
}

// Validate checks Config for invalid values and returns every problem
// found, per spec §6's explicit requirement that a negative maxUnits or
// a maxConcurrentTasks below 1 be rejected at construction.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Strategy != "" && !slices.Contains(validStrategies(), c.Strategy) {
		errs = append(errs, ValidationError{
			Field:   "strategy",
			Value:   c.Strategy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validStrategies(), ", ")),
		})
	}

	if c.BatchingStrategy != "" && !slices.Contains(validBatchingStrategies(), c.BatchingStrategy) {
		errs = append(errs, ValidationError{
			Field:   "batching_strategy",
			Value:   c.BatchingStrategy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validBatchingStrategies(), ", ")),
		})
	}

	for resource, max := range c.ResourceConstraints {
		if max < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("resource_constraints.%s", resource),
				Value:   max,
				Message: "maxUnits must be non-negative",
			})
		}
	}

	if c.MaxConcurrentTasks < 1 {
		errs = append(errs, ValidationError{
			Field:   "max_concurrent_tasks",
			Value:   c.MaxConcurrentTasks,
			Message: "must be at least 1",
		})
	}

	if c.OptimizationIntervalMS < 0 {
		errs = append(errs, ValidationError{
			Field:   "optimization_interval_ms",
			Value:   c.OptimizationIntervalMS,
			Message: "must be non-negative",
		})
	}

	if c.DefaultTimeoutMS < 0 {
		errs = append(errs, ValidationError{
			Field:   "default_timeout_ms",
			Value:   c.DefaultTimeoutMS,
			Message: "must be non-negative",
		})
	}

	if c.DefaultMaxRetries < 0 {
		errs = append(errs, ValidationError{
			Field:   "default_max_retries",
			Value:   c.DefaultMaxRetries,
			Message: "must be non-negative",
		})
	}

	errs = append(errs, c.validatePriorityThresholds()...)

	return errs
}

// validatePriorityThresholds enforces the ordering critical > high >
// medium > low unless all four are zero (unset).
func (c *Config) validatePriorityThresholds() []ValidationError {
	var errs []ValidationError
	t := c.PriorityThresholds
	if t == (PriorityThresholds{}) {
		return nil
	}
	if t.Critical <= t.High {
		errs = append(errs, ValidationError{
			Field:   "priority_thresholds.critical",
			Value:   t.Critical,
			Message: fmt.Sprintf("must exceed priority_thresholds.high (%v)", t.High),
		})
	}
	if t.High <= t.Medium {
		errs = append(errs, ValidationError{
			Field:   "priority_thresholds.high",
			Value:   t.High,
			Message: fmt.Sprintf("must exceed priority_thresholds.medium (%v)", t.Medium),
		})
	}
	if t.Medium <= t.Low {
		errs = append(errs, ValidationError{
			Field:   "priority_thresholds.medium",
			Value:   t.Medium,
			Message: fmt.Sprintf("must exceed priority_thresholds.low (%v)", t.Low),
		})
	}
	return errs
}
